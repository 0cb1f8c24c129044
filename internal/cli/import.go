package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/DjordjeVuckovic/content-query/internal/ingest"
	"github.com/DjordjeVuckovic/content-query/internal/ingest/reader"
	"github.com/spf13/cobra"
)

type importSummary struct {
	ContentType string `json:"contenttype"`
	Saved       int    `json:"saved"`
	Failed      []struct {
		Line  int    `json:"line"`
		Error string `json:"error"`
	} `json:"failed"`
}

func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		workers   int
		delimiter string
	)

	cmd := &cobra.Command{
		Use:   "import <contenttype> <file.csv>",
		Short: "Insert one record per CSV line",
		Long: `import reads a CSV file whose header names the columns and taxonomies of
the content type and saves every line as a new record. Lines that fail are
reported and skipped.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len([]rune(delimiter)) != 1 {
				return fmt.Errorf("delimiter must be a single character, got %q", delimiter)
			}

			b, err := rootOpts.Open(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer b.Close()

			ct, err := b.Types.Lookup(args[0])
			if err != nil {
				return err
			}

			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[1], err)
			}
			defer f.Close()

			src := reader.NewCSVReader(f, reader.WithComma([]rune(delimiter)[0]))
			report, err := ingest.NewPipeline(src, b.Service, ct.Slug, ingest.WithWorkers(workers)).Run(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if rootOpts.Format == "json" {
				sum := importSummary{ContentType: ct.Slug, Saved: report.Saved}
				for _, le := range report.Failed {
					sum.Failed = append(sum.Failed, struct {
						Line  int    `json:"line"`
						Error string `json:"error"`
					}{le.Line, le.Err.Error()})
				}
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(sum)
			}

			for _, le := range report.Failed {
				fmt.Fprintf(w, "line %d: %v\n", le.Line, le.Err)
			}
			fmt.Fprintf(w, "imported %d %s records, %d failed\n", report.Saved, ct.Slug, len(report.Failed))
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "number of goroutines decoding lines")
	cmd.Flags().StringVarP(&delimiter, "delimiter", "d", ",", "field delimiter")

	return cmd
}
