package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/DjordjeVuckovic/content-query/internal/schema"
	"github.com/spf13/cobra"
)

type typeSummary struct {
	Slug       string `json:"slug"`
	Name       string `json:"name"`
	Mode       string `json:"mode"`
	Collection string `json:"collection,omitempty"`
	Fields     int    `json:"fields"`
	Taxonomies int    `json:"taxonomies"`
}

func NewTypesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the configured content types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := rootOpts.Open(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer b.Close()

			var summaries []typeSummary
			for _, ct := range b.Types.All() {
				s := typeSummary{
					Slug:       ct.Slug,
					Name:       ct.Name,
					Mode:       string(ct.Mode),
					Fields:     len(ct.Fields),
					Taxonomies: len(ct.Taxonomies),
				}
				if ct.Mode != schema.ModeLocal {
					s.Collection = ct.RemoteCollection()
				}
				summaries = append(summaries, s)
			}

			if rootOpts.Format == "json" {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(summaries)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SLUG\tNAME\tMODE\tCOLLECTION\tFIELDS\tTAXONOMIES")
			for _, s := range summaries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\n", s.Slug, s.Name, s.Mode, s.Collection, s.Fields, s.Taxonomies)
			}
			return tw.Flush()
		},
	}
}
