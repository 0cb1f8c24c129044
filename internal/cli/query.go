package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/DjordjeVuckovic/content-query/internal/content"
	"github.com/DjordjeVuckovic/content-query/internal/query"
	"github.com/spf13/cobra"
)

type queryOptions struct {
	params   []string
	frontend bool
}

func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "query <textquery>",
		Short: "Run a text query",
		Example: `  contentq query "entries/latest/3"
  contentq query "(entries,pages)" -p page=2 -p limit=10
  contentq query "pages/search" -p filter="getting started" --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, rootOpts, opts, args[0])
		},
	}

	cmd.Flags().StringArrayVarP(&opts.params, "param", "p", nil, "query parameter as key=value, repeatable; pages[status]=draft targets one type")
	cmd.Flags().BoolVar(&opts.frontend, "frontend", false, "only return published records")

	return cmd
}

func runQuery(cmd *cobra.Command, rootOpts *RootOptions, opts *queryOptions, textQuery string) error {
	values := url.Values{}
	for _, p := range opts.params {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return fmt.Errorf("invalid parameter %q: expected key=value", p)
		}
		values.Add(key, value)
	}

	b, err := rootOpts.Open(cmd.Context(), rootOpts)
	if err != nil {
		return err
	}
	defer b.Close()

	res, err := b.Service.GetContent(cmd.Context(), query.Request{
		TextQuery: textQuery,
		Params:    query.ParseValues(values),
		Frontend:  opts.frontend,
	})
	if err != nil {
		return err
	}

	if rootOpts.Format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return writeResult(cmd.OutOrStdout(), res)
}

func writeResult(w io.Writer, res *content.Result) error {
	if res.Single != nil {
		return writeRecord(w, res.Single)
	}

	for _, r := range res.Records {
		if err := writeRecord(w, r); err != nil {
			return err
		}
	}
	if p := res.Pager; p != nil {
		_, err := fmt.Fprintf(w, "-- %s: showing %d-%d of %d (page %d/%d)\n",
			p.For, p.ShowingFrom, p.ShowingTo, p.Count, p.Current, p.TotalPages)
		return err
	}
	return nil
}

func writeRecord(w io.Writer, r *content.Record) error {
	title := r.Get("title")
	if title == nil {
		title = r.Get("slug")
	}
	_, err := fmt.Fprintf(w, "%s/%s\t%v\n", r.ContentType, r.ID, title)
	return err
}
