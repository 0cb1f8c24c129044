package cli

import (
	"errors"
	"fmt"

	"github.com/DjordjeVuckovic/content-query/internal/query"
	"github.com/DjordjeVuckovic/content-query/internal/storage"
	"github.com/spf13/cobra"
)

var ErrNoIndex = errors.New("no search index configured, set ES_ADDRESSES and ES_INDEX_NAME")

func NewReindexCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex <contenttype>",
		Short: "Copy every record of a content type into the search index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := rootOpts.Open(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer b.Close()

			if b.Indexer == nil {
				return ErrNoIndex
			}
			ct, err := b.Types.Lookup(args[0])
			if err != nil {
				return err
			}

			res, err := b.Service.GetContent(cmd.Context(), query.Request{
				TextQuery: ct.Slug,
				Params:    query.Params{"hydrate": false},
			})
			if err != nil {
				return err
			}

			rows := make(map[string]storage.Row, len(res.Records))
			for _, r := range res.Records {
				rows[r.ID] = r.Values
			}
			if len(rows) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no %s records to index\n", ct.Slug)
				return nil
			}

			if err := b.Indexer.IndexBulk(cmd.Context(), ct, rows); err != nil {
				return err
			}
			if err := b.Indexer.Refresh(cmd.Context()); err != nil {
				return fmt.Errorf("failed to refresh index: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d %s records\n", len(rows), ct.Slug)
			return nil
		},
	}
}
