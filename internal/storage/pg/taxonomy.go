package pg

import (
	"context"
	"fmt"
	"strconv"

	"github.com/DjordjeVuckovic/content-query/internal/schema"
	"github.com/DjordjeVuckovic/content-query/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaxonomyEnricher loads the taxonomy assignments of a batch of records.
type TaxonomyEnricher struct {
	db    *pgxpool.Pool
	table string
}

func NewTaxonomyEnricher(pool *ConnectionPool) *TaxonomyEnricher {
	return &TaxonomyEnricher{db: pool.GetConn(), table: TaxonomyTable(pool.TablePrefix())}
}

type taxonomyRow struct {
	ContentID    int64  `db:"content_id"`
	TaxonomyType string `db:"taxonomytype"`
	Slug         string `db:"slug"`
	Name         string `db:"name"`
	SortOrder    int    `db:"sortorder"`
}

func (e *TaxonomyEnricher) Taxonomies(ctx context.Context, ct *schema.ContentType, ids []string) (map[string][]storage.TaxonomyTerm, error) {
	out := make(map[string][]storage.TaxonomyTerm, len(ids))
	if len(ids) == 0 || len(ct.Taxonomies) == 0 {
		return out, nil
	}

	keys := make([]int64, 0, len(ids))
	for _, id := range ids {
		k, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			continue
		}
		keys = append(keys, k)
	}

	sql := fmt.Sprintf(`SELECT content_id, taxonomytype, slug, name, sortorder FROM %s
		WHERE contenttype = $1 AND content_id = ANY($2)
		ORDER BY content_id, taxonomytype, sortorder, slug`, ident(e.table))

	rows, err := e.db.Query(ctx, sql, ct.Slug, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to load taxonomies of %s: %w", ct.Slug, err)
	}

	assigned, err := pgx.CollectRows(rows, pgx.RowToStructByName[taxonomyRow])
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomies of %s: %w", ct.Slug, err)
	}

	for _, r := range assigned {
		if _, ok := ct.Taxonomy(r.TaxonomyType); !ok {
			continue
		}
		id := strconv.FormatInt(r.ContentID, 10)
		out[id] = append(out[id], storage.TaxonomyTerm{
			Taxonomy:  r.TaxonomyType,
			Slug:      r.Slug,
			Name:      r.Name,
			SortOrder: r.SortOrder,
		})
	}

	return out, nil
}

var _ storage.Enricher = (*TaxonomyEnricher)(nil)
