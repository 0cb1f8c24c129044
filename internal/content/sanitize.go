package content

import (
	"fmt"
	"strings"

	"github.com/DjordjeVuckovic/content-query/internal/query"
	"github.com/DjordjeVuckovic/content-query/internal/schema"
	"github.com/DjordjeVuckovic/content-query/internal/storage"
	"github.com/DjordjeVuckovic/content-query/pkg/slug"
)

type saveData struct {
	values storage.Row
	// taxonomies is nil when the payload did not mention any taxonomy.
	taxonomies []storage.TaxonomyTerm
}

// sanitize keeps the columns the schema knows, trims strings and, for the
// remote dialect, turns booleans into 0/1. Taxonomy keys are split off.
func sanitize(ct *schema.ContentType, values storage.Row, dialect query.Dialect) saveData {
	out := saveData{values: storage.Row{}}

	for k, v := range values {
		if k == "id" {
			continue
		}
		if tax, ok := ct.Taxonomy(k); ok {
			if out.taxonomies == nil {
				out.taxonomies = []storage.TaxonomyTerm{}
			}
			out.taxonomies = append(out.taxonomies, taxonomyTerms(tax, v)...)
			continue
		}
		if _, ok := ct.ColumnType(k); !ok {
			continue
		}

		switch t := v.(type) {
		case string:
			out.values[k] = strings.TrimSpace(t)
		case bool:
			if dialect == query.Remote {
				out.values[k] = boolInt(t)
			} else {
				out.values[k] = t
			}
		default:
			out.values[k] = v
		}
	}

	return out
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func taxonomyTerms(tax schema.Taxonomy, v any) []storage.TaxonomyTerm {
	var names []string
	switch t := v.(type) {
	case nil:
	case string:
		names = strings.Split(t, ",")
	case []string:
		names = t
	case []any:
		for _, n := range t {
			names = append(names, fmt.Sprint(n))
		}
	default:
		names = []string{fmt.Sprint(v)}
	}

	terms := make([]storage.TaxonomyTerm, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		terms = append(terms, storage.TaxonomyTerm{
			Taxonomy:  tax.Slug,
			Slug:      slug.Make(n),
			Name:      n,
			SortOrder: len(terms),
		})
	}
	return terms
}
