package content

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/DjordjeVuckovic/content-query/internal/schema"
	"github.com/DjordjeVuckovic/content-query/internal/storage"
)

// Group is the position of a record in the grouping taxonomy of its type.
type Group struct {
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Index int    `json:"index"`
}

// Record is one hydrated content record.
type Record struct {
	ID          string                            `json:"id"`
	ContentType string                            `json:"contenttype"`
	Values      map[string]any                    `json:"values"`
	Taxonomies  map[string][]storage.TaxonomyTerm `json:"taxonomies,omitempty"`
	Group       *Group                            `json:"group,omitempty"`
	SortOrder   *int                              `json:"sortorder,omitempty"`
	Weight      float64                           `json:"weight,omitempty"`

	schema *schema.ContentType
}

func (r *Record) Schema() *schema.ContentType {
	return r.schema
}

func (r *Record) Get(field string) any {
	return r.Values[field]
}

// Batch holds the records of one plan keyed by id. The keying is lost once
// batches of several plans are merged.
type Batch struct {
	ContentType *schema.ContentType
	Records     []*Record
	byID        map[string]*Record
}

func (b *Batch) IDs() []string {
	ids := make([]string, 0, len(b.Records))
	for _, r := range b.Records {
		if r.ID != "" {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

func (b *Batch) Get(id string) (*Record, bool) {
	r, ok := b.byID[id]
	return r, ok
}

func hydrate(ct *schema.ContentType, rows []map[string]interface{}) *Batch {
	b := &Batch{
		ContentType: ct,
		Records:     make([]*Record, 0, len(rows)),
		byID:        make(map[string]*Record, len(rows)),
	}
	for _, row := range rows {
		r := &Record{
			ContentType: ct.Slug,
			Values:      make(map[string]any, len(row)),
			schema:      ct,
		}
		for k, v := range row {
			r.Values[k] = v
		}
		if id, ok := row["id"]; ok && id != nil {
			r.ID = fmt.Sprint(id)
		}
		if n, ok := intValue(row["sortorder"]); ok {
			r.SortOrder = &n
		}

		b.Records = append(b.Records, r)
		if r.ID != "" {
			b.byID[r.ID] = r
		}
	}
	return b
}

// enrich attaches taxonomy terms and resolves the grouping of every record.
// Failures are logged; the records stay usable without taxonomies.
func enrich(ctx context.Context, enricher storage.Enricher, b *Batch) {
	if enricher == nil || len(b.ContentType.Taxonomies) == 0 || len(b.Records) == 0 {
		return
	}

	terms, err := enricher.Taxonomies(ctx, b.ContentType, b.IDs())
	if err != nil {
		slog.Warn("failed to load taxonomies", "contenttype", b.ContentType.Slug, "error", err)
		return
	}

	grouping, hasGrouping := b.ContentType.Grouping()
	for id, assigned := range terms {
		r, ok := b.Get(id)
		if !ok {
			continue
		}
		r.Taxonomies = make(map[string][]storage.TaxonomyTerm)
		for _, t := range assigned {
			r.Taxonomies[t.Taxonomy] = append(r.Taxonomies[t.Taxonomy], t)
		}

		if !hasGrouping {
			continue
		}
		for _, t := range r.Taxonomies[grouping.Slug] {
			idx := grouping.OptionIndex(t.Slug)
			if idx < 0 {
				continue
			}
			r.Group = &Group{Slug: t.Slug, Name: t.Name, Index: idx}
			if r.SortOrder == nil {
				order := t.SortOrder
				r.SortOrder = &order
			}
			break
		}
	}
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	i, err := strconv.Atoi(fmt.Sprint(v))
	return i, err == nil
}
