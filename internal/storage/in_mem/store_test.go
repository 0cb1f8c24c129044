package in_mem

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/DjordjeVuckovic/content-query/internal/query"
	"github.com/DjordjeVuckovic/content-query/internal/schema"
	"github.com/DjordjeVuckovic/content-query/internal/storage"
	"github.com/DjordjeVuckovic/content-query/internal/types/operator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)

func entriesType() *schema.ContentType {
	return &schema.ContentType{
		Slug: "entries",
		Fields: []schema.Field{
			{Name: "title", Type: schema.FieldText},
			{Name: "rating", Type: schema.FieldInteger},
			{Name: "eventdate", Type: schema.FieldDate},
		},
		Taxonomies: []schema.Taxonomy{{Slug: "tags", Behavior: schema.BehaviorTags}},
	}
}

func seeded(t *testing.T) (*Store, *schema.ContentType) {
	t.Helper()
	ctx := context.Background()
	s := NewStore(WithClock(func() time.Time { return fixedNow }))
	ct := entriesType()

	for _, row := range []storage.Row{
		{"title": "Alpha", "rating": 1, "eventdate": "2024-01-01 00:00:00", "status": "published"},
		{"title": "beta", "rating": 5, "eventdate": "2024-03-01 00:00:00", "status": "published"},
		{"title": "Gamma", "rating": 9, "status": "draft"},
	} {
		_, err := s.Insert(ctx, ct, row)
		require.NoError(t, err)
	}
	require.NoError(t, s.SetTaxonomies(ctx, ct, "2", []storage.TaxonomyTerm{{Taxonomy: "tags", Slug: "go"}}))
	return s, ct
}

func titles(res *storage.ExecuteResult) []string {
	out := make([]string, 0, len(res.Hits))
	for _, h := range res.Hits {
		out = append(out, h["title"].(string))
	}
	return out
}

func TestStore_Execute(t *testing.T) {
	s, ct := seeded(t)

	tests := []struct {
		name  string
		plan  query.QueryPlan
		want  []string
		total int
	}{
		{
			name:  "numeric comparison",
			plan:  query.QueryPlan{Filters: []query.FilterToken{query.FieldToken("rating", operator.Gte, "5")}},
			want:  []string{"beta", "Gamma"},
			total: 2,
		},
		{
			name:  "substring match ignores case",
			plan:  query.QueryPlan{Filters: []query.FilterToken{query.FieldToken("title", operator.Match, "AMM")}},
			want:  []string{"Gamma"},
			total: 1,
		},
		{
			name:  "date comparison skips empty dates",
			plan:  query.QueryPlan{Filters: []query.FilterToken{query.FieldToken("eventdate", operator.Gt, "2024-02-01 00:00:00")}},
			want:  []string{"beta"},
			total: 1,
		},
		{
			name:  "or group",
			plan:  query.QueryPlan{Filters: []query.FilterToken{query.AnyOf(query.FieldToken("rating", operator.Eq, "1"), query.FieldToken("rating", operator.Eq, "9"))}},
			want:  []string{"Alpha", "Gamma"},
			total: 2,
		},
		{
			name:  "taxonomy membership",
			plan:  query.QueryPlan{Filters: []query.FilterToken{{Kind: query.KindTaxonomy, Taxonomy: "tags", Terms: []string{"go"}}}},
			want:  []string{"beta"},
			total: 1,
		},
		{
			name:  "negated taxonomy",
			plan:  query.QueryPlan{Filters: []query.FilterToken{{Kind: query.KindTaxonomy, Taxonomy: "tags", Terms: []string{"go"}, Negate: true}}},
			want:  []string{"Alpha", "Gamma"},
			total: 2,
		},
		{
			name:  "order, limit and offset",
			plan:  query.QueryPlan{Order: []query.OrderToken{{Field: "title", Desc: true}}, Limit: 1, Offset: 1},
			want:  []string{"beta"},
			total: 3,
		},
		{
			name:  "unparsable date filter is ignored",
			plan:  query.QueryPlan{Filters: []query.FilterToken{query.FieldToken("eventdate", operator.Gt, "not a date")}},
			want:  []string{"Alpha", "beta", "Gamma"},
			total: 3,
		},
		{
			name: "or group of unparsable dates is dropped",
			plan: query.QueryPlan{Filters: []query.FilterToken{
				query.AnyOf(query.FieldToken("eventdate", operator.Lt, "soon"), query.FieldToken("eventdate", operator.Gt, "later")),
				query.FieldToken("rating", operator.Lt, "9"),
			}},
			want:  []string{"Alpha", "beta"},
			total: 2,
		},
		{
			name:  "negative offset starts at the first record",
			plan:  query.QueryPlan{Limit: 2, Offset: -4},
			want:  []string{"Alpha", "beta"},
			total: 3,
		},
		{
			name:  "limit larger than the remaining records",
			plan:  query.QueryPlan{Limit: math.MaxInt, Offset: 1},
			want:  []string{"beta", "Gamma"},
			total: 3,
		},
		{
			name:  "offset past the end",
			plan:  query.QueryPlan{Limit: 2, Offset: math.MaxInt},
			want:  []string{},
			total: 3,
		},
		{
			name:  "resource id",
			plan:  query.QueryPlan{ResourceID: "3"},
			want:  []string{"Gamma"},
			total: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := tt.plan
			plan.ContentType = ct
			res, err := s.Execute(context.Background(), &plan, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(res))
			assert.Equal(t, tt.total, res.TotalHits)
		})
	}
}

func TestStore_InvalidFilterValue(t *testing.T) {
	s, ct := seeded(t)
	plan := &query.QueryPlan{ContentType: ct, Filters: []query.FilterToken{query.FieldToken("rating", operator.Gt, "lots")}}

	_, err := s.Execute(context.Background(), plan, nil)
	assert.ErrorIs(t, err, query.ErrInvalidParameter)
}

func TestStore_WritePath(t *testing.T) {
	ctx := context.Background()
	s, ct := seeded(t)

	require.NoError(t, s.Update(ctx, ct, "1", storage.Row{"title": "Alpha 2", "unknown": "dropped"}))
	row, err := s.Find(ctx, ct, "1")
	require.NoError(t, err)
	assert.Equal(t, "Alpha 2", row["title"])
	assert.NotContains(t, row, "unknown")
	assert.Equal(t, fixedNow, row["datechanged"])

	require.NoError(t, s.Delete(ctx, ct, "2"))
	_, err = s.Find(ctx, ct, "2")
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
	assert.ErrorIs(t, s.Update(ctx, ct, "2", storage.Row{}), storage.ErrRecordNotFound)
	assert.ErrorIs(t, s.Delete(ctx, ct, "2"), storage.ErrRecordNotFound)

	terms, err := s.Taxonomies(ctx, ct, []string{"1", "2"})
	require.NoError(t, err)
	assert.Empty(t, terms)
}
