package content

import (
	"math/rand"
	"testing"
	"time"

	"github.com/DjordjeVuckovic/content-query/internal/query"
	"github.com/stretchr/testify/assert"
)

func rec(title string, values map[string]any) *Record {
	v := map[string]any{"title": title}
	for k, val := range values {
		v[k] = val
	}
	return &Record{ID: title, Values: v}
}

func ids(records []*Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func intPtr(i int) *int { return &i }

func TestPostProcessor_Slice(t *testing.T) {
	records := []*Record{rec("a", nil), rec("b", nil), rec("c", nil), rec("d", nil), rec("e", nil)}

	tests := []struct {
		name string
		dq   *query.DecodedQuery
		want []string
	}{
		{
			name: "second page",
			dq:   &query.DecodedQuery{Meta: query.Meta{Page: 2, Limit: 2}},
			want: []string{"c", "d"},
		},
		{
			name: "last partial page",
			dq:   &query.DecodedQuery{Meta: query.Meta{Page: 3, Limit: 2}},
			want: []string{"e"},
		},
		{
			name: "page past the end",
			dq:   &query.DecodedQuery{Meta: query.Meta{Page: 4, Limit: 2}},
			want: []string{},
		},
		{
			name: "self paginated is left alone",
			dq:   &query.DecodedQuery{SelfPaginated: true, Meta: query.Meta{Page: 2, Limit: 2}},
			want: []string{"a", "b", "c", "d", "e"},
		},
		{
			name: "return single is left alone",
			dq:   &query.DecodedQuery{ReturnSingle: true, Meta: query.Meta{Page: 1, Limit: 1}},
			want: []string{"a", "b", "c", "d", "e"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := append([]*Record(nil), records...)
			got := NewPostProcessor(nil).Apply(tt.dq, in)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestPostProcessor_SearchWeight(t *testing.T) {
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.AddDate(0, 1, 0)

	records := []*Record{
		rec("zeta", map[string]any{"datepublish": older}),
		rec("Beta", map[string]any{"datepublish": older}),
		rec("alpha", map[string]any{"datepublish": older}),
		rec("fresh", map[string]any{"datepublish": newer}),
		rec("heavy", map[string]any{"datepublish": older}),
	}
	records[4].Weight = 200
	for _, r := range records[:4] {
		r.Weight = 50
	}

	dq := &query.DecodedQuery{Strategy: query.OrderSearchWeight, Meta: query.Meta{Page: 1, Limit: 10}}
	got := NewPostProcessor(nil).Apply(dq, records)

	assert.Equal(t, []string{"heavy", "fresh", "alpha", "Beta", "zeta"}, ids(got))
}

func TestPostProcessor_Grouping(t *testing.T) {
	withGroup := func(r *Record, index int, order *int) *Record {
		r.Group = &Group{Index: index}
		r.SortOrder = order
		return r
	}
	records := []*Record{
		rec("loose", nil),
		withGroup(rec("late-b", nil), 2, intPtr(0)),
		withGroup(rec("early-2", nil), 0, intPtr(2)),
		withGroup(rec("late-a", nil), 2, intPtr(0)),
		withGroup(rec("early-1", nil), 0, intPtr(1)),
	}

	dq := &query.DecodedQuery{
		Strategy: query.OrderGrouping,
		Plans:    []*query.QueryPlan{{Order: []query.OrderToken{{Field: "title"}}}},
		Meta:     query.Meta{Page: 1, Limit: 10},
	}
	got := NewPostProcessor(nil).Apply(dq, records)

	assert.Equal(t, []string{"early-1", "early-2", "late-a", "late-b", "loose"}, ids(got))
}

func TestPostProcessor_Shuffle(t *testing.T) {
	build := func() []*Record {
		var out []*Record
		for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
			out = append(out, rec(id, nil))
		}
		return out
	}
	dq := &query.DecodedQuery{Strategy: query.OrderRandom, Meta: query.Meta{Page: 1, Limit: 10}}

	first := NewPostProcessor(rand.New(rand.NewSource(7))).Apply(dq, build())
	second := NewPostProcessor(rand.New(rand.NewSource(7))).Apply(dq, build())

	assert.Equal(t, ids(first), ids(second))
	assert.ElementsMatch(t, []string{"a", "b", "c", "d", "e", "f", "g", "h"}, ids(first))
}

func TestCompareValues(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		a, b any
		want int
	}{
		{name: "nil first", a: nil, b: "x", want: -1},
		{name: "both nil", a: nil, b: nil, want: 0},
		{name: "numbers", a: 9, b: "10", want: -1},
		{name: "times", a: now.Add(time.Hour), b: now, want: 1},
		{name: "strings", a: "apple", b: "banana", want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compareValues(tt.a, tt.b))
		})
	}
}
