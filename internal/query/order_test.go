package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompileOrder(t *testing.T) {
	r := testRegistry(t)

	tests := []struct {
		name     string
		ct       string
		dialect  Dialect
		strategy OrderStrategy
		explicit []string
		want     []OrderToken
	}{
		{name: "explicit descending", ct: "entries", explicit: []string{"-title"}, want: []OrderToken{{Field: "title", Desc: true}}},
		{name: "explicit ascending with plus", ct: "entries", explicit: []string{"+rating"}, want: []OrderToken{{Field: "rating"}}},
		{name: "several explicit", ct: "entries", explicit: []string{"rating, -title", "id"}, want: []OrderToken{{Field: "rating"}, {Field: "title", Desc: true}, {Field: "id"}}},
		{name: "invalid falls back to default sort", ct: "pages", explicit: []string{"-nope"}, want: []OrderToken{{Field: "title"}}},
		{name: "no sort falls back to recency", ct: "events", dialect: Remote, want: []OrderToken{{Field: "datepublish", Desc: true}}},
		{name: "random relational", ct: "entries", explicit: []string{"random"}, want: []OrderToken{{Random: true}}},
		{name: "random remote dropped", ct: "events", dialect: Remote, explicit: []string{"RANDOM"}, want: []OrderToken{{Field: "datepublish", Desc: true}}},
		{name: "random consumed by strategy", ct: "entries", strategy: OrderRandom, explicit: []string{"RANDOM"}, want: []OrderToken{{Field: "datepublish", Desc: true}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct, _ := r.Lookup(tt.ct)
			assert.Equal(t, tt.want, CompileOrder(ct, tt.dialect, tt.strategy, tt.explicit...))
		})
	}
}

func TestOrderToken_String(t *testing.T) {
	assert.Equal(t, "-title", OrderToken{Field: "title", Desc: true}.String())
	assert.Equal(t, "+title", OrderToken{Field: "title"}.String())
	assert.Equal(t, "RANDOM", OrderToken{Random: true}.String())
}
