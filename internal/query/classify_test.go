package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	c, err := Classify(Params{
		"page":         "2",
		"limit":        10,
		"offset":       float64(4),
		"paging":       "true",
		"order":        " -title ",
		"returnsingle": false,
		"status":       "published",
		"entries":      Params{"title": "x"},
	})
	require.NoError(t, err)

	assert.Equal(t, Meta{Page: 2, Limit: 10, Offset: 4, Paging: true, Order: "-title"}, c.Meta)
	require.NotNil(t, c.ReturnSingle)
	assert.False(t, *c.ReturnSingle)
	assert.Equal(t, Params{"status": "published", "entries": Params{"title": "x"}}, c.Filters)
	assert.True(t, c.Hydrate)
	assert.False(t, c.LogNotFound)
}

func TestClassify_NoReturnSingle(t *testing.T) {
	c, err := Classify(nil)
	require.NoError(t, err)
	assert.Nil(t, c.ReturnSingle)
	assert.Empty(t, c.Filters)
}

func TestClassify_InvalidNumbers(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{name: "not a number", params: Params{"page": "x"}},
		{name: "negative string", params: Params{"limit": "-1"}},
		{name: "fraction string", params: Params{"offset": "1.5"}},
		{name: "negative int", params: Params{"page": -3}},
		{name: "negative int64", params: Params{"limit": int64(-1)}},
		{name: "negative float", params: Params{"offset": float64(-4)}},
		{name: "fraction float", params: Params{"limit": 2.5}},
		{name: "float beyond exact range", params: Params{"page": 1e300}},
		{name: "string beyond int", params: Params{"limit": "92233720368547758070"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Classify(tt.params)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func TestDistribute(t *testing.T) {
	t.Run("single type gets everything", func(t *testing.T) {
		got := Distribute([]string{"entries"}, Params{"title": "a", "pages": Params{"x": 1}})
		assert.Equal(t, map[string]Params{"entries": {"title": "a", "pages": Params{"x": 1}}}, got)
	})

	t.Run("globals copied without overriding", func(t *testing.T) {
		got := Distribute([]string{"entries", "pages"}, Params{
			"status":  "published",
			"title":   "global",
			"entries": Params{"title": "own"},
		})
		assert.Equal(t, map[string]Params{
			"entries": {"status": "published", "title": "own"},
			"pages":   {"status": "published", "title": "global"},
		}, got)
	})

	t.Run("non map value under a type key", func(t *testing.T) {
		got := Distribute([]string{"entries", "pages"}, Params{"entries": "oops"})
		assert.Equal(t, map[string]Params{"entries": {}, "pages": {}}, got)
	})
}
