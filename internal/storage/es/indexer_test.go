package es

import (
	"context"
	"testing"

	"github.com/DjordjeVuckovic/content-query/internal/storage"
	pkgtesting "github.com/DjordjeVuckovic/content-query/pkg/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexerAndScorer(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	ctx := context.Background()
	container := pkgtesting.NewESContainer(ctx, t)

	cfg := ClientConfig{Addresses: []string{container.Address}, IndexName: "content_test"}
	ct := entriesType()

	indexer, err := NewIndexer(ctx, cfg)
	require.NoError(t, err)

	require.NoError(t, indexer.IndexBulk(ctx, ct, map[string]storage.Row{
		"1": {"title": "Jazz night", "body": "saxophone and drums"},
		"2": {"title": "Rock evening", "body": "a bit of jazz later"},
		"3": {"title": "Poetry", "body": "words only"},
	}))
	require.NoError(t, indexer.Index(ctx, ct, "4", storage.Row{"title": "Jazz jazz jazz"}))
	require.NoError(t, indexer.Remove(ctx, ct, "4"))
	require.NoError(t, indexer.Refresh(ctx))

	scorer, err := NewScorer(cfg)
	require.NoError(t, err)

	scores, err := scorer.Scores(ctx, ct, []string{"1", "2", "3", "4"}, []string{"jazz"})
	require.NoError(t, err)

	assert.Len(t, scores, 2)
	assert.Greater(t, scores["1"], scores["2"])
	assert.NotContains(t, scores, "3")
	assert.NotContains(t, scores, "4")
}
