package es

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/DjordjeVuckovic/content-query/internal/schema"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/operator"
)

// Scorer asks the index how relevant already fetched records are to a set of
// search words. It never decides which records match.
type Scorer struct {
	client    *elasticsearch.TypedClient
	indexName string
}

func NewScorer(config ClientConfig) (*Scorer, error) {
	client, err := newClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}
	return &Scorer{client: client, indexName: config.IndexName}, nil
}

// Scores returns the relevance of each record id. Records the index does not
// know, or that do not match any word, are absent from the result.
func (s *Scorer) Scores(ctx context.Context, ct *schema.ContentType, ids []string, words []string) (map[string]float64, error) {
	scores := make(map[string]float64, len(ids))
	if len(ids) == 0 || len(words) == 0 {
		return scores, nil
	}

	docIDs := make([]string, len(ids))
	byDocID := make(map[string]string, len(ids))
	for i, id := range ids {
		docIDs[i] = DocumentID(ct.Slug, id)
		byDocID[docIDs[i]] = id
	}

	or := operator.Or
	q := &types.Query{
		Bool: &types.BoolQuery{
			Filter: []types.Query{
				{Ids: &types.IdsQuery{Values: docIDs}},
			},
			Must: []types.Query{
				{MultiMatch: &types.MultiMatchQuery{
					Query:    strings.Join(words, " "),
					Fields:   []string{"title^2", "body"},
					Operator: &or,
				}},
			},
		},
	}

	res, err := s.client.Search().
		Index(s.indexName).
		Query(q).
		Size(len(ids)).
		TrackScores(true).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to score %s: %w", ct.Slug, err)
	}

	for _, hit := range res.Hits.Hits {
		if hit.Id_ == nil || hit.Score_ == nil {
			continue
		}
		if id, ok := byDocID[*hit.Id_]; ok {
			scores[id] = float64(*hit.Score_)
		}
	}

	slog.Debug("search index scores", "contenttype", ct.Slug, "requested", len(ids), "scored", len(scores))
	return scores, nil
}
