package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/DjordjeVuckovic/content-query/internal/schema"
	"github.com/DjordjeVuckovic/content-query/internal/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
)

// Indexer mirrors saved records into the search index used for weighting.
type Indexer struct {
	client    *elasticsearch.TypedClient
	indexName string
	now       func() time.Time
}

func NewIndexer(ctx context.Context, config ClientConfig) (*Indexer, error) {
	client, err := newClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}
	idx := &Indexer{
		client:    client,
		indexName: config.IndexName,
		now:       time.Now,
	}

	if err := idx.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}

	return idx, nil
}

func (e *Indexer) Index(ctx context.Context, ct *schema.ContentType, id string, values storage.Row) error {
	doc := toDocument(ct, id, values, e.now())
	docID := DocumentID(ct.Slug, id)

	res, err := e.client.Index(e.indexName).Id(docID).Document(doc).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to index %s: %w", docID, err)
	}

	slog.Debug("record indexed", "id", docID, "index", e.indexName, "result", res.Result)
	return nil
}

func (e *Indexer) Remove(ctx context.Context, ct *schema.ContentType, id string) error {
	docID := DocumentID(ct.Slug, id)

	res, err := e.client.Delete(e.indexName, docID).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove %s from index: %w", docID, err)
	}

	slog.Debug("record removed from index", "id", docID, "index", e.indexName, "result", res.Result)
	return nil
}

// IndexBulk indexes many records of one content type, keyed by record id.
func (e *Indexer) IndexBulk(ctx context.Context, ct *schema.ContentType, rows map[string]storage.Row) error {
	if len(rows) == 0 {
		return nil
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         e.indexName,
		Client:        e.client,
		NumWorkers:    4,
		FlushBytes:    5e+6,
		FlushInterval: 30 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to create bulk indexer: %w", err)
	}

	var successful, failed atomic.Int64
	now := e.now()

	for id, values := range rows {
		docID := DocumentID(ct.Slug, id)
		docBytes, err := json.Marshal(toDocument(ct, id, values, now))
		if err != nil {
			slog.Error("failed to marshal document", "error", err, "id", docID)
			failed.Add(1)
			continue
		}

		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: docID,
			Body:       bytes.NewReader(docBytes),
			OnSuccess: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem) {
				successful.Add(1)
			},
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				failed.Add(1)
				if err != nil {
					slog.Error("bulk index error", "error", err, "id", item.DocumentID)
				} else {
					slog.Error("bulk index error", "status", res.Status, "error", res.Error.Type, "reason", res.Error.Reason, "id", item.DocumentID)
				}
			},
		})
		if err != nil {
			failed.Add(1)
			slog.Error("failed to add document to bulk indexer", "error", err, "id", docID)
		}
	}

	if err := bi.Close(ctx); err != nil {
		return fmt.Errorf("failed to close bulk indexer: %w", err)
	}

	slog.Info("bulk indexing completed",
		"contenttype", ct.Slug,
		"successful", successful.Load(),
		"failed", failed.Load(),
		"index", e.indexName)

	if n := failed.Load(); n > 0 {
		return fmt.Errorf("failed to index %d out of %d %s records", n, len(rows), ct.Slug)
	}
	return nil
}

// Refresh makes recent writes visible to search.
func (e *Indexer) Refresh(ctx context.Context) error {
	_, err := e.client.Indices.Refresh().Index(e.indexName).Do(ctx)
	return err
}

func (e *Indexer) EnsureIndex(ctx context.Context) error {
	exists, err := e.client.Indices.Exists(e.indexName).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to check if index exists: %w", err)
	}
	if exists {
		slog.Debug("index already exists", "index", e.indexName)
		return nil
	}

	settings := buildSettings()
	mappings := buildMapping()

	res, err := e.client.Indices.Create(e.indexName).
		Settings(&settings).
		Mappings(&mappings).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	if !res.Acknowledged {
		return fmt.Errorf("index creation was not acknowledged")
	}

	slog.Info("index created", "index", e.indexName)
	return nil
}

var _ storage.Indexer = (*Indexer)(nil)

// Healthy reports whether the cluster answers a ping.
func (e *Indexer) Healthy(ctx context.Context) bool {
	ok, err := e.client.Ping().Do(ctx)
	if err != nil {
		slog.Warn("elasticsearch ping failed", "error", err)
		return false
	}
	return ok
}
