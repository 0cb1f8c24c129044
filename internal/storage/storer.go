package storage

import (
	"context"

	"github.com/DjordjeVuckovic/content-query/internal/schema"
)

type Row = map[string]interface{}

// Storer is the write path of a backend.
type Storer interface {
	// Insert stores a new record and returns its identifier.
	Insert(ctx context.Context, ct *schema.ContentType, values Row) (string, error)
	Update(ctx context.Context, ct *schema.ContentType, id string, values Row) error
	Delete(ctx context.Context, ct *schema.ContentType, id string) error
	// Find returns ErrRecordNotFound when no record has the identifier.
	Find(ctx context.Context, ct *schema.ContentType, id string) (Row, error)
}

// TaxonomyTerm is one taxonomy assignment of a record.
type TaxonomyTerm struct {
	Taxonomy  string `json:"taxonomy"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	SortOrder int    `json:"sortorder"`
}

// Enricher attaches taxonomy terms to records, keyed by record id.
type Enricher interface {
	Taxonomies(ctx context.Context, ct *schema.ContentType, ids []string) (map[string][]TaxonomyTerm, error)
}

// Indexer mirrors saved records into a secondary search index.
type Indexer interface {
	Index(ctx context.Context, ct *schema.ContentType, id string, values Row) error
	Remove(ctx context.Context, ct *schema.ContentType, id string) error
}
