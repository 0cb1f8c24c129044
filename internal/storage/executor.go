package storage

import (
	"context"

	"github.com/DjordjeVuckovic/content-query/internal/query"
)

type ExecOptions struct {
	TimeoutSeconds int
}

// ExecuteResult holds the raw rows of one plan. TotalHits is the number of
// matches before limit and offset were applied.
type ExecuteResult struct {
	TotalHits int
	Hits      []map[string]interface{}
}

// Executor runs one query plan against a backend dialect.
type Executor interface {
	Execute(ctx context.Context, plan *query.QueryPlan, dq *query.DecodedQuery) (*ExecuteResult, error)
}

// RawExecutor defines the interface for executing db queries.
type RawExecutor interface {
	// Exec executes a query with the given parameters and options
	// Order of params must match the order of placeholders in the query.
	Exec(ctx context.Context, query string, params []interface{}, baseOpts *ExecOptions) (*ExecuteResult, error)
}
