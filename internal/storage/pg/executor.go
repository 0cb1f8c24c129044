package pg

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DjordjeVuckovic/content-query/internal/metrics"
	"github.com/DjordjeVuckovic/content-query/internal/query"
	"github.com/DjordjeVuckovic/content-query/internal/storage"
)

// Executor runs relational query plans: one bounded SELECT plus, when the
// plan asks for it, a COUNT over the same filters.
type Executor struct {
	raw           storage.RawExecutor
	taxonomyTable string
	opts          *storage.ExecOptions
	now           func() time.Time
}

type ExecutorOption func(*Executor)

func WithExecOptions(opts *storage.ExecOptions) ExecutorOption {
	return func(e *Executor) { e.opts = opts }
}

func WithExecutorClock(now func() time.Time) ExecutorOption {
	return func(e *Executor) { e.now = now }
}

func NewExecutor(raw storage.RawExecutor, tablePrefix string, opts ...ExecutorOption) *Executor {
	e := &Executor{
		raw:           raw,
		taxonomyTable: TaxonomyTable(tablePrefix),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TaxonomyTable is the name of the shared taxonomy assignment table.
func TaxonomyTable(prefix string) string {
	return prefix + "taxonomy"
}

func (e *Executor) Execute(ctx context.Context, plan *query.QueryPlan, dq *query.DecodedQuery) (*storage.ExecuteResult, error) {
	start := time.Now()
	res, err := e.execute(ctx, plan, dq)
	metrics.ObservePlan(query.Relational.String(), start, err)
	return res, err
}

func (e *Executor) execute(ctx context.Context, plan *query.QueryPlan, dq *query.DecodedQuery) (*storage.ExecuteResult, error) {
	now := e.now()
	b := newSQLBuilder(plan, e.taxonomyTable, now)

	sql, args, err := b.Select()
	if err != nil {
		return nil, err
	}
	e.logQuery(dq, plan, sql, args)

	res, err := e.raw.Exec(ctx, sql, args, e.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", plan.Collection, err)
	}

	if !plan.Count || plan.ResourceID != "" {
		return res, nil
	}

	countSQL, countArgs, err := newSQLBuilder(plan, e.taxonomyTable, now).Count()
	if err != nil {
		return nil, err
	}
	e.logQuery(dq, plan, countSQL, countArgs)

	counted, err := e.raw.Exec(ctx, countSQL, countArgs, e.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to count %s: %w", plan.Collection, err)
	}
	if len(counted.Hits) == 1 {
		res.TotalHits = asInt(counted.Hits[0]["total"])
	}

	return res, nil
}

func (e *Executor) logQuery(dq *query.DecodedQuery, plan *query.QueryPlan, sql string, args []any) {
	level := slog.LevelDebug
	if dq != nil && dq.Meta.PrintQuery {
		level = slog.LevelInfo
	}
	slog.Log(context.Background(), level, "relational query",
		"contenttype", plan.Slug(),
		"sql", sql,
		"args", args)
}

var _ storage.Executor = (*Executor)(nil)
