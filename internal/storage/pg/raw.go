package pg

import (
	"context"
	"time"

	"github.com/DjordjeVuckovic/content-query/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RawExecutor runs SQL and returns each row as a column-keyed map.
type RawExecutor struct {
	db *pgxpool.Pool
}

func NewRawExecutor(pool *ConnectionPool) *RawExecutor {
	return &RawExecutor{db: pool.GetConn()}
}

func (e *RawExecutor) Exec(
	ctx context.Context,
	sql string,
	params []interface{},
	opts *storage.ExecOptions) (*storage.ExecuteResult, error) {
	queryCtx, cancel := e.newQueryCtx(ctx, opts)
	defer cancel()

	rows, err := e.db.Query(queryCtx, sql, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]map[string]interface{}, 0)
	fieldDescriptions := rows.FieldDescriptions()

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}

		row := make(map[string]interface{}, len(values))
		for i, fd := range fieldDescriptions {
			row[fd.Name] = values[i]
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &storage.ExecuteResult{
		TotalHits: len(results),
		Hits:      results,
	}, nil
}

func (e *RawExecutor) newQueryCtx(ctx context.Context, opts *storage.ExecOptions) (context.Context, context.CancelFunc) {
	if opts != nil && opts.TimeoutSeconds > 0 {
		return context.WithTimeout(ctx, time.Duration(opts.TimeoutSeconds)*time.Second)
	}
	return ctx, func() {}
}

var _ storage.RawExecutor = (*RawExecutor)(nil)
