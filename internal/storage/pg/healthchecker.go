package pg

import (
	"context"
	"log/slog"
)

// HealthChecker reports the relational backend healthy when the pool answers
// a ping and the taxonomy table is reachable.
type HealthChecker struct {
	pool          *ConnectionPool
	taxonomyTable string
}

func NewHealthChecker(pool *ConnectionPool) *HealthChecker {
	return &HealthChecker{
		pool:          pool,
		taxonomyTable: TaxonomyTable(pool.TablePrefix()),
	}
}

func (hc *HealthChecker) Healthy(ctx context.Context) bool {
	if err := hc.pool.Ping(ctx); err != nil {
		slog.Warn("postgres ping failed", "error", err)
		return false
	}

	if _, err := hc.pool.GetConn().Exec(ctx, "SELECT 1 FROM "+ident(hc.taxonomyTable)+" LIMIT 1"); err != nil {
		slog.Warn("taxonomy table is not reachable", "table", hc.taxonomyTable, "error", err)
		return false
	}
	return true
}
