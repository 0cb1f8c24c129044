package factory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DjordjeVuckovic/content-query/internal/content"
	"github.com/DjordjeVuckovic/content-query/internal/query"
	"github.com/DjordjeVuckovic/content-query/internal/schema"
	"github.com/DjordjeVuckovic/content-query/internal/storage"
	"github.com/DjordjeVuckovic/content-query/internal/storage/es"
	"github.com/DjordjeVuckovic/content-query/internal/storage/in_mem"
	"github.com/DjordjeVuckovic/content-query/internal/storage/pg"
	"github.com/DjordjeVuckovic/content-query/internal/storage/remote"
	"github.com/DjordjeVuckovic/content-query/pkg/server"
)

// Backends is the content service wired from a Config, together with the
// resources it owns.
type Backends struct {
	Types   *schema.Registry
	Service *content.Service
	// Indexer is nil when no search index is configured.
	Indexer *es.Indexer
	Health  *server.CompositeHealthChecker

	pool *pg.ConnectionPool
}

func New(ctx context.Context, cfg *Config) (*Backends, error) {
	types, err := schema.LoadFile(cfg.SchemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load content types from %s: %w", cfg.SchemaPath, err)
	}
	slog.Info("content types loaded", "path", cfg.SchemaPath, "count", len(types.All()))

	b := &Backends{
		Types:  types,
		Health: server.NewCompositeHealthChecker(),
	}
	opts := []content.Option{content.WithChangeLog(content.NewChangeLog(slog.Default()))}

	relational, err := b.newRelational(ctx, cfg)
	if err != nil {
		return nil, err
	}
	opts = append(opts, content.WithRelational(relational))

	if cfg.Remote != nil {
		client, err := remote.NewClient(*cfg.Remote)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to create remote client: %w", err)
		}
		opts = append(opts, content.WithRemote(content.Backend{
			Executor: remote.NewExecutor(client),
			Storer:   remote.NewStorer(client),
		}))
		slog.Info("remote backend configured", "url", cfg.Remote.BaseURL)
	}

	if cfg.Es != nil {
		indexer, err := es.NewIndexer(ctx, *cfg.Es)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to create search indexer: %w", err)
		}
		scorer, err := es.NewScorer(*cfg.Es)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to create search scorer: %w", err)
		}

		weighers := content.NewWeigherRegistry()
		weighers.Register(content.WeigherIndex, content.NewIndexWeigher(scorer))
		opts = append(opts, content.WithIndexer(indexer), content.WithWeighers(weighers))

		b.Indexer = indexer
		b.Health.Add("elasticsearch", indexer)
		slog.Info("search index configured", "index", cfg.Es.IndexName)
	}

	prefix := ""
	if cfg.Pg != nil {
		prefix = cfg.Pg.TablePrefix
	}
	decoder := query.NewDecoder(types, query.WithStrict(cfg.Strict), query.WithTablePrefix(prefix))
	b.Service = content.NewService(types, decoder, opts...)

	return b, nil
}

func (b *Backends) newRelational(ctx context.Context, cfg *Config) (content.Backend, error) {
	switch cfg.Type {
	case storage.PG:
		pool, err := pg.NewConnectionPool(ctx, *cfg.Pg)
		if err != nil {
			return content.Backend{}, fmt.Errorf("failed to create PostgreSQL connection pool: %w", err)
		}
		b.pool = pool
		b.Health.Add("postgres", pg.NewHealthChecker(pool))

		slog.Info("relational backend configured", "type", cfg.Type, "table_prefix", pool.TablePrefix())
		return content.Backend{
			Executor: pg.NewExecutor(pg.NewRawExecutor(pool), pool.TablePrefix()),
			Storer:   pg.NewStorer(pool),
			Enricher: pg.NewTaxonomyEnricher(pool),
		}, nil

	case storage.InMem:
		slog.Warn("no database configured, local content is kept in memory")
		store := in_mem.NewStore()
		return content.Backend{Executor: store, Storer: store, Enricher: store}, nil

	default:
		return content.Backend{}, fmt.Errorf("%w: %q", storage.ErrUnsupportedStorage, cfg.Type)
	}
}

// Close releases the database pool, if any.
func (b *Backends) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
}
