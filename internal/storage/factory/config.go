package factory

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/DjordjeVuckovic/content-query/internal/storage"
	"github.com/DjordjeVuckovic/content-query/internal/storage/es"
	"github.com/DjordjeVuckovic/content-query/internal/storage/pg"
	"github.com/DjordjeVuckovic/content-query/internal/storage/remote"
	"github.com/DjordjeVuckovic/content-query/pkg/config/env"
	"github.com/DjordjeVuckovic/content-query/pkg/utils"
)

const defaultSchemaPath = "config/contenttypes.yml"

type Config struct {
	SchemaPath string
	// Strict makes unresolved content types in a textquery list an error.
	Strict bool

	storage.Type
	Pg     *pg.PoolConfig
	Remote *remote.Config
	Es     *es.ClientConfig
}

func LoadEnv() (*Config, error) {
	cfg := &Config{
		SchemaPath: env.GetOr("SCHEMA_PATH", defaultSchemaPath),
		Strict:     env.GetBool("STRICT_CONTENTTYPES"),
		Type:       storage.Type(env.GetOr("STORAGE_TYPE", "")),
	}

	connStr := os.Getenv("PG_CONNECTION_STRING")
	if cfg.Type == "" {
		cfg.Type = storage.InMem
		if connStr != "" {
			cfg.Type = storage.PG
		}
	}
	if !cfg.Type.Valid() {
		slog.Error("Invalid STORAGE_TYPE environment variable value", "value", cfg.Type)
		return nil, fmt.Errorf("%w: %q, expected one of %v", storage.ErrUnsupportedStorage, cfg.Type, []storage.Type{storage.PG, storage.InMem})
	}

	if cfg.Type == storage.PG {
		if connStr == "" {
			slog.Error("PostgreSQL connection string is not set")
			return nil, fmt.Errorf("PostgreSQL connection string is not set")
		}
		cfg.Pg = &pg.PoolConfig{
			ConnStr:     connStr,
			TablePrefix: os.Getenv("PG_TABLE_PREFIX"),
		}
		if v := os.Getenv("PG_MAX_CONNS"); v != "" {
			n, err := strconv.ParseInt(v, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid PG_MAX_CONNS: %w", err)
			}
			cfg.Pg.MaxConns = int32(n)
		}
	}

	if baseURL := os.Getenv("REMOTE_BACKEND_URL"); baseURL != "" {
		cfg.Remote = &remote.Config{
			BaseURL:      baseURL,
			AccessToken:  os.Getenv("REMOTE_ACCESS_TOKEN"),
			TokenType:    os.Getenv("REMOTE_TOKEN_TYPE"),
			ClientSecret: os.Getenv("REMOTE_CLIENT_SECRET"),
			UserAgent:    os.Getenv("REMOTE_USER_AGENT"),
			Language:     os.Getenv("REMOTE_LANGUAGE"),
			UseETags:     env.GetBool("REMOTE_USE_ETAGS"),
		}
		if v := os.Getenv("REMOTE_TIMEOUT"); v != "" {
			timeout, err := time.ParseDuration(v)
			if err != nil {
				return nil, fmt.Errorf("invalid REMOTE_TIMEOUT: %w", err)
			}
			cfg.Remote.Timeout = timeout
		}
	} else {
		slog.Info("REMOTE_BACKEND_URL is not set, remote content types are unavailable")
	}

	if addresses := os.Getenv("ES_ADDRESSES"); addresses != "" {
		cfg.Es = &es.ClientConfig{
			Addresses: utils.SplitList(addresses, ","),
			IndexName: os.Getenv("ES_INDEX_NAME"),
			Username:  os.Getenv("ES_USERNAME"),
			Password:  os.Getenv("ES_PASSWORD"),
		}
		if len(cfg.Es.Addresses) == 0 || cfg.Es.IndexName == "" {
			slog.Error("Elasticsearch configuration is incomplete", "addresses", cfg.Es.Addresses, "indexName", cfg.Es.IndexName)
			return nil, fmt.Errorf("elasticsearch configuration is incomplete: addresses or index name is missing")
		}
	}

	return cfg, nil
}
