package testing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const pgImage = "postgres:17.5"

type PGContainer struct {
	Container  testcontainers.Container
	ConnString string
}

type PGConfig struct {
	Database string
	Username string
	Password string
	// MigrationsDir defaults to db/migrations of the repository.
	MigrationsDir string
}

func (c PGConfig) withDefaults() PGConfig {
	if c.Database == "" {
		c.Database = "content_test_db"
	}
	if c.Username == "" {
		c.Username = "test"
	}
	if c.Password == "" {
		c.Password = "test"
	}
	if c.MigrationsDir == "" {
		_, b, _, _ := runtime.Caller(0)
		c.MigrationsDir = filepath.Join(filepath.Dir(b), "../..", "db", "migrations")
	}
	return c
}

func NewPGContainer(ctx context.Context, cfg PGConfig) (*PGContainer, error) {
	return startPG(ctx, cfg.withDefaults())
}

// NewPGContainerWithCleanup starts a migrated database and terminates it when tb finishes.
func NewPGContainerWithCleanup(ctx context.Context, tb testing.TB) *PGContainer {
	tb.Helper()

	c, err := startPG(ctx, PGConfig{}.withDefaults())
	if err != nil {
		tb.Fatalf("failed to create postgres container: %v", err)
	}

	tb.Cleanup(func() {
		if err := testcontainers.TerminateContainer(c.Container); err != nil {
			tb.Logf("failed to terminate postgres container: %v", err)
		}
	})

	return c
}

// initScript concatenates every *.up.sql migration in name order.
func initScript(dir string) (string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		return "", fmt.Errorf("failed to find migration files: %w", err)
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no migrations in %s", dir)
	}
	sort.Strings(files)

	var sb strings.Builder
	for _, f := range files {
		content, err := os.ReadFile(f)
		if err != nil {
			return "", fmt.Errorf("failed to read migration file %s: %w", f, err)
		}
		sb.Write(content)
		sb.WriteString("\n")
	}

	tmp, err := os.CreateTemp("", "content-migrations-*.sql")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer tmp.Close()

	if _, err := tmp.WriteString(sb.String()); err != nil {
		return "", fmt.Errorf("failed to write migrations: %w", err)
	}
	return tmp.Name(), nil
}

func startPG(ctx context.Context, cfg PGConfig) (*PGContainer, error) {
	script, err := initScript(cfg.MigrationsDir)
	if err != nil {
		return nil, err
	}

	container, err := postgres.Run(ctx,
		pgImage,
		postgres.WithDatabase(cfg.Database),
		postgres.WithUsername(cfg.Username),
		postgres.WithPassword(cfg.Password),
		postgres.WithInitScripts(script),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	return &PGContainer{
		Container:  container,
		ConnString: connStr,
	}, nil
}
