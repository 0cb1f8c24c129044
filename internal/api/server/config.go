package server

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/DjordjeVuckovic/content-query/pkg/config/env"
	"github.com/DjordjeVuckovic/content-query/pkg/utils"
)

const defaultShutdownTimeout = 10 * time.Second

type Config struct {
	Port            string
	UseHttp2        bool
	CorsOrigins     []string
	ShutdownTimeout time.Duration
}

// LoadConfig reads PORT, USE_HTTP2, CORS_ORIGINS and SHUTDOWN_TIMEOUT. Load
// the .env file before calling it.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:            env.GetOr("PORT", "8080"),
		UseHttp2:        env.GetBool("USE_HTTP2"),
		CorsOrigins:     utils.SplitList(os.Getenv("CORS_ORIGINS"), ","),
		ShutdownTimeout: defaultShutdownTimeout,
	}

	if err := validatePort(cfg.Port); err != nil {
		return nil, fmt.Errorf("invalid port: %w", err)
	}
	if len(cfg.CorsOrigins) == 0 {
		cfg.CorsOrigins = []string{"*"}
	}

	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT %q: must be a positive duration", v)
		}
		cfg.ShutdownTimeout = d
	}

	return cfg, nil
}

func validatePort(port string) error {
	n, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("port must be a number, got %q", port)
	}
	if n < 0 || n > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got %d", n)
	}
	return nil
}
