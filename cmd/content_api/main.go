// Package main Content Query API
// @title Content Query API
// @version 1.0
// @description Query local and remote content records with compact text queries
// @contact.name API Support
// @license.name Apache 2.0
// @license.url https://opensource.org/licenses/Apache-2.0
// @BasePath /
package main

import (
	"log/slog"
	"os"

	_ "github.com/DjordjeVuckovic/content-query/docs"
	"github.com/DjordjeVuckovic/content-query/internal/api/router"
	"github.com/DjordjeVuckovic/content-query/internal/api/server"
	"github.com/DjordjeVuckovic/content-query/internal/storage/factory"
	"github.com/DjordjeVuckovic/content-query/pkg/config/env"
	pkgserver "github.com/DjordjeVuckovic/content-query/pkg/server"
	"github.com/labstack/echo/v4"
)

func main() {
	slog.SetLogLoggerLevel(slog.LevelDebug)

	if err := env.LoadDotEnv(os.Getenv("APP_ENV"), "cmd/content_api/.env"); err != nil {
		slog.Info("Skipping .env ...", "error", err)
	}

	sCfg, err := server.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	storageCfg, err := factory.LoadEnv()
	if err != nil {
		slog.Error("Failed to load storage configuration", "error", err)
		os.Exit(1)
	}

	health := pkgserver.NewCompositeHealthChecker()

	s := server.New(sCfg, health).
		SetupMiddlewares().
		SetupErrorHandler().
		SetupHealthChecks("/health").
		SetupMetrics("/metrics").
		SetupOpenApi("/swagger/*")

	backends, err := factory.New(s.Context(), storageCfg)
	if err != nil {
		slog.Error("Failed to create content backends", "error", err)
		os.Exit(1)
	}
	defer backends.Close()
	health.Add("backends", backends.Health)

	s.Echo.GET("/", func(c echo.Context) error {
		return c.String(200, "Content Query API is running")
	})

	router.NewContentRouter(s.Echo, backends.Service).Bind()

	go func() {
		<-s.ShutdownSignal()
		slog.Info("Shutdown started, cleaning up resources...")
	}()

	if err := s.Start(); err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}
