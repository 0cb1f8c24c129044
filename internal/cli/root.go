package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/DjordjeVuckovic/content-query/internal/storage/factory"
	"github.com/DjordjeVuckovic/content-query/pkg/config/env"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	EnvFile string

	// Open wires the configured backends.
	Open func(ctx context.Context, opts *RootOptions) (*factory.Backends, error)
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	return NewRootCommandWith(&RootOptions{Open: OpenBackends})
}

// NewRootCommandWith builds the command tree around opts, so callers can
// replace how backends are opened.
func NewRootCommandWith(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contentq",
		Short: "Query content records with text queries",
		Long: `contentq runs text queries such as "page/12", "(entries,pages)/search/5"
or "events/latest/3" against the configured local and remote backends.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetLogLoggerLevel(level)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "path of the .env file to load")

	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewTypesCommand(opts))
	cmd.AddCommand(NewReindexCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))

	return cmd
}

// OpenBackends loads the environment and wires the backends it configures.
func OpenBackends(ctx context.Context, opts *RootOptions) (*factory.Backends, error) {
	if err := env.LoadDotEnv(os.Getenv("APP_ENV"), opts.EnvFile); err != nil {
		slog.Debug("no .env file loaded", "path", opts.EnvFile, "error", err)
	}

	cfg, err := factory.LoadEnv()
	if err != nil {
		return nil, err
	}
	return factory.New(ctx, cfg)
}
