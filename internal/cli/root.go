// Package cli implements the autotile command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lawnchairsociety/autotile/internal/config"
	"github.com/lawnchairsociety/autotile/internal/logger"
	"github.com/lawnchairsociety/autotile/internal/telemetry"
)

// RootOptions holds global flags and the configuration they load.
type RootOptions struct {
	ConfigPath string
	Verbose    bool

	Config   *config.Config
	shutdown func(context.Context) error
}

// NewRootCommand creates the root command for the autotile CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "autotile",
		Short: "Rule-based tile resolution for grid maps",
		Long: `autotile decorates open/blocked grid layouts with tile ids chosen by
3x3 neighborhood rules, propagating directional constraints until every
cell is placed.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.teardown(cmd.Context())
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "autotile.yaml", "config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	// Add subcommands
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewRunsCommand(opts))

	return cmd
}

// setup loads configuration and starts logging and tracing
func (o *RootOptions) setup(ctx context.Context) error {
	cfg, err := config.LoadConfig(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if o.Verbose {
		cfg.Logging.Level = "DEBUG"
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}
	if err := logger.Initialize(cfg.Logging); err != nil {
		return WrapExitError(ExitCommandError, "failed to initialize logging", err)
	}

	if cfg.Telemetry.Enabled {
		if ctx == nil {
			ctx = context.Background()
		}
		shutdown, err := telemetry.Setup(ctx)
		if err != nil {
			logger.Warning("Telemetry disabled", "error", err)
		} else {
			o.shutdown = shutdown
		}
	}

	o.Config = cfg
	logger.Debug("Configuration loaded", "path", o.ConfigPath, "rules", cfg.RulesName())
	return nil
}

func (o *RootOptions) teardown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var err error
	if o.shutdown != nil {
		err = o.shutdown(ctx)
		o.shutdown = nil
	}
	if cerr := logger.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
