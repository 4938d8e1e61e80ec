package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/justestif/moodtune/internal/config"
	"github.com/justestif/moodtune/internal/logging"
)

// globals holds what every subcommand needs after the root pre-run.
type globals struct {
	envFile  string
	logLevel string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:           "moodtune",
		Short:         "Find music that matches how you feel",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if g.logger != nil {
				_ = g.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&g.envFile, "env-file", ".env", "dotenv file to load before the environment")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "override LOG_LEVEL")

	root.AddCommand(
		newServeCmd(g),
		newClassifyCmd(g),
		newSearchCmd(g),
		newRecommendCmd(g),
	)
	return root
}

func (g *globals) load() error {
	cfg, err := config.Load(g.envFile)
	if err != nil {
		return err
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	g.cfg = cfg
	g.logger = logger
	return nil
}
