package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/poisearch/internal/config"
	logpkg "github.com/kailas-cloud/poisearch/internal/logger"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
}

// Execute runs the root command. Errors are printed to stderr with exit code 1.
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "poisearch",
		Short: "poisearch - POI exploration over an Elasticsearch-compatible backend",
		Long: `poisearch queries a remote search backend holding POI records for the map
exploration frontend.

It provides:
- an HTTP API for place suggestions, category breakdowns and POI listings
- one-off query commands for the same operations
- the map asset preprocessor that turns world.svg into mapPaths.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&g.configPath, "config", "",
		"config file path (default: config/<ENV>.yaml)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "",
		"log level (debug, info, warn, error) (default: from config)")

	root.AddCommand(newServeCommand(g))
	root.AddCommand(newMapPathsCommand())
	root.AddCommand(newSuggestCommand(g))
	root.AddCommand(newCategoriesCommand(g))
	root.AddCommand(newPOIsCommand(g))
	root.AddCommand(newVersionCommand())
	return root
}

// load reads the configuration and builds the logger.
func (g *globalFlags) load() (config.Config, *zap.Logger, error) {
	env := config.GetEnv()

	var (
		cfg config.Config
		err error
	)
	if g.configPath != "" {
		cfg, err = config.LoadFile(g.configPath)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.Logging.Level
	if g.logLevel != "" {
		level = g.logLevel
	}
	logger, err := logpkg.NewLogger(env, level)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}
