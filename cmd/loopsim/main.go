package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/loopsim/internal/config"
	"github.com/san-kum/loopsim/internal/observability"
	"github.com/san-kum/loopsim/internal/storage"
)

var (
	configFile string
	dataDir    string
	logLevel   string

	cfg *config.Config
)

// main registers every command and exits with status 1 when the chosen
// command fails. Without a subcommand a preset picker opens the live view.
func main() {
	rootCmd := &cobra.Command{
		Use:           "loopsim",
		Short:         "looping roller coaster simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runMenu,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			observability.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "run storage directory (default "+config.DefaultDataDir+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newRunCmd(),
		newListCmd(),
		newShowCmd(),
		newPlotCmd(),
		newExportCSVCmd(),
		newExportJSONCmd(),
		newSVGCmd(),
		newGIFCmd(),
		newLiveCmd(),
		newGUICmd(),
		newServeCmd(),
		newSweepCmd(),
		newScenarioCmd(),
		newPresetsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		observability.Sync()
		os.Exit(1)
	}
}

// setup loads the configuration (defaults, file, LOOPSIM_* environment),
// applies the persistent flags and starts the logger.
func setup(cmd *cobra.Command) error {
	loaded, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("data") {
		loaded.DataDir = dataDir
	}
	if cmd.Flags().Changed("log-level") {
		loaded.Logger.Level = logLevel
	}
	cfg = loaded

	observability.InitializeLogger(cfg.Logger)
	observability.GetLogger().Debug("configuration loaded",
		zap.String("config_file", configFile),
		zap.String("data_dir", cfg.DataDir))
	return nil
}

func logger() *zap.Logger { return observability.GetLogger() }

func openStore() (*storage.Store, error) {
	return storage.New(cfg.DataDir, logger())
}
