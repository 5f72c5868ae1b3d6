package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/burhani-guards/guards-api/internal/platform/config"
	"github.com/burhani-guards/guards-api/internal/platform/logging"
)

const programName = "guards-api"

var globalFlags = struct {
	debug      bool
	configFile string
	envFile    string
}{}

// commonRun loads the configuration and installs the process logger. --debug wins over the
// configured log level.
func commonRun() (*config.Config, *slog.Logger, error) {
	var envFiles []string
	if globalFlags.envFile != "" {
		envFiles = append(envFiles, globalFlags.envFile)
	}
	cfg, err := config.Load(globalFlags.configFile, envFiles...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	if globalFlags.debug {
		level = slog.LevelDebug
	}
	logger := logging.New(os.Stdout, level).With("component", programName)
	slog.SetDefault(logger)

	if _, err := maxprocs.Set(maxprocs.Logger(logging.Printf(logger))); err != nil {
		return nil, nil, fmt.Errorf("set GOMAXPROCS: %w", err)
	}
	return cfg, logger, nil
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Volunteer coordination API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().
		BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")
	rootCmd.PersistentFlags().
		StringVar(&globalFlags.configFile, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().
		StringVar(&globalFlags.envFile, "env-file", "", "dotenv file to load (default .env)")

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(migrateCommand())
	rootCmd.AddCommand(hashPasswordCommand())
	return rootCmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
