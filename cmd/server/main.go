package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/recitals/internal/config"
	"github.com/mmynk/recitals/internal/storage/sqlstore"
	"github.com/mmynk/recitals/pkg/logging"
)

var (
	// Version is set at build time
	Version = "dev"

	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "recitals",
		Short: "Recital planner API server",
		Long: `recitals serves a JSON API for singers to plan recitals: an account system,
an admin-managed song catalog and ordered recital programs.

Settings come from an optional config file and the environment
(JWT_SECRET, DB_DRIVER, DB_DSN, PORT, ...).`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		// Running without a subcommand starts the server.
		RunE: runServe,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

// loadConfig reads the configuration and sets up logging from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}

// openStore connects to the configured database and migrates it.
func openStore(ctx context.Context, cfg *config.Config) (*sqlstore.Store, error) {
	var (
		store *sqlstore.Store
		err   error
	)
	if cfg.DBDriver == config.DriverSQLite {
		store, err = sqlstore.New(cfg.DBDSN)
	} else {
		store, err = sqlstore.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	}
	if err != nil {
		return nil, err
	}

	slog.Info("Storage initialized", "driver", store.Driver())
	return store, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
