package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/omnipulse/omnipulse/internal/config"
	"github.com/omnipulse/omnipulse/internal/db"
	"github.com/omnipulse/omnipulse/internal/db/mongodb"
	"github.com/omnipulse/omnipulse/internal/db/sqlite"
	"github.com/omnipulse/omnipulse/internal/logger"
)

var (
	cfgFile  string
	cfg      *config.Config
	database db.Database
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "omnipulse",
	Short: "Analytics engine for a multi-channel conversational assistant",
	Long: `Omnipulse aggregates completed conversation sessions from WhatsApp,
Instagram, Facebook, Threads, LinkedIn and the web widget into per-day
counters, and serves the operational and lead-insight dashboards built
from them.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip init for the init command itself
		if cmd.Name() == "init" {
			return nil
		}

		if cfgFile == "" {
			if envPath := os.Getenv("OMNIPULSE_CONFIG_PATH"); envPath != "" {
				cfgFile = envPath
			} else {
				cfgFile = config.GetConfigPath()
			}
		}

		if !config.Exists(cfgFile) {
			return fmt.Errorf("configuration file not found. Run 'omnipulse init' to create one")
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger.Init(logger.ParseLogLevel(cfg.LogLevel), os.Stdout)

		dbConfig := &db.Config{
			Provider: cfg.Database.Provider,
			URI:      cfg.Database.URI,
			Database: cfg.Database.Database,
			Options:  cfg.Database.Options,
		}

		switch dbConfig.Provider {
		case "mongodb":
			database, err = mongodb.New(dbConfig)
		case "sqlite":
			database, err = sqlite.New(dbConfig)
		default:
			return fmt.Errorf("unsupported database provider: %s", dbConfig.Provider)
		}
		if err != nil {
			return fmt.Errorf("failed to create database: %w", err)
		}

		if err := database.Connect(context.Background()); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if database != nil {
			database.Disconnect(context.Background())
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.omnipulse/config.yaml)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(schedulerCmd)
}
