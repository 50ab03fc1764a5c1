package main

import (
	"fmt"
	"os"

	"equiprent/internal/config"
	"equiprent/internal/database"
	"equiprent/internal/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	configPath string

	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "equiprent",
	Short: "School equipment rental portal",
	Long: `equiprent serves the public equipment catalog, the rental application flow
and the back-office API for managing inventory and rentals.

Run without a subcommand to start the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath == "" {
			configPath = os.Getenv("CONFIG_PATH")
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		log, err = logger.New(cfg.App.Env, cfg.Log.Level)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config (default $CONFIG_PATH)")

	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default rentals_<timestamp>.xlsx)")
	exportCmd.Flags().StringVar(&exportStatus, "status", "", "only rentals with this status")
	exportCmd.Flags().Int64Var(&exportCategory, "category", 0, "only rentals of this category")
	exportCmd.Flags().StringVarP(&exportQuery, "query", "q", "", "search renter, student id, phone or equipment")

	rootCmd.AddCommand(serveCmd, migrateCmd, sweepCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openDB connects and migrates; every subcommand works against an up-to-date schema.
func openDB() (*gorm.DB, error) {
	db, err := database.ConnectWith(cfg.Database.DSN, database.Options{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		Logger:       log.Named("db"),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
