package main

import (
	"fmt"

	"github.com/albedo-support/api/internal/database"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()

		if err := database.EnsureSchema(cfg); err != nil {
			return err
		}
		logger.Info("schema up to date", zap.String("driver", cfg.Database.Driver))
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the default categories and articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()

		if err := database.EnsureSchema(cfg); err != nil {
			return err
		}
		db, err := database.Connect(cfg)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer database.Close(db)

		res, err := database.Seed(db)
		if err != nil {
			return err
		}
		logger.Info("seed complete", zap.Int("categories", res.Categories), zap.Int("articles", res.Articles))
		return nil
	},
}
