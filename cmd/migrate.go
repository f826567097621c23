/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/qaforum/apiserver/internal/db"
	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all up migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger := loadConfig()
		if err := db.MigrateUp(cfg.Database); err != nil {
			return fmt.Errorf("migrate up failed: %w", err)
		}
		logger.Info("migrations applied", "driver", cfg.Database.Driver)
		return nil
	},
}

var migrateDownSteps int

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	Long:  "Roll back the given number of migrations, or all of them when --steps is 0.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateDownSteps < 0 {
			return fmt.Errorf("--steps must not be negative")
		}
		cfg, logger := loadConfig()
		if err := db.MigrateDown(cfg.Database, migrateDownSteps); err != nil {
			return fmt.Errorf("migrate down failed: %w", err)
		}
		logger.Info("migrations rolled back", "driver", cfg.Database.Driver, "steps", migrateDownSteps)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)

	migrateDownCmd.Flags().IntVar(&migrateDownSteps, "steps", 1, "number of migrations to roll back (0 for all)")
}
