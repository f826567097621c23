/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"log/slog"

	"github.com/qaforum/apiserver/config"
	"github.com/qaforum/apiserver/internal/db"
	"github.com/qaforum/apiserver/internal/services"
	"github.com/qaforum/apiserver/internal/storage"
	"github.com/qaforum/apiserver/internal/store"
	"github.com/spf13/cobra"
)

var exportKeep int

// exportCmd writes an archive of the published questions.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export published questions and their comments to object storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger := loadConfig()
		ctx := cmd.Context()

		exporter, closeDB, err := newExportService(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeDB()

		result, err := exporter.Export(ctx)
		if err != nil {
			return err
		}
		cmd.Printf("wrote %s/%s (%d questions, %d comments)\n", result.Bucket, result.Key, result.Questions, result.Comments)

		if exportKeep > 0 {
			deleted, err := exporter.Prune(ctx, exportKeep)
			if err != nil {
				return err
			}
			for _, key := range deleted {
				cmd.Printf("deleted %s\n", key)
			}
		}
		return nil
	},
}

var exportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored archives, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger := loadConfig()
		ctx := cmd.Context()

		exporter, closeDB, err := newExportService(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeDB()

		archives, err := exporter.Archives(ctx)
		if err != nil {
			return err
		}
		for _, obj := range archives {
			cmd.Printf("%s\t%d\t%s\n", obj.Key, obj.Size, obj.LastModified.UTC().Format("2006-01-02T15:04:05Z"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(exportListCmd)

	exportCmd.Flags().IntVar(&exportKeep, "keep", 0, "after exporting, delete all but the newest N archives (0 keeps everything)")
}

func newExportService(ctx context.Context, cfg config.Config, logger *slog.Logger) (*services.ExportService, func(), error) {
	objects, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	conn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	exporter := services.NewExportService(
		store.NewQuestionRepository(conn),
		store.NewCommentRepository(conn),
		objects,
		logger,
	)
	return exporter, func() { _ = conn.Close() }, nil
}
