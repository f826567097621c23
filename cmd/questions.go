/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"strconv"

	"github.com/qaforum/apiserver/internal/db"
	"github.com/qaforum/apiserver/internal/services"
	"github.com/qaforum/apiserver/internal/store"
	"github.com/spf13/cobra"
)

// questionsCmd groups question administration.
var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Administer questions",
}

var publishCmd = &cobra.Command{
	Use:   "publish <id>...",
	Short: "Publish questions so they appear in the public list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPublished(cmd, args, true)
	},
}

var unpublishCmd = &cobra.Command{
	Use:   "unpublish <id>...",
	Short: "Withdraw questions from the public list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPublished(cmd, args, false)
	},
}

func init() {
	rootCmd.AddCommand(questionsCmd)
	questionsCmd.AddCommand(publishCmd)
	questionsCmd.AddCommand(unpublishCmd)
}

func setPublished(cmd *cobra.Command, args []string, published bool) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	cfg, logger := loadConfig()
	ctx := cmd.Context()

	conn, err := db.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	events, closeEvents, err := openEvents(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeEvents()

	questionService := services.NewQuestionService(store.NewQuestionRepository(conn), cfg.PageSize, events, logger)
	updated, err := questionService.SetPublished(ctx, ids, published)
	if err != nil {
		return err
	}

	action := "unpublished"
	if published {
		action = "published"
	}
	cmd.Printf("%d question(s) %s\n", len(updated), action)
	if missing := len(ids) - len(updated); missing > 0 {
		logger.Warn("some questions were not found", "requested", len(ids), "updated", len(updated))
	}
	return nil
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	seen := make(map[int]struct{}, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil || id < 1 {
			return nil, fmt.Errorf("invalid question id %q", arg)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
