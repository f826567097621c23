/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/qaforum/apiserver/internal/mq"
	"github.com/qaforum/apiserver/types"
	"github.com/spf13/cobra"
)

// eventsCmd groups broker tooling.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect forum events",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print forum events as JSON lines until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger := loadConfig()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		broker, err := mq.Open(ctx, cfg.MQ)
		if err != nil {
			return err
		}
		if broker == nil {
			return errors.New("MQ_BACKEND is not configured")
		}
		defer broker.Close()

		logger.Info("tailing events", "backend", cfg.MQ.Backend, "channel", cfg.MQ.Channel)
		encoder := json.NewEncoder(cmd.OutOrStdout())
		err = mq.SubscribeEvents(ctx, broker, cfg.MQ.Channel, func(_ context.Context, event types.Event) error {
			if err := encoder.Encode(event); err != nil {
				return fmt.Errorf("write event: %w", err)
			}
			return nil
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTailCmd)
}
