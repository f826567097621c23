/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/qaforum/apiserver/config"
	"github.com/qaforum/apiserver/internal/logging"
	"github.com/qaforum/apiserver/internal/mq"
	"github.com/qaforum/apiserver/internal/services"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "apiserver",
	Short: "Q&A forum API server",
	Long: `Q&A forum API server and administration tools.

Configuration is read from the environment. Set ENV=dev to load a .env file.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the configuration and installs the process logger.
func loadConfig() (config.Config, *slog.Logger) {
	cfg := config.LoadConfig()
	logger := logging.New(cfg.Log, os.Stderr)
	slog.SetDefault(logger)
	return cfg, logger
}

// openEvents connects the configured broker. The returned publisher is nil
// when no broker is configured; close is always safe to call.
func openEvents(ctx context.Context, cfg config.Config) (services.EventPublisher, func(), error) {
	broker, err := mq.Open(ctx, cfg.MQ)
	if err != nil {
		return nil, func() {}, err
	}
	if broker == nil {
		return nil, func() {}, nil
	}
	return mq.NewEventPublisher(broker, cfg.MQ.Channel), func() { _ = broker.Close() }, nil
}
