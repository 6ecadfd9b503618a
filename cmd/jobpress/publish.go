package main

import (
	"context"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobpress/internal/publish"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publisher subcommands",
}

var publishTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test article",
	Long:  "Sends a small test article using the configured publisher.",
	RunE:  runPublishTest,
}

func init() {
	rootCmd.AddCommand(publishCmd)
	publishCmd.AddCommand(publishTestCmd)
}

func runPublishTest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug, os.Stdout)

	cfg, err := loadConfig(cfgPath, logger)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: cfg.Fetch.Timeout}
	p := setupPublisher(cfg, httpClient, logger)

	if err := publish.SendTestMessage(context.Background(), p); err != nil {
		logger.Error("test article failed", "error", err)
		os.Exit(1)
	}
	logger.Info("test article sent successfully", "publisher", cfg.Publish.Type)
	return nil
}
