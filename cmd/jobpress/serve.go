package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/amishk599/jobpress/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  "Serves article generation over HTTP; blocks until SIGINT/SIGTERM.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug, os.Stdout)

	cfg, err := loadConfig(cfgPath, logger)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := buildPipeline(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}
	archive, closeArchive, err := openArchive(cfg)
	if err != nil {
		logger.Error("failed to open archive", "error", err)
		os.Exit(1)
	}
	defer closeArchive()

	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := server.New(p, archive, server.Options{
		CORSOrigins:    cfg.Server.CORSOrigins,
		RequestTimeout: cfg.AI.Timeout + cfg.Fetch.Timeout,
	}, logger)

	if err := srv.Run(ctx, cfg.Server.Addr); err != nil {
		logger.Error("server error", "error", err)
		return err
	}
	logger.Info("goodbye")
	return nil
}
