package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobpress/internal/batch"
	"github.com/amishk599/jobpress/internal/model"
	"github.com/amishk599/jobpress/internal/publish"
)

var (
	batchWorkers int
	batchOutDir  string
	batchPublish bool
)

var batchCmd = &cobra.Command{
	Use:   "batch FILE",
	Short: "Generate many articles from a YAML job list",
	Long: "Reads a YAML file of jobs and generates them concurrently. Each article is\n" +
		"written to the output directory; a failing entry does not stop the others.",
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "concurrent generations (default from config)")
	batchCmd.Flags().StringVarP(&batchOutDir, "out-dir", "o", "", "output directory (default from config)")
	batchCmd.Flags().BoolVar(&batchPublish, "publish", false, "also send each article to the configured publisher")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug, os.Stdout)

	cfg, err := loadConfig(cfgPath, logger)
	if err != nil {
		return err
	}
	if batchWorkers > 0 {
		cfg.Batch.Workers = batchWorkers
	}
	if batchOutDir != "" {
		cfg.Output.Dir = batchOutDir
	}

	jobs, err := batch.LoadFile(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := buildPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}
	archive, closeArchive, err := openArchive(cfg)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer closeArchive()

	var publisher model.Publisher = publish.NewFilePublisher(cfg.Output.Dir, logger)
	if batchPublish && cfg.Publish.Type != "file" {
		httpClient := &http.Client{Timeout: cfg.Fetch.Timeout}
		publisher = publish.Multi{publisher, setupPublisher(cfg, httpClient, logger)}
	}

	results, err := batch.NewRunner(p, archive, publisher, cfg.Batch.Workers, logger).Run(ctx, jobs)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "✗ %d %s: %v\n", r.Index+1, r.Topic, r.Err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %d %s (%d missing)\n", r.Index+1, r.Topic, len(r.Doc.Missing))
	}
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(results))
	}
	return nil
}
