package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobpress/internal/model"
	"github.com/amishk599/jobpress/internal/preview"
	"github.com/amishk599/jobpress/internal/store"
)

var (
	historyLimit       int
	historyPrune       time.Duration
	historyInteractive bool
)

var historyCmd = &cobra.Command{
	Use:   "history [ID]",
	Short: "Browse archived articles",
	Long: "Lists archived articles, newest first. With an ID the article is printed;\n" +
		"with -i a picker opens and the chosen article is shown in the viewer.",
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	f := historyCmd.Flags()
	f.IntVarP(&historyLimit, "limit", "n", 20, "number of articles to list (0 for all)")
	f.DurationVar(&historyPrune, "prune", 0, "delete articles older than this duration (e.g. 720h)")
	f.BoolVarP(&historyInteractive, "interactive", "i", false, "browse with the terminal viewer")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug, os.Stderr)

	cfg, err := loadConfig(cfgPath, logger)
	if err != nil {
		return err
	}
	if !cfg.Archive.Enabled {
		return errors.New("archive is disabled; set archive.enabled in the config")
	}

	s, err := store.NewSQLiteStore(cfg.Archive.Path)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer s.Close()

	ctx := context.Background()

	if historyPrune > 0 {
		n, err := s.Cleanup(ctx, historyPrune)
		if err != nil {
			return fmt.Errorf("prune archive: %w", err)
		}
		logger.Info("pruned archive", "deleted", n, "older_than", historyPrune.String())
	}

	if len(args) == 1 {
		a, err := s.Get(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), a.Markdown)
		return nil
	}

	articles, err := s.List(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("list archive: %w", err)
	}
	if len(articles) == 0 {
		fmt.Println("No archived articles.")
		return nil
	}

	if historyInteractive {
		return browseHistory(articles)
	}

	fmt.Printf("%-36s %-17s %-10s %-8s %s\n", "ID", "Created", "Layout", "Missing", "Topic")
	fmt.Println(strings.Repeat("─", 100))
	for _, a := range articles {
		fmt.Printf("%-36s %-17s %-10s %-8d %s\n",
			a.ID, a.CreatedAt.Local().Format("2006-01-02 15:04"), a.Layout, len(a.Missing), a.Topic)
	}
	fmt.Printf("\nTotal: %d articles\n", len(articles))
	return nil
}

// browseHistory loops picker → viewer until the user quits.
func browseHistory(articles []*model.Article) error {
	for {
		choice, err := preview.RunArticlePicker(articles)
		if err != nil {
			return fmt.Errorf("picker: %w", err)
		}
		if choice < 0 {
			return nil
		}
		wantQuit, err := preview.RunViewer(preview.ArticleDocument(articles[choice]))
		if err != nil {
			return fmt.Errorf("viewer: %w", err)
		}
		if wantQuit {
			return nil
		}
	}
}
