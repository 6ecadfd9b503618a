package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobpress/internal/model"
	"github.com/amishk599/jobpress/internal/preview"
)

var (
	genTopic    string
	genText     string
	genTextFile string
	genURLs     []string
	genLayout   string
	genOut      string
	genPreview  bool
	genPublish  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one article",
	Long: "Generate an article from pasted text, a text file or source URLs.\n" +
		"The Markdown goes to stdout (or --out); the missing-field report goes to stderr.",
	Example: "  jobpress generate --topic \"RRB Group D Recruitment 2026\" --url https://rrbcdg.gov.in/notice.html\n" +
		"  jobpress generate --topic \"SSC CGL 2026\" --text-file notice.txt --layout plain --preview",
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&genTopic, "topic", "t", "", "title of the posting (required)")
	f.StringVar(&genText, "text", "", "pasted notification text")
	f.StringVar(&genTextFile, "text-file", "", "read notification text from a file (- for stdin)")
	f.StringArrayVarP(&genURLs, "url", "u", nil, "source URL, repeatable")
	f.StringVarP(&genLayout, "layout", "l", "", "layout name (default from config)")
	f.StringVarP(&genOut, "out", "o", "", "write the article to this file instead of stdout")
	f.BoolVar(&genPreview, "preview", false, "open the terminal viewer after generating")
	f.BoolVar(&genPublish, "publish", false, "also send the article to the configured publisher")
	_ = generateCmd.MarkFlagRequired("topic")
	generateCmd.MarkFlagsMutuallyExclusive("text", "text-file")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug, os.Stderr)

	cfg, err := loadConfig(cfgPath, logger)
	if err != nil {
		return err
	}

	text := genText
	if genTextFile != "" {
		text, err = readText(genTextFile, cmd.InOrStdin())
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Log lines written while the spinner is drawn corrupt the display.
	pipeLogger := logger
	if genPreview {
		pipeLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	p, err := buildPipeline(ctx, cfg, pipeLogger)
	if err != nil {
		return err
	}
	archive, closeArchive, err := openArchive(cfg)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer closeArchive()

	job := model.JobDescriptor{Topic: genTopic, Text: text, URLs: genURLs, Layout: genLayout}

	var doc *model.Document
	if genPreview {
		doc, err = preview.RunLoader(ctx, job.Topic, func(ctx context.Context) (*model.Document, error) {
			return p.Generate(ctx, job)
		})
	} else {
		doc, err = p.Generate(ctx, job)
	}
	if err != nil {
		return err
	}

	if err := archive.Save(ctx, doc); err != nil {
		logger.Warn("failed to archive article", "run_id", doc.RunID, "error", err)
	}

	if err := writeArticle(doc, genOut, cmd.OutOrStdout()); err != nil {
		return err
	}
	printReport(cmd.ErrOrStderr(), doc)

	if genPublish {
		httpClient := &http.Client{Timeout: cfg.Fetch.Timeout}
		if err := setupPublisher(cfg, httpClient, logger).Publish(ctx, doc); err != nil {
			return fmt.Errorf("publish: %w", err)
		}
	}

	if genPreview {
		if _, err := preview.RunViewer(doc); err != nil {
			return fmt.Errorf("preview: %w", err)
		}
	}
	return nil
}

func readText(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read text file: %w", err)
	}
	return string(data), nil
}

func writeArticle(doc *model.Document, path string, stdout io.Writer) error {
	if path == "" {
		_, err := io.WriteString(stdout, doc.Markdown)
		return err
	}
	if err := os.WriteFile(path, []byte(doc.Markdown), 0644); err != nil {
		return fmt.Errorf("write article: %w", err)
	}
	return nil
}

// printReport writes the transparency report: placeholders, failed sources
// and truncation.
func printReport(w io.Writer, doc *model.Document) {
	fmt.Fprintf(w, "\nrun %s (layout %s)\n", doc.RunID, doc.Layout)
	if len(doc.Missing) == 0 {
		fmt.Fprintln(w, "missing fields: none")
	} else {
		fmt.Fprintf(w, "missing fields (%d): %s\n", len(doc.Missing), strings.Join(doc.Missing, ", "))
	}
	for _, f := range doc.Failures {
		fmt.Fprintf(w, "failed source: %s (%s)\n", f.URL, f.Reason)
	}
	if doc.Truncated {
		fmt.Fprintln(w, "input was truncated at the character limit")
	}
}
