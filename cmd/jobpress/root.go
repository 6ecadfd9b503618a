package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/amishk599/jobpress/internal/ai"
	"github.com/amishk599/jobpress/internal/config"
	"github.com/amishk599/jobpress/internal/extract"
	"github.com/amishk599/jobpress/internal/fetch"
	"github.com/amishk599/jobpress/internal/model"
	"github.com/amishk599/jobpress/internal/normalize"
	"github.com/amishk599/jobpress/internal/pipeline"
	"github.com/amishk599/jobpress/internal/publish"
	"github.com/amishk599/jobpress/internal/ratelimit"
	"github.com/amishk599/jobpress/internal/render"
	"github.com/amishk599/jobpress/internal/retry"
	"github.com/amishk599/jobpress/internal/schema"
	"github.com/amishk599/jobpress/internal/store"
)

var (
	cfgPath string
	envFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobpress",
	Short: "Recruitment articles that keep every fact",
	Long: "jobpress turns a job notification (pasted text or source URLs) into a formatted\n" +
		"recruitment article. Every number, date, fee and table row is copied from the\n" +
		"source; anything it cannot find is left as a placeholder.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnv(envFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: "+config.EnvPath+" env var or ./"+config.DefaultPath+")")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config is read")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadEnv loads a dotenv file. A missing file is not an error; variables
// already set in the environment win.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBPRESS_CONFIG env var > "./config.yaml" > defaults
func loadConfig(path string, logger *slog.Logger) (*config.Config, error) {
	cfg, resolved, err := config.Resolve(path)
	if err != nil {
		return nil, err
	}
	if resolved == "" {
		logger.Debug("no config file found, using defaults")
	} else {
		logger.Debug("config loaded", "path", resolved)
	}
	return cfg, nil
}

func setupLogger(dbg bool, w io.Writer) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// buildFetcher wraps the page fetcher with the optional rate limiter and
// retry decorators. Each retry attempt waits its turn at the rate limiter.
func buildFetcher(cfg *config.Config, logger *slog.Logger) model.SourceFetcher {
	var f model.SourceFetcher = fetch.NewHTTPFetcher(fetch.NewClient(cfg.Fetch.Timeout), cfg.Fetch.MaxBytes, cfg.Fetch.UserAgent)
	if cfg.Fetch.RateLimit.MinDelay > 0 {
		f = ratelimit.NewRateLimitedFetcher(f, ratelimit.NewHostRateLimiter(cfg.Fetch.RateLimit.MinDelay))
		logger.Debug("rate limiter configured", "min_delay", cfg.Fetch.RateLimit.MinDelay.String())
	}
	if cfg.Fetch.Retry.MaxRetries > 0 {
		f = retry.NewRetryFetcher(f, cfg.Fetch.Retry.MaxRetries, cfg.Fetch.Retry.BaseDelay, logger)
	}
	return f
}

func setupRephraser(ctx context.Context, cfg *config.Config, logger *slog.Logger) (model.Rephraser, error) {
	if !cfg.AI.Enabled {
		return ai.NewNopRephraser(), nil
	}
	var provider ai.LLMProvider
	switch cfg.AI.Provider {
	case "googleai":
		p, err := ai.NewGoogleAIProvider(ctx, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.Temperature)
		if err != nil {
			return nil, err
		}
		provider = p
	default:
		httpClient := &http.Client{Timeout: cfg.AI.Timeout}
		provider = ai.NewOpenAIProvider(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.Temperature, httpClient)
	}
	logger.Info("rephraser enabled", "provider", cfg.AI.Provider, "model", cfg.AI.Model)
	return ai.NewLLMRephraser(provider, ai.RephraseTemplate, logger), nil
}

func buildLayouts(cfg *config.Config) (map[string]*pipeline.Layout, error) {
	layouts, err := pipeline.BuiltinLayouts()
	if err != nil {
		return nil, err
	}
	if len(cfg.Layouts) == 0 {
		return layouts, nil
	}
	schemas, err := schema.Builtin()
	if err != nil {
		return nil, err
	}
	for _, lc := range cfg.Layouts {
		l, err := pipeline.LoadLayout(lc.Name, lc.Schema, lc.Template, schemas)
		if err != nil {
			return nil, err
		}
		layouts[lc.Name] = l
	}
	return layouts, nil
}

func buildPipeline(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pipeline.Pipeline, error) {
	rephraser, err := setupRephraser(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup rephraser: %w", err)
	}
	layouts, err := buildLayouts(cfg)
	if err != nil {
		return nil, fmt.Errorf("load layouts: %w", err)
	}

	normalizer := normalize.NewNormalizer(buildFetcher(cfg, logger), normalize.Options{
		MaxChars: cfg.Fetch.MaxChars,
		Timeout:  cfg.Fetch.Timeout,
	}, logger)

	return pipeline.New(
		normalizer,
		extract.NewExtractor(rephraser, logger),
		render.NewRenderer(cfg.Output.Placeholder),
		layouts,
		cfg.Output.Layout,
		logger,
	)
}

func setupPublisher(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Publisher {
	switch cfg.Publish.Type {
	case "slack":
		logger.Debug("using slack publisher")
		return publish.NewSlackPublisher(cfg.Publish.WebhookURL, httpClient, logger)
	case "file":
		return publish.NewFilePublisher(cfg.Output.Dir, logger)
	default:
		return publish.NewLogPublisher(logger)
	}
}

// openArchive returns the configured archive and a function that closes it.
func openArchive(cfg *config.Config) (model.ArticleStore, func() error, error) {
	if !cfg.Archive.Enabled {
		return store.NewNopStore(), func() error { return nil }, nil
	}
	s, err := store.NewSQLiteStore(cfg.Archive.Path)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}
