package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable consulted when no --config flag is given.
const EnvPath = "JOBPRESS_CONFIG"

// DefaultPath is used when neither the flag nor EnvPath is set.
const DefaultPath = "config.yaml"

// Config is the root configuration for jobpress.
type Config struct {
	Fetch   FetchConfig
	AI      AIConfig
	Output  OutputConfig
	Archive ArchiveConfig
	Publish PublishConfig
	Server  ServerConfig
	Batch   BatchConfig
	Layouts []LayoutConfig
}

// LayoutConfig adds a layout from files on disk. Schema is either the name of
// a built-in schema or a path to a schema YAML file.
type LayoutConfig struct {
	Name     string `yaml:"name"`
	Schema   string `yaml:"schema"`
	Template string `yaml:"template"`
}

// FetchConfig bounds source retrieval and normalization.
type FetchConfig struct {
	Timeout   time.Duration // whole normalize stage
	MaxChars  int           // combined source text cap
	MaxBytes  int64         // per-response body cap
	UserAgent string
	Retry     RetryConfig
	RateLimit RateLimitConfig
}

// RetryConfig controls retries of transient fetch failures.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// RateLimitConfig controls per-host request spacing. Zero disables it.
type RateLimitConfig struct {
	MinDelay time.Duration
}

// AIConfig controls the optional rephrasing layer.
type AIConfig struct {
	Enabled     bool
	Provider    string // "openai" (any compatible endpoint) or "googleai"
	BaseURL     string
	Model       string
	APIKey      string // expanded from env var by Load
	Temperature float64
	Timeout     time.Duration // per-request timeout
}

// OutputConfig controls rendering.
type OutputConfig struct {
	Layout      string
	Placeholder string
	Dir         string // where batch and the file publisher write articles
}

// ArchiveConfig controls the SQLite article archive.
type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// PublishConfig controls which publisher receives generated articles.
type PublishConfig struct {
	Type       string `yaml:"type"`        // "log", "file" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// BatchConfig controls the batch runner.
type BatchConfig struct {
	Workers int `yaml:"workers"`
}

const (
	defaultOpenAIBaseURL = "https://api.groq.com/openai/v1"
	defaultOpenAIModel   = "llama-3.3-70b-versatile"
	defaultGeminiModel   = "gemini-2.5-flash"
	defaultUserAgent     = "jobpress/1.0 (+https://github.com/amishk599/jobpress)"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Fetch   rawFetchConfig  `yaml:"fetch"`
	AI      rawAIConfig     `yaml:"ai"`
	Output  rawOutputConfig `yaml:"output"`
	Archive ArchiveConfig   `yaml:"archive"`
	Publish PublishConfig   `yaml:"publish"`
	Server  ServerConfig    `yaml:"server"`
	Batch   BatchConfig     `yaml:"batch"`
	Layouts []LayoutConfig  `yaml:"layouts"`
}

type rawFetchConfig struct {
	Timeout   string `yaml:"timeout"`
	MaxChars  int    `yaml:"max_chars"`
	MaxBytes  int64  `yaml:"max_bytes"`
	UserAgent string `yaml:"user_agent"`
	Retry     struct {
		MaxRetries int    `yaml:"max_retries"`
		BaseDelay  string `yaml:"base_delay"`
	} `yaml:"retry"`
	RateLimit struct {
		MinDelay string `yaml:"min_delay"`
	} `yaml:"rate_limit"`
}

type rawAIConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Provider    string   `yaml:"provider"`
	BaseURL     string   `yaml:"base_url"`
	Model       string   `yaml:"model"`
	APIKey      string   `yaml:"api_key"`
	Temperature *float64 `yaml:"temperature"`
	Timeout     string   `yaml:"timeout"`
}

type rawOutputConfig struct {
	Layout      string `yaml:"layout"`
	Placeholder string `yaml:"placeholder"`
	Dir         string `yaml:"dir"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg, err := parse(nil)
	if err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return cfg
}

// Resolve picks the config file from flagPath, then EnvPath, then
// DefaultPath. Only a missing DefaultPath falls back to Default; an
// explicitly named file must exist.
func Resolve(flagPath string) (*Config, string, error) {
	path := flagPath
	if path == "" {
		path = os.Getenv(EnvPath)
	}
	if path != "" {
		cfg, err := Load(path)
		return cfg, path, err
	}
	cfg, err := Load(DefaultPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), "", nil
	}
	return cfg, DefaultPath, err
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Config, error) {
	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	fetchTimeout, err := durationOr(raw.Fetch.Timeout, 20*time.Second, "fetch.timeout")
	if err != nil {
		return nil, err
	}
	retryDelay, err := durationOr(raw.Fetch.Retry.BaseDelay, time.Second, "fetch.retry.base_delay")
	if err != nil {
		return nil, err
	}
	minDelay, err := durationOr(raw.Fetch.RateLimit.MinDelay, 0, "fetch.rate_limit.min_delay")
	if err != nil {
		return nil, err
	}
	aiTimeout, err := durationOr(raw.AI.Timeout, 30*time.Second, "ai.timeout")
	if err != nil {
		return nil, err
	}

	provider := strings.ToLower(raw.AI.Provider)
	if provider == "" {
		provider = "openai"
	}
	aiBaseURL, aiModel := raw.AI.BaseURL, raw.AI.Model
	switch provider {
	case "openai":
		if aiBaseURL == "" {
			aiBaseURL = defaultOpenAIBaseURL
		}
		if aiModel == "" {
			aiModel = defaultOpenAIModel
		}
	case "googleai":
		if aiModel == "" {
			aiModel = defaultGeminiModel
		}
	}
	temperature := 0.25
	if raw.AI.Temperature != nil {
		temperature = *raw.AI.Temperature
	}

	cfg := &Config{
		Fetch: FetchConfig{
			Timeout:   fetchTimeout,
			MaxChars:  intOr(raw.Fetch.MaxChars, 15000),
			MaxBytes:  raw.Fetch.MaxBytes,
			UserAgent: raw.Fetch.UserAgent,
			Retry: RetryConfig{
				MaxRetries: raw.Fetch.Retry.MaxRetries,
				BaseDelay:  retryDelay,
			},
			RateLimit: RateLimitConfig{MinDelay: minDelay},
		},
		AI: AIConfig{
			Enabled:     raw.AI.Enabled,
			Provider:    provider,
			BaseURL:     aiBaseURL,
			Model:       aiModel,
			APIKey:      raw.AI.APIKey,
			Temperature: temperature,
			Timeout:     aiTimeout,
		},
		Output: OutputConfig{
			Layout:      stringOr(raw.Output.Layout, "sarkari"),
			Placeholder: stringOr(raw.Output.Placeholder, "Update Soon"),
			Dir:         stringOr(raw.Output.Dir, "articles"),
		},
		Archive: ArchiveConfig{
			Enabled: raw.Archive.Enabled,
			Path:    stringOr(raw.Archive.Path, "jobpress.db"),
		},
		Publish: PublishConfig{
			Type:       stringOr(raw.Publish.Type, "log"),
			WebhookURL: raw.Publish.WebhookURL,
		},
		Server: ServerConfig{
			Addr:        stringOr(raw.Server.Addr, ":8080"),
			CORSOrigins: raw.Server.CORSOrigins,
		},
		Batch:   BatchConfig{Workers: intOr(raw.Batch.Workers, 4)},
		Layouts: raw.Layouts,
	}
	if cfg.Fetch.MaxBytes == 0 {
		cfg.Fetch.MaxBytes = 5 << 20
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = defaultUserAgent
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func durationOr(s string, def time.Duration, key string) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", key, s, err)
	}
	return d, nil
}

func intOr(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func stringOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func validate(cfg *Config) error {
	if cfg.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be positive, got %v", cfg.Fetch.Timeout)
	}
	if cfg.Fetch.MaxChars < 0 {
		return fmt.Errorf("fetch.max_chars must not be negative, got %d", cfg.Fetch.MaxChars)
	}
	if cfg.Fetch.MaxBytes < 0 {
		return fmt.Errorf("fetch.max_bytes must not be negative, got %d", cfg.Fetch.MaxBytes)
	}
	if cfg.Fetch.Retry.MaxRetries < 0 || cfg.Fetch.Retry.MaxRetries > 5 {
		return fmt.Errorf("fetch.retry.max_retries must be between 0 and 5, got %d", cfg.Fetch.Retry.MaxRetries)
	}
	if cfg.Fetch.RateLimit.MinDelay < 0 {
		return fmt.Errorf("fetch.rate_limit.min_delay must not be negative, got %v", cfg.Fetch.RateLimit.MinDelay)
	}

	if cfg.Batch.Workers < 1 || cfg.Batch.Workers > 32 {
		return fmt.Errorf("batch.workers must be between 1 and 32, got %d", cfg.Batch.Workers)
	}

	switch cfg.Publish.Type {
	case "log", "file":
	case "slack":
		if cfg.Publish.WebhookURL == "" {
			return fmt.Errorf("publish.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Publish.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("publish.webhook_url must start with https://hooks.slack.com/")
		}
	default:
		return fmt.Errorf("publish.type must be one of log, file, slack; got %q", cfg.Publish.Type)
	}

	if cfg.AI.Enabled {
		if cfg.AI.Provider != "openai" && cfg.AI.Provider != "googleai" {
			return fmt.Errorf("ai.provider must be \"openai\" or \"googleai\", got %q", cfg.AI.Provider)
		}
		if cfg.AI.APIKey == "" {
			return fmt.Errorf("ai.api_key is required when ai.enabled is true")
		}
		if cfg.AI.Temperature < 0 || cfg.AI.Temperature > 2 {
			return fmt.Errorf("ai.temperature must be between 0 and 2, got %v", cfg.AI.Temperature)
		}
		if cfg.AI.Timeout <= 0 {
			return fmt.Errorf("ai.timeout must be positive, got %v", cfg.AI.Timeout)
		}
	}

	seen := make(map[string]bool, len(cfg.Layouts))
	for i, l := range cfg.Layouts {
		if l.Name == "" || l.Schema == "" || l.Template == "" {
			return fmt.Errorf("layouts[%d]: name, schema and template are required", i)
		}
		if seen[l.Name] {
			return fmt.Errorf("layouts[%d]: duplicate layout name %q", i, l.Name)
		}
		seen[l.Name] = true
	}

	if cfg.Archive.Enabled && cfg.Archive.Path == "" {
		return fmt.Errorf("archive.path is required when archive.enabled is true")
	}

	return nil
}
