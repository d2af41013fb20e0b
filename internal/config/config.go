package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"newsdash/internal/domain"
)

const (
	configPathEnv    = "NEWSDASH_CONFIG"
	redisAddrEnv     = "REDIS_ADDR"
	redisPasswordEnv = "REDIS_PASSWORD"
	chatAPIKeyEnv    = "CHAT_API_KEY"
	chatModelEnv     = "CHAT_MODEL"
	searchAPIKeyEnv  = "SEARCH_API_KEY"
	logLevelEnv      = "LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Fetch      FetchConfig      `yaml:"fetch"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Topics     TopicsConfig     `yaml:"topics"`
	Summary    SummaryConfig    `yaml:"summary"`
	Store      StoreConfig      `yaml:"store"`
	Chat       ChatConfig       `yaml:"chat"`
	Search     SearchConfig     `yaml:"search"`
	Run        RunConfig        `yaml:"run"`
	Refresh    RefreshConfig    `yaml:"refresh"`
	Sources    []SourceConfig   `yaml:"sources"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// FetchConfig tunes the HTTP fetcher and its anti-blocking behavior.
type FetchConfig struct {
	TimeoutSeconds int      `yaml:"timeoutSeconds"`
	MaxRetries     int      `yaml:"maxRetries"`
	UseProxy       bool     `yaml:"useProxy"`
	ProxyEndpoint  string   `yaml:"proxyEndpoint"`
	UserAgents     []string `yaml:"userAgents"`
	MinDelayMs     int      `yaml:"minDelayMs"`
	MaxDelayMs     int      `yaml:"maxDelayMs"`
}

// Timeout resolves the per-request deadline.
func (f FetchConfig) Timeout() time.Duration {
	if f.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// ExtractionConfig tunes the HTML content extractor.
type ExtractionConfig struct {
	MinContentChars int `yaml:"minContentChars"`
	MaxPerSource    int `yaml:"maxPerSource"`
}

// TopicsConfig configures the keyword tagger's padding defaults.
type TopicsConfig struct {
	Defaults []string `yaml:"defaults"`
}

// SummaryConfig bounds the extractive summary length.
type SummaryConfig struct {
	MaxLength int `yaml:"maxLength"`
}

// StoreConfig describes the persistent KV collaborator.
type StoreConfig struct {
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`
	Key           string `yaml:"key"`
}

// ChatConfig defines the optional chat-completion enrichment endpoint.
type ChatConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
}

// SearchConfig defines the optional web-search collaborator.
type SearchConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"apiKey"`
}

// RunConfig bounds one orchestrated pipeline run.
type RunConfig struct {
	Concurrency       int `yaml:"concurrency"`
	TimeoutSeconds    int `yaml:"timeoutSeconds"`
	Retries           int `yaml:"retries"`
	RetryDelaySeconds int `yaml:"retryDelaySeconds"`
}

// Timeout resolves the overall run deadline.
func (r RunConfig) Timeout() time.Duration {
	if r.TimeoutSeconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// RetryDelay resolves the pause between whole-run retry attempts.
func (r RunConfig) RetryDelay() time.Duration {
	if r.RetryDelaySeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(r.RetryDelaySeconds) * time.Second
}

// RefreshConfig controls the optional periodic re-run loop.
type RefreshConfig struct {
	Enabled         bool `yaml:"enabled"`
	IntervalMinutes int  `yaml:"intervalMinutes"`
}

// Interval resolves the refresh period.
func (r RefreshConfig) Interval() time.Duration {
	if r.IntervalMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(r.IntervalMinutes) * time.Minute
}

// SourceConfig describes a single configured source.
type SourceConfig struct {
	Name          string `yaml:"name"`
	Kind          string `yaml:"kind"`
	URL           string `yaml:"url"`
	BaseURL       string `yaml:"baseUrl"`
	CardSelector  string `yaml:"cardSelector"`
	TitleSelector string `yaml:"titleSelector"`
	LinkSelector  string `yaml:"linkSelector"`
	Query         string `yaml:"query"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultConfig().Sources
	}

	return cfg
}

// DomainSources compiles the configured source list into domain records.
func (c Config) DomainSources() []domain.Source {
	sources := make([]domain.Source, 0, len(c.Sources))
	for _, s := range c.Sources {
		sources = append(sources, domain.Source{
			Name:          s.Name,
			Kind:          domain.SourceKind(s.Kind),
			URL:           s.URL,
			BaseURL:       s.BaseURL,
			CardSelector:  s.CardSelector,
			TitleSelector: s.TitleSelector,
			LinkSelector:  s.LinkSelector,
			Query:         s.Query,
		})
	}
	return sources
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(redisAddrEnv); v != "" {
		c.Store.RedisAddr = v
	}

	if v := os.Getenv(redisPasswordEnv); v != "" {
		c.Store.RedisPassword = v
	}

	if v := os.Getenv(chatAPIKeyEnv); v != "" {
		c.Chat.APIKey = v
	}

	if v := os.Getenv(chatModelEnv); v != "" {
		c.Chat.Model = v
	}

	if v := os.Getenv(searchAPIKeyEnv); v != "" {
		c.Search.APIKey = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Fetch.TimeoutSeconds > 0 {
		base.Fetch.TimeoutSeconds = override.Fetch.TimeoutSeconds
	}
	if override.Fetch.MaxRetries > 0 {
		base.Fetch.MaxRetries = override.Fetch.MaxRetries
	}
	if override.Fetch.UseProxy {
		base.Fetch.UseProxy = true
	}
	if override.Fetch.ProxyEndpoint != "" {
		base.Fetch.ProxyEndpoint = override.Fetch.ProxyEndpoint
	}
	if len(override.Fetch.UserAgents) > 0 {
		base.Fetch.UserAgents = override.Fetch.UserAgents
	}
	if override.Fetch.MinDelayMs > 0 {
		base.Fetch.MinDelayMs = override.Fetch.MinDelayMs
	}
	if override.Fetch.MaxDelayMs > 0 {
		base.Fetch.MaxDelayMs = override.Fetch.MaxDelayMs
	}

	if override.Extraction.MinContentChars > 0 {
		base.Extraction.MinContentChars = override.Extraction.MinContentChars
	}
	if override.Extraction.MaxPerSource > 0 {
		base.Extraction.MaxPerSource = override.Extraction.MaxPerSource
	}

	if len(override.Topics.Defaults) > 0 {
		base.Topics.Defaults = override.Topics.Defaults
	}

	if override.Summary.MaxLength > 0 {
		base.Summary.MaxLength = override.Summary.MaxLength
	}

	if override.Store.RedisAddr != "" {
		base.Store.RedisAddr = override.Store.RedisAddr
	}
	if override.Store.RedisPassword != "" {
		base.Store.RedisPassword = override.Store.RedisPassword
	}
	if override.Store.RedisDB != 0 {
		base.Store.RedisDB = override.Store.RedisDB
	}
	if override.Store.Key != "" {
		base.Store.Key = override.Store.Key
	}

	if override.Chat.Endpoint != "" {
		base.Chat.Endpoint = override.Chat.Endpoint
	}
	if override.Chat.Model != "" {
		base.Chat.Model = override.Chat.Model
	}
	if override.Chat.APIKey != "" {
		base.Chat.APIKey = override.Chat.APIKey
	}

	if override.Search.Endpoint != "" {
		base.Search.Endpoint = override.Search.Endpoint
	}
	if override.Search.APIKey != "" {
		base.Search.APIKey = override.Search.APIKey
	}

	if override.Run.Concurrency > 0 {
		base.Run.Concurrency = override.Run.Concurrency
	}
	if override.Run.TimeoutSeconds > 0 {
		base.Run.TimeoutSeconds = override.Run.TimeoutSeconds
	}
	if override.Run.Retries > 0 {
		base.Run.Retries = override.Run.Retries
	}
	if override.Run.RetryDelaySeconds > 0 {
		base.Run.RetryDelaySeconds = override.Run.RetryDelaySeconds
	}

	if override.Refresh.Enabled {
		base.Refresh.Enabled = true
	}
	if override.Refresh.IntervalMinutes > 0 {
		base.Refresh.IntervalMinutes = override.Refresh.IntervalMinutes
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Fetch: FetchConfig{
			TimeoutSeconds: 15,
			MaxRetries:     3,
			UserAgents: []string{
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:123.0) Gecko/20100101 Firefox/123.0",
				"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			},
			MinDelayMs: 1000,
			MaxDelayMs: 10000,
		},
		Extraction: ExtractionConfig{MinContentChars: 200, MaxPerSource: 5},
		Topics:     TopicsConfig{Defaults: []string{"AI", "Technology", "Machine Learning"}},
		Summary:    SummaryConfig{MaxLength: 150},
		Store:      StoreConfig{Key: "newsdash:articles"},
		Chat: ChatConfig{
			Endpoint: "https://api.openai.com/v1/chat/completions",
			Model:    "gpt-4o-mini",
		},
		Search: SearchConfig{Endpoint: "https://api.search.brave.com/res/v1/web/search"},
		Run: RunConfig{
			Concurrency:       3,
			TimeoutSeconds:    120,
			Retries:           2,
			RetryDelaySeconds: 5,
		},
		Refresh: RefreshConfig{Enabled: false, IntervalMinutes: 60},
		Sources: []SourceConfig{
			{
				Name:          "Anthropic",
				Kind:          "html",
				URL:           "https://www.anthropic.com/news",
				BaseURL:       "https://www.anthropic.com",
				CardSelector:  "li, article",
				TitleSelector: "h3, h2",
				LinkSelector:  "a",
			},
			{
				Name:          "Google AI",
				Kind:          "html",
				URL:           "https://blog.google/technology/ai/",
				BaseURL:       "https://blog.google",
				CardSelector:  "article",
				TitleSelector: "h3, h2",
				LinkSelector:  "a",
			},
			{
				Name:    "Wired AI",
				Kind:    "rss",
				URL:     "https://www.wired.com/feed/tag/ai/latest/rss",
				BaseURL: "https://www.wired.com",
			},
			{
				Name:    "AI Blog",
				Kind:    "rss",
				URL:     "https://www.artificial-intelligence.blog/ai-news?format=rss",
				BaseURL: "https://www.artificial-intelligence.blog",
			},
		},
	}
}
