package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Summary    SummaryConfig    `yaml:"summary"`
	LLM        LLMConfig        `yaml:"llm"`
	Cache      CacheConfig      `yaml:"cache"`
	Archive    ArchiveConfig    `yaml:"archive"`
	Snapshot   SnapshotConfig   `yaml:"snapshot"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// ExtractionConfig tunes the fetch and extraction tiers.
type ExtractionConfig struct {
	MinContentLength  int           `yaml:"minContentLength"`
	StructuredTimeout time.Duration `yaml:"structuredTimeout"`
	MarkupTimeout     time.Duration `yaml:"markupTimeout"`
	MaxBodyBytes      int64         `yaml:"maxBodyBytes"`
	UserAgent         string        `yaml:"userAgent"`
	Impersonate       string        `yaml:"impersonate"`
}

// SummaryConfig defines the summarization adapter policy.
type SummaryConfig struct {
	MaxInputChars int    `yaml:"maxInputChars"`
	MinTags       int    `yaml:"minTags"`
	MaxTags       int    `yaml:"maxTags"`
	SystemPrompt  string `yaml:"systemPrompt"`
}

// LLMConfig contains settings for the OpenAI compatible model endpoint.
type LLMConfig struct {
	APIKey      string        `yaml:"apiKey"`
	BaseURL     string        `yaml:"baseUrl"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// CacheConfig controls the optional summary cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
	Size    int           `yaml:"size"`
	Valkey  ValkeyConfig  `yaml:"valkey"`
}

// ValkeyConfig contains connection information for cache storage.
type ValkeyConfig struct {
	Addr   string `yaml:"addr"`
	Prefix string `yaml:"prefix"`
}

// ArchiveConfig controls where finished digests are recorded.
type ArchiveConfig struct {
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// SnapshotConfig points at an S3 compatible bucket for extracted text snapshots.
type SnapshotConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// Load reads configuration from .env, a YAML file and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("EXTRACTION_MIN_CONTENT_LENGTH"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Extraction.MinContentLength = parsed
		}
	}
	if v := os.Getenv("EXTRACTION_STRUCTURED_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Extraction.StructuredTimeout = parsed
		}
	}
	if v := os.Getenv("EXTRACTION_MARKUP_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Extraction.MarkupTimeout = parsed
		}
	}
	if v := os.Getenv("EXTRACTION_USER_AGENT"); v != "" {
		cfg.Extraction.UserAgent = v
	}
	if v := os.Getenv("SUMMARY_MAX_INPUT_CHARS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Summary.MaxInputChars = parsed
		}
	}
	if v := os.Getenv("SUMMARY_SYSTEM_PROMPT"); v != "" {
		cfg.Summary.SystemPrompt = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.LLM.Timeout = parsed
		}
	}
	if v := os.Getenv("CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = parseBool(v)
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = parsed
		}
	}
	if v := os.Getenv("CACHE_VALKEY_ADDR"); v != "" {
		cfg.Cache.Valkey.Addr = v
	}
	if v := os.Getenv("ARCHIVE_POSTGRES_DSN"); v != "" {
		cfg.Archive.Postgres.DSN = v
	}
	if v := os.Getenv("ARCHIVE_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Archive.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("SNAPSHOT_ENABLED"); v != "" {
		cfg.Snapshot.Enabled = parseBool(v)
	}
	if v := os.Getenv("SNAPSHOT_ENDPOINT"); v != "" {
		cfg.Snapshot.Endpoint = v
	}
	if v := os.Getenv("SNAPSHOT_ACCESS_KEY"); v != "" {
		cfg.Snapshot.AccessKey = v
	}
	if v := os.Getenv("SNAPSHOT_SECRET_KEY"); v != "" {
		cfg.Snapshot.SecretKey = v
	}
	if v := os.Getenv("SNAPSHOT_BUCKET"); v != "" {
		cfg.Snapshot.Bucket = v
	}
	if v := os.Getenv("SNAPSHOT_REGION"); v != "" {
		cfg.Snapshot.Region = v
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if clean := strings.TrimSpace(part); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8000",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 240 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 30,
				Burst:             10,
			},
		},
		Extraction: ExtractionConfig{
			MinContentLength:  100,
			StructuredTimeout: 10 * time.Second,
			MarkupTimeout:     100 * time.Second,
			MaxBodyBytes:      10 << 20,
			UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			Impersonate:       "chrome_120",
		},
		Summary: SummaryConfig{
			MaxInputChars: 5000,
			MinTags:       3,
			MaxTags:       5,
			SystemPrompt:  DefaultSystemPrompt,
		},
		LLM: LLMConfig{
			BaseURL:     "http://localhost:11434/v1",
			Model:       "gemma3:4b",
			Temperature: 0,
			Timeout:     90 * time.Second,
		},
		Cache: CacheConfig{
			Enabled: false,
			TTL:     24 * time.Hour,
			Size:    512,
			Valkey: ValkeyConfig{
				Prefix: "digest",
			},
		},
		Archive: ArchiveConfig{
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
		Snapshot: SnapshotConfig{
			Bucket: "gopher-digest-snapshots",
			Region: "auto",
		},
	}
}

// DefaultSystemPrompt establishes the editor persona and output constraints.
const DefaultSystemPrompt = `# Role
你是一位資深的技術內容主編，擅長快速解析複雜的技術文章並提取核心價值。

# Objective
你的任務是閱讀使用者提供的文章內容，並產出結構化的摘要資訊。

# Constraints
1. **標題準確性**：優先使用文章原始標題。
2. **語言要求**：摘要與標題必須使用**繁體中文 (Traditional Chinese, Taiwan)**。
3. **輸出格式**：只回傳符合 Schema 定義的 JSON。
4. **內容完整性**：摘要中需提及關鍵技術邏輯。`

// PipelineBudget is the longest a single digest can take: both extraction
// tiers timing out followed by a model call that does the same.
func (c *Config) PipelineBudget() time.Duration {
	return c.Extraction.StructuredTimeout + c.Extraction.MarkupTimeout + c.LLM.Timeout
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.Extraction.MinContentLength < 0 {
		return errors.New("extraction.minContentLength cannot be negative")
	}
	if c.Extraction.StructuredTimeout <= 0 {
		return errors.New("extraction.structuredTimeout must be positive")
	}
	if c.Extraction.MarkupTimeout <= 0 {
		return errors.New("extraction.markupTimeout must be positive")
	}
	if c.Extraction.MaxBodyBytes <= 0 {
		return errors.New("extraction.maxBodyBytes must be positive")
	}
	if c.Summary.MaxInputChars <= 0 {
		return errors.New("summary.maxInputChars must be positive")
	}
	if c.Summary.MinTags < 0 || c.Summary.MaxTags <= 0 || c.Summary.MinTags > c.Summary.MaxTags {
		return errors.New("summary tag bounds must satisfy 0 <= minTags <= maxTags, maxTags > 0")
	}
	if strings.TrimSpace(c.Summary.SystemPrompt) == "" {
		return errors.New("summary.systemPrompt cannot be empty")
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model cannot be empty")
	}
	if c.LLM.Temperature < 0 {
		return errors.New("llm.temperature cannot be negative")
	}
	if budget := c.PipelineBudget(); c.HTTP.WriteTimeout > 0 && c.HTTP.WriteTimeout < budget {
		return fmt.Errorf("http.writeTimeout must be at least %s to cover extraction and the model call", budget)
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return errors.New("cache.ttl must be positive when the cache is enabled")
	}
	if c.Snapshot.Enabled {
		if strings.TrimSpace(c.Snapshot.Endpoint) == "" {
			return errors.New("snapshot.endpoint cannot be empty when snapshots are enabled")
		}
		if strings.TrimSpace(c.Snapshot.Bucket) == "" {
			return errors.New("snapshot.bucket cannot be empty when snapshots are enabled")
		}
	}
	return nil
}
