package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 100, cfg.Extraction.MinContentLength)
	require.Equal(t, 10*time.Second, cfg.Extraction.StructuredTimeout)
	require.Equal(t, 100*time.Second, cfg.Extraction.MarkupTimeout)
	require.Equal(t, 5000, cfg.Summary.MaxInputChars)
	require.Equal(t, float32(0), cfg.LLM.Temperature)
	require.Contains(t, cfg.Summary.SystemPrompt, "繁體中文")
	require.Equal(t, 200*time.Second, cfg.PipelineBudget())
	require.GreaterOrEqual(t, cfg.HTTP.WriteTimeout, cfg.PipelineBudget()+10*time.Second)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "config.yaml")
	yaml := []byte(`
http:
  address: ":9090"
extraction:
  minContentLength: 250
  markupTimeout: 30s
summary:
  maxInputChars: 3000
llm:
  model: "gpt-4o-mini"
cache:
  enabled: true
  ttl: 1h
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("LLM_MODEL", "gemma3:12b")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "http://localhost:3000, https://digest.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTP.Address)
	require.Equal(t, 250, cfg.Extraction.MinContentLength)
	require.Equal(t, 30*time.Second, cfg.Extraction.MarkupTimeout)
	require.Equal(t, 10*time.Second, cfg.Extraction.StructuredTimeout)
	require.Equal(t, 3000, cfg.Summary.MaxInputChars)
	require.Equal(t, "gemma3:12b", cfg.LLM.Model)
	require.True(t, cfg.Cache.Enabled)
	require.Equal(t, []string{"http://localhost:3000", "https://digest.example.com"}, cfg.HTTP.AllowedOrigins)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("LLM_API_KEY", "")
	require.NoError(t, os.Unsetenv("LLM_API_KEY"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LLM_API_KEY=from-dotenv\n"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "from-dotenv", cfg.LLM.APIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty address",
			mutate:  func(c *Config) { c.HTTP.Address = "" },
			wantErr: "http.address cannot be empty",
		},
		{
			name:    "zero markup timeout",
			mutate:  func(c *Config) { c.Extraction.MarkupTimeout = 0 },
			wantErr: "extraction.markupTimeout must be positive",
		},
		{
			name:    "inverted tag bounds",
			mutate:  func(c *Config) { c.Summary.MinTags = 6 },
			wantErr: "summary tag bounds must satisfy 0 <= minTags <= maxTags, maxTags > 0",
		},
		{
			name:    "snapshot without endpoint",
			mutate:  func(c *Config) { c.Snapshot.Enabled = true },
			wantErr: "snapshot.endpoint cannot be empty when snapshots are enabled",
		},
		{
			name:    "write timeout shorter than the pipeline",
			mutate:  func(c *Config) { c.HTTP.WriteTimeout = 180 * time.Second },
			wantErr: "http.writeTimeout must be at least 3m20s to cover extraction and the model call",
		},
		{
			name:    "cache without ttl",
			mutate:  func(c *Config) { c.Cache.Enabled = true; c.Cache.TTL = 0 },
			wantErr: "cache.ttl must be positive when the cache is enabled",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)
			require.EqualError(t, cfg.Validate(), tt.wantErr)
		})
	}
	require.NoError(t, defaultConfig().Validate())
}
