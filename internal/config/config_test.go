package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 30*time.Second, cfg.Gemini.Timeout)
	assert.Equal(t, 10*time.Second, cfg.Translate.Timeout)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, AnalyzerStub, cfg.Analyzer.Mode)
	assert.False(t, cfg.API.InlineErrors)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadFile_FileValues(t *testing.T) {
	path := writeConfig(t, `
gemini:
  url: https://gemini.example.com/generate
  api_key: g-key
  timeout: 5s
translate:
  url: https://translate.example.com/
  api_key: t-key
api:
  inline_errors: true
analyzer:
  mode: heuristic
`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://gemini.example.com/generate", cfg.Gemini.URL)
	assert.Equal(t, "g-key", cfg.Gemini.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Gemini.Timeout)
	assert.Equal(t, "t-key", cfg.Translate.APIKey)
	assert.True(t, cfg.API.InlineErrors)
	assert.Equal(t, AnalyzerHeuristic, cfg.Analyzer.Mode)
}

func TestLoadFile_EnvOverride(t *testing.T) {
	t.Setenv("EMAILWRITER_GEMINI_API_KEY", "from-env")
	t.Setenv("EMAILWRITER_SERVER_PORT", "9090")

	cfg, err := LoadFile(writeConfig(t, "gemini:\n  api_key: from-file\n"))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Gemini.APIKey)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadFile_MissingExplicitFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Gemini:    GeminiConfig{URL: "http://g"},
			Translate: TranslateConfig{URL: "http://t"},
			Analyzer:  AnalyzerConfig{Mode: AnalyzerStub},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing gemini url", func(c *Config) { c.Gemini.URL = "" }, true},
		{"missing translate url", func(c *Config) { c.Translate.URL = "" }, true},
		{"unknown analyzer", func(c *Config) { c.Analyzer.Mode = "llm" }, true},
		{"rate limit without redis", func(c *Config) { c.Security.RateLimiting.Enabled = true }, true},
		{"rate limit with redis", func(c *Config) {
			c.Security.RateLimiting.Enabled = true
			c.Redis.Enabled = true
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
