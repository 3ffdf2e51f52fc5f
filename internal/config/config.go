package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Translate TranslateConfig `mapstructure:"translate"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Security  SecurityConfig  `mapstructure:"security"`
	CORS      CORSConfig      `mapstructure:"cors"`
	API       APIConfig       `mapstructure:"api"`
	Analyzer  AnalyzerConfig  `mapstructure:"analyzer"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the listen address
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GeminiConfig holds the generative-language API configuration
type GeminiConfig struct {
	// URL is the full generateContent endpoint, with or without a trailing "?key=".
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// TranslateConfig holds the translation API configuration
type TranslateConfig struct {
	// URL is the v2 translate endpoint the {q, target} body is posted to.
	URL    string `mapstructure:"url"`
	APIKey string `mapstructure:"api_key"`
	// CredentialsJSON is a service account JSON used instead of APIKey when set.
	CredentialsJSON string        `mapstructure:"credentials_json"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	RateLimiting RateLimitingConfig `mapstructure:"rate_limiting"`
}

// RateLimitingConfig holds rate limiting configuration
type RateLimitingConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}

// CORSConfig holds cross-origin configuration
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// APIConfig controls how the email endpoints report failures
type APIConfig struct {
	// InlineErrors renders upstream failures as text inside a 200 response
	// ("Error processing request: ...", "Translation error: ...") instead
	// of returning an error status.
	InlineErrors bool `mapstructure:"inline_errors"`
}

// AnalyzerConfig selects the analyze implementation
type AnalyzerConfig struct {
	// Mode is "stub" (fixed placeholder fields) or "heuristic".
	Mode string `mapstructure:"mode"`
}

// Analyzer modes
const (
	AnalyzerStub      = "stub"
	AnalyzerHeuristic = "heuristic"
)

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile reads configuration from the given file, or from the default
// search paths when path is empty.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/emailwriter")
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("EMAILWRITER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	if c.Gemini.URL == "" {
		return fmt.Errorf("gemini.url is required")
	}
	if c.Translate.URL == "" {
		return fmt.Errorf("translate.url is required")
	}
	switch c.Analyzer.Mode {
	case AnalyzerStub, AnalyzerHeuristic:
	default:
		return fmt.Errorf("analyzer.mode must be %q or %q, got %q", AnalyzerStub, AnalyzerHeuristic, c.Analyzer.Mode)
	}
	if c.Security.RateLimiting.Enabled && !c.Redis.Enabled {
		return fmt.Errorf("security.rate_limiting requires redis.enabled")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Upstream defaults
	v.SetDefault("gemini.url", "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent")
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.timeout", "30s")

	v.SetDefault("translate.url", "https://translation.googleapis.com/language/translate/v2")
	v.SetDefault("translate.api_key", "")
	v.SetDefault("translate.credentials_json", "")
	v.SetDefault("translate.timeout", "10s")

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("security.rate_limiting.enabled", false)
	v.SetDefault("security.rate_limiting.limit", 60)
	v.SetDefault("security.rate_limiting.window", "1m")

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("api.inline_errors", false)
	v.SetDefault("analyzer.mode", AnalyzerStub)
}
