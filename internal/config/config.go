/*
Package config builds the application's configuration object from the
environment. A .env file in the working directory is loaded first when
present; real environment variables always win.
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"AIFitnessCoach/internal/geminiservice"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config is constructed once at startup and passed explicitly to every
// component that needs it.
type Config struct {
	Port     int
	AppEnv   string
	LogLevel string

	// CountriesCSV is used unless DatabaseURL is set.
	CountriesCSV string
	DatabaseURL  string

	Gemini    GeminiConfig
	RateLimit RateLimitConfig
}

// GeminiConfig locates and authenticates the generation service.
type GeminiConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// RateLimitConfig bounds plan submissions per client IP. PerMinute 0
// disables the limiter.
type RateLimitConfig struct {
	PerMinute int
	Burst     int
	// MaxClients caps how many client buckets are remembered.
	MaxClients int
}

func defaults() Config {
	return Config{
		Port:         8080,
		AppEnv:       "production",
		LogLevel:     "info",
		CountriesCSV: "data/countries.csv",
		Gemini: GeminiConfig{
			Model:      "gemini-1.5-pro",
			BaseURL:    "https://generativelanguage.googleapis.com/v1beta",
			Timeout:    120 * time.Second,
			MaxRetries: 3,
		},
		RateLimit: RateLimitConfig{
			PerMinute:  10,
			Burst:      3,
			MaxClients: 10000,
		},
	}
}

// Load reads .env (if any) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found")
	}
	return FromEnv(os.LookupEnv)
}

// CountrySource names where the country list is read from. It needs no API
// key, so tools that only list countries can load it on its own.
type CountrySource struct {
	CountriesCSV string
	DatabaseURL  string
}

// LoadCountrySource reads .env (if any) and the process environment.
func LoadCountrySource() CountrySource {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found")
	}
	return CountrySourceFromEnv(os.LookupEnv)
}

// CountrySourceFromEnv applies COUNTRIES_CSV and DATABASE_URL over the defaults.
func CountrySourceFromEnv(lookup func(string) (string, bool)) CountrySource {
	cfg := defaults()
	env := envReader{lookup: lookup}
	return CountrySource{
		CountriesCSV: env.getString("COUNTRIES_CSV", cfg.CountriesCSV),
		DatabaseURL:  env.getString("DATABASE_URL", cfg.DatabaseURL),
	}
}

// FromEnv builds a Config from lookup, which has the signature of
// os.LookupEnv. The API key is required.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	cfg := defaults()
	env := envReader{lookup: lookup}

	cfg.Port = env.getInt("PORT", cfg.Port)
	cfg.AppEnv = normalizeEnv(env.getString("APP_ENV", cfg.AppEnv))
	cfg.LogLevel = strings.ToLower(env.getString("LOG_LEVEL", cfg.LogLevel))
	source := CountrySourceFromEnv(lookup)
	cfg.CountriesCSV = source.CountriesCSV
	cfg.DatabaseURL = source.DatabaseURL

	cfg.Gemini.APIKey = strings.TrimSpace(env.getString("GEMINI_API_KEY", ""))
	cfg.Gemini.Model = env.getString("GEMINI_MODEL", cfg.Gemini.Model)
	cfg.Gemini.BaseURL = env.getString("GEMINI_BASE_URL", cfg.Gemini.BaseURL)
	cfg.Gemini.Timeout = env.getDuration("GEMINI_TIMEOUT", cfg.Gemini.Timeout)
	cfg.Gemini.MaxRetries = env.getInt("GEMINI_MAX_RETRIES", cfg.Gemini.MaxRetries)

	cfg.RateLimit.PerMinute = env.getInt("RATE_LIMIT_PER_MINUTE", cfg.RateLimit.PerMinute)
	cfg.RateLimit.Burst = env.getInt("RATE_LIMIT_BURST", cfg.RateLimit.Burst)
	cfg.RateLimit.MaxClients = env.getInt("RATE_LIMIT_MAX_CLIENTS", cfg.RateLimit.MaxClients)

	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("missing required config: GEMINI_API_KEY is not set")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid PORT %d", cfg.Port)
	}
	if cfg.Gemini.MaxRetries < 1 {
		cfg.Gemini.MaxRetries = 1
	}
	if cfg.RateLimit.PerMinute < 0 {
		cfg.RateLimit.PerMinute = 0
	}
	if cfg.RateLimit.Burst < 1 {
		cfg.RateLimit.Burst = 1
	}

	return &cfg, nil
}

// IsDevelopment reports whether human-readable console logging should be used.
func (c *Config) IsDevelopment() bool {
	return c != nil && c.AppEnv == "development"
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Settings converts the Gemini section into client settings carrying the
// fixed generation parameters and safety thresholds.
func (g GeminiConfig) Settings() geminiservice.Settings {
	settings := geminiservice.DefaultSettings(g.APIKey, g.Model)
	if g.BaseURL != "" {
		settings.BaseURL = g.BaseURL
	}
	if g.Timeout > 0 {
		settings.Timeout = g.Timeout
	}
	if g.MaxRetries > 0 {
		settings.MaxRetries = g.MaxRetries
	}
	return settings
}

type envReader struct {
	lookup func(string) (string, bool)
}

func (e envReader) getString(key, fallback string) string {
	if value, ok := e.lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func (e envReader) getInt(key string, fallback int) int {
	raw, ok := e.lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		log.Warn().Str("key", key).Str("value", raw).Msg("Could not parse integer, using default")
		return fallback
	}
	return v
}

func (e envReader) getDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := e.lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || d <= 0 {
		log.Warn().Str("key", key).Str("value", raw).Msg("Could not parse duration, using default")
		return fallback
	}
	return d
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}
