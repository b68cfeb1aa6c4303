package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(mapLookup(map[string]string{"GEMINI_API_KEY": "test-key"}))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "production", cfg.AppEnv)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "data/countries.csv", cfg.CountriesCSV)
	assert.Empty(t, cfg.DatabaseURL)

	assert.Equal(t, "test-key", cfg.Gemini.APIKey)
	assert.Equal(t, "gemini-1.5-pro", cfg.Gemini.Model)
	assert.Equal(t, "https://generativelanguage.googleapis.com/v1beta", cfg.Gemini.BaseURL)
	assert.Equal(t, 120*time.Second, cfg.Gemini.Timeout)
	assert.Equal(t, 3, cfg.Gemini.MaxRetries)

	assert.Equal(t, RateLimitConfig{PerMinute: 10, Burst: 3, MaxClients: 10000}, cfg.RateLimit)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(mapLookup(map[string]string{
		"GEMINI_API_KEY":        "  spaced-key  ",
		"GEMINI_MODEL":          "gemini-1.5-flash",
		"GEMINI_TIMEOUT":        "45s",
		"GEMINI_MAX_RETRIES":    "5",
		"PORT":                  "9090",
		"APP_ENV":               "Dev",
		"LOG_LEVEL":             "DEBUG",
		"COUNTRIES_CSV":         "/srv/countries.csv",
		"DATABASE_URL":          "postgres://coach@localhost/coach",
		"RATE_LIMIT_PER_MINUTE": "0",
		"RATE_LIMIT_BURST":      "7",
	}))
	require.NoError(t, err)

	assert.Equal(t, "spaced-key", cfg.Gemini.APIKey)
	assert.Equal(t, "gemini-1.5-flash", cfg.Gemini.Model)
	assert.Equal(t, 45*time.Second, cfg.Gemini.Timeout)
	assert.Equal(t, 5, cfg.Gemini.MaxRetries)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/srv/countries.csv", cfg.CountriesCSV)
	assert.Equal(t, "postgres://coach@localhost/coach", cfg.DatabaseURL)
	assert.Equal(t, 0, cfg.RateLimit.PerMinute)
	assert.Equal(t, 7, cfg.RateLimit.Burst)
}

func TestFromEnv_MissingAPIKey(t *testing.T) {
	_, err := FromEnv(mapLookup(map[string]string{"PORT": "8080"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestFromEnv_BadValuesFallBack(t *testing.T) {
	cfg, err := FromEnv(mapLookup(map[string]string{
		"GEMINI_API_KEY":     "k",
		"GEMINI_TIMEOUT":     "soon",
		"GEMINI_MAX_RETRIES": "many",
		"RATE_LIMIT_BURST":   "0",
	}))
	require.NoError(t, err)

	assert.Equal(t, 120*time.Second, cfg.Gemini.Timeout)
	assert.Equal(t, 3, cfg.Gemini.MaxRetries)
	assert.Equal(t, 1, cfg.RateLimit.Burst)
}

func TestFromEnv_InvalidPort(t *testing.T) {
	_, err := FromEnv(mapLookup(map[string]string{"GEMINI_API_KEY": "k", "PORT": "70000"}))
	require.Error(t, err)
}

func TestGeminiConfig_Settings(t *testing.T) {
	g := GeminiConfig{
		APIKey:     "k",
		Model:      "gemini-1.5-flash",
		BaseURL:    "http://localhost:9999/v1beta",
		Timeout:    5 * time.Second,
		MaxRetries: 2,
	}

	s := g.Settings()
	assert.Equal(t, "k", s.APIKey)
	assert.Equal(t, "gemini-1.5-flash", s.Model)
	assert.Equal(t, "http://localhost:9999/v1beta", s.BaseURL)
	assert.Equal(t, 5*time.Second, s.Timeout)
	assert.Equal(t, 2, s.MaxRetries)
	assert.Equal(t, 0.7, s.Generation.Temperature)
	assert.Equal(t, 8192, s.Generation.MaxOutputTokens)
	assert.Len(t, s.Safety, 4)
}

func TestCountrySourceFromEnv(t *testing.T) {
	assert.Equal(t, CountrySource{CountriesCSV: "data/countries.csv"}, CountrySourceFromEnv(mapLookup(nil)))

	source := CountrySourceFromEnv(mapLookup(map[string]string{
		"COUNTRIES_CSV": "/srv/countries.csv",
		"DATABASE_URL":  "postgres://coach@localhost/coach",
	}))
	assert.Equal(t, "/srv/countries.csv", source.CountriesCSV)
	assert.Equal(t, "postgres://coach@localhost/coach", source.DatabaseURL)
}

func TestLoadCountrySource_ReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("COUNTRIES_CSV=from-dotenv.csv\n"), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("COUNTRIES_CSV", "")
	os.Unsetenv("COUNTRIES_CSV")

	assert.Equal(t, "from-dotenv.csv", LoadCountrySource().CountriesCSV)
}
