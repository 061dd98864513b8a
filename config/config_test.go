package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "krishi.db", cfg.Database.Path)
	assert.Equal(t, "gateway", cfg.Translate.Provider)
	assert.Equal(t, "http://localhost:8100", cfg.Translate.URL)
	assert.Equal(t, 15*time.Second, cfg.Translate.Timeout)
	assert.Equal(t, "openai", cfg.Advisor.Provider)
	assert.Equal(t, "agriculture-qa-fast", cfg.Advisor.Model)
	assert.InDelta(t, 0.5, cfg.Advisor.Temperature, 1e-6)
	assert.Equal(t, 40000000, cfg.Classifier.MaxPixels)
	assert.Equal(t, 24*time.Hour, cfg.Memory.TTL)
	assert.Equal(t, "memory", cfg.Memory.Backend)
	assert.Equal(t, 20, cfg.Memory.MaxTurns)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("ADVISOR_PROVIDER", "Mock")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("CHAT_MEMORY_TURNS", "4")
	t.Setenv("CLASSIFIER_MAX_PIXELS", "1000000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "mock", cfg.Advisor.Provider)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, 4, cfg.Memory.MaxTurns)
	assert.Equal(t, 1000000, cfg.Classifier.MaxPixels)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"7000\"\nadvisor:\n  provider: gemini\n  model: gemini-1.5-flash\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "gemini", cfg.Advisor.Provider)
	assert.Equal(t, "gemini-1.5-flash", cfg.Advisor.Model)
}

func TestValidate(t *testing.T) {
	chdir(t, t.TempDir())
	base, err := Load()
	require.NoError(t, err)

	bad := base
	bad.Advisor.Provider = "bard"
	assert.Error(t, bad.Validate())

	bad = base
	bad.Database.Driver = "postgres"
	bad.Database.URL = ""
	assert.Error(t, bad.Validate())

	bad = base
	bad.Translate.Provider = "google"
	assert.Error(t, bad.Validate())

	bad = base
	bad.Memory.Backend = "disk"
	assert.Error(t, bad.Validate())
}

func TestRedacted(t *testing.T) {
	cfg := AppConfig{}
	cfg.Advisor.APIKey = "sk-secret"
	cfg.Database.URL = "postgres://u:p@h/db"

	r := cfg.Redacted()
	assert.Equal(t, "***", r.Advisor.APIKey)
	assert.Equal(t, "***", r.Database.URL)
	assert.Equal(t, "", r.KB.EmbAPIKey)
	assert.Equal(t, "sk-secret", cfg.Advisor.APIKey)
}

// chdir changes the working directory for the test and restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
