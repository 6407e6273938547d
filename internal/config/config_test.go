package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "portfolio-analyzer/internal/errors"
	"portfolio-analyzer/internal/ingest"
	"portfolio-analyzer/internal/models"
)

// clearEnv unsets the override variables for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvAnalyzerURL, EnvAnalyzerTimeout, EnvDatabasePath} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(body), 0644))
}

func TestLoad_MissingFileWritesTemplateAndUsesDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Empty(t, cfg.File)
	assert.FileExists(t, ConfigPath(dir))
	assert.Equal(t, "http://localhost:8080", cfg.Analyzer.BaseURL)
	assert.Equal(t, "/analyze-portfolio", cfg.Analyzer.Path)
	assert.Equal(t, 30*time.Second, cfg.Analyzer.Timeout)
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxFileSize)
	assert.Equal(t, 6, cfg.Upload.PreviewRows)
	assert.Equal(t, ingest.RaggedReject, cfg.RaggedPolicy())
	assert.Equal(t, models.StrategyBalanced, cfg.DefaultStrategy())
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, filepath.Join(dir, "analyzer.db"), cfg.Store.Path)
	assert.Equal(t, filepath.Join(dir, "logs", "analyzer.log"), cfg.Logging.FilePath)
	assert.True(t, cfg.UI.ColorEnabled)

	// The template itself must load to the same values.
	again, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ConfigPath(dir), again.File)
	again.File = ""
	assert.Equal(t, cfg, again)
}

func TestLoad_FileValues(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeConfig(t, dir, `
[analyzer]
base_url = "https://analysis.example.com"
timeout = "2m"

[upload]
preview_rows = 3
ragged_rows = "pad"
default_strategy = "aggressive"

[store]
driver = "memory"
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://analysis.example.com/analyze-portfolio", cfg.Endpoint())
	assert.Equal(t, 2*time.Minute, cfg.Analyzer.Timeout)
	assert.Equal(t, 3, cfg.Upload.PreviewRows)
	assert.Equal(t, ingest.RaggedPad, cfg.RaggedPolicy())
	assert.Equal(t, models.StrategyAggressive, cfg.DefaultStrategy())
	assert.Equal(t, "memory", cfg.Store.Driver)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv(EnvAnalyzerURL, "http://10.0.0.5:9000")
	t.Setenv(EnvAnalyzerTimeout, "5s")
	t.Setenv(EnvDatabasePath, "/tmp/custom.db")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:9000", cfg.Analyzer.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Analyzer.Timeout)
	assert.Equal(t, "/tmp/custom.db", cfg.Store.Path)
}

func TestLoad_BadTimeoutEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAnalyzerTimeout, "soon")
	_, err := Load(t.TempDir())
	assert.ErrorIs(t, err, apperrors.ErrConfigInvalid)
}

func TestLoad_DotEnvInConfigDir(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(EnvAnalyzerURL+"=http://dotenv.local:7000\n"), 0600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://dotenv.local:7000", cfg.Analyzer.BaseURL)
}

func TestLoad_MalformedFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeConfig(t, dir, "[analyzer\nbase_url = ")
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"relative url", func(c *Config) { c.Analyzer.BaseURL = "localhost:8080" }},
		{"ftp url", func(c *Config) { c.Analyzer.BaseURL = "ftp://host" }},
		{"path without slash", func(c *Config) { c.Analyzer.Path = "analyze" }},
		{"zero timeout", func(c *Config) { c.Analyzer.Timeout = 0 }},
		{"zero max size", func(c *Config) { c.Upload.MaxFileSize = 0 }},
		{"no preview rows", func(c *Config) { c.Upload.PreviewRows = 0 }},
		{"unknown ragged policy", func(c *Config) { c.Upload.RaggedRows = "truncate" }},
		{"unknown strategy", func(c *Config) { c.Upload.DefaultStrategy = "yolo" }},
		{"unknown driver", func(c *Config) { c.Store.Driver = "postgres" }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	require.NoError(t, Default(t.TempDir()).Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default(t.TempDir())
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), apperrors.ErrConfigInvalid)
		})
	}
}
