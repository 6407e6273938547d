// Package config provides configuration management for the portfolio analyzer.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "portfolio-analyzer/internal/errors"
	"portfolio-analyzer/internal/ingest"
	"portfolio-analyzer/internal/models"
)

// FileName is the config file name without extension.
const FileName = "config"

// Environment overrides.
const (
	EnvAnalyzerURL     = "PORTFOLIO_ANALYZER_URL"
	EnvAnalyzerTimeout = "PORTFOLIO_ANALYZER_TIMEOUT"
	EnvDatabasePath    = "PORTFOLIO_ANALYZER_DB"
)

// Config holds all application configuration.
type Config struct {
	Analyzer AnalyzerConfig `mapstructure:"analyzer"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Store    StoreConfig    `mapstructure:"store"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	UI       UIConfig       `mapstructure:"ui"`

	// Dir is the directory the config was loaded from.
	Dir string `mapstructure:"-"`
	// File is the config file that was read, or "" when defaults were used.
	File string `mapstructure:"-"`
}

// AnalyzerConfig describes the remote analysis service.
type AnalyzerConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// UploadConfig holds upload and preview settings.
type UploadConfig struct {
	MaxFileSize     int64  `mapstructure:"max_file_size"`
	PreviewRows     int    `mapstructure:"preview_rows"`
	RaggedRows      string `mapstructure:"ragged_rows"` // reject, pad
	DefaultStrategy string `mapstructure:"default_strategy"`
	SecurityMode    bool   `mapstructure:"security_mode"`
}

// StoreConfig selects the slot store backend.
type StoreConfig struct {
	Driver string `mapstructure:"driver"` // sqlite, memory
	Path   string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool `mapstructure:"color_enabled"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/portfolio-analyzer"
	}
	return filepath.Join(home, ".config", "portfolio-analyzer")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("analyzer.base_url", "http://localhost:8080")
	v.SetDefault("analyzer.path", "/analyze-portfolio")
	v.SetDefault("analyzer.timeout", "30s")

	v.SetDefault("upload.max_file_size", 10<<20)
	v.SetDefault("upload.preview_rows", 6)
	v.SetDefault("upload.ragged_rows", "reject")
	v.SetDefault("upload.default_strategy", "balanced")
	v.SetDefault("upload.security_mode", false)

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", false)
	v.SetDefault("logging.file_path", "")
	v.SetDefault("logging.max_size", 20)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 14)

	v.SetDefault("ui.color_enabled", true)
}

// Default returns the built-in configuration for configDir.
func Default(configDir string) *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	// Defaults always decode.
	_ = v.Unmarshal(cfg)
	cfg.Dir = configDir
	cfg.fillPaths()
	return cfg
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config file is replaced by a commented template and defaults are used.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	// .env files never override variables already set in the environment.
	_ = godotenv.Load(filepath.Join(configDir, ".env"))
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(FileName)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	cfg := &Config{Dir: configDir}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading %s.toml: %w", FileName, err)
		}
		if _, err := createTemplateConfig(configDir); err != nil {
			return nil, err
		}
	} else {
		cfg.File = v.ConfigFileUsed()
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding %s.toml: %w", FileName, err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	cfg.fillPaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv(EnvAnalyzerURL); v != "" {
		cfg.Analyzer.BaseURL = v
	}
	if v := os.Getenv(EnvAnalyzerTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a duration", apperrors.ErrConfigInvalid, EnvAnalyzerTimeout, v)
		}
		cfg.Analyzer.Timeout = d
	}
	if v := os.Getenv(EnvDatabasePath); v != "" {
		cfg.Store.Path = v
	}
	return nil
}

// fillPaths resolves empty paths relative to the config directory.
func (c *Config) fillPaths() {
	if c.Store.Path == "" {
		c.Store.Path = filepath.Join(c.Dir, "analyzer.db")
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = filepath.Join(c.Dir, "logs", "analyzer.log")
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Analyzer.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: analyzer.base_url %q must be an http(s) URL", apperrors.ErrConfigInvalid, c.Analyzer.BaseURL)
	}
	if !strings.HasPrefix(c.Analyzer.Path, "/") {
		return fmt.Errorf("%w: analyzer.path must start with /", apperrors.ErrConfigInvalid)
	}
	if c.Analyzer.Timeout <= 0 {
		return fmt.Errorf("%w: analyzer.timeout must be positive", apperrors.ErrConfigInvalid)
	}

	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("%w: upload.max_file_size must be positive", apperrors.ErrConfigInvalid)
	}
	if c.Upload.PreviewRows < 1 {
		return fmt.Errorf("%w: upload.preview_rows must be at least 1", apperrors.ErrConfigInvalid)
	}
	if _, err := ingest.ParseRaggedPolicy(c.Upload.RaggedRows); err != nil {
		return fmt.Errorf("%w: upload.ragged_rows: %v", apperrors.ErrConfigInvalid, err)
	}
	if _, err := models.ParseStrategy(c.Upload.DefaultStrategy); err != nil {
		return fmt.Errorf("%w: upload.default_strategy: %v", apperrors.ErrConfigInvalid, err)
	}

	switch c.Store.Driver {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("%w: store.driver %q (must be 'sqlite' or 'memory')", apperrors.ErrConfigInvalid, c.Store.Driver)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("%w: logging.level %q", apperrors.ErrConfigInvalid, c.Logging.Level)
	}
	return nil
}

// RaggedPolicy returns the configured ragged row policy.
func (c *Config) RaggedPolicy() ingest.RaggedPolicy {
	p, err := ingest.ParseRaggedPolicy(c.Upload.RaggedRows)
	if err != nil {
		return ingest.RaggedReject
	}
	return p
}

// DefaultStrategy returns the configured default investment strategy.
func (c *Config) DefaultStrategy() models.Strategy {
	s, err := models.ParseStrategy(c.Upload.DefaultStrategy)
	if err != nil {
		return models.StrategyBalanced
	}
	return s
}

// Endpoint returns the full analysis URL.
func (c *Config) Endpoint() string {
	return strings.TrimRight(c.Analyzer.BaseURL, "/") + c.Analyzer.Path
}
