package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Portfolio Analyzer Configuration

[analyzer]
# Base URL of the portfolio analysis service
base_url = "http://localhost:8080"
# Submission endpoint
path = "/analyze-portfolio"
# Request timeout (e.g., "30s", "2m")
timeout = "30s"

[upload]
# Largest accepted holdings file in bytes
max_file_size = 10485760
# Rows shown in the preview, header included
preview_rows = 6
# Rows whose width differs from the header: "reject" or "pad"
ragged_rows = "reject"
# Default strategy: conservative, balanced, aggressive
default_strategy = "balanced"
# Ask the service to mask holdings details
security_mode = false

[store]
# Slot store backend: "sqlite" or "memory"
driver = "sqlite"
# Database file; empty means analyzer.db in this directory
path = ""

[logging]
# Level: debug, info, warn, error
level = "info"
# Log to stderr
console = true
# Log to a rotating file
file = false
# Empty means logs/analyzer.log in this directory
file_path = ""
# Rotation: megabytes per file, files kept, days kept
max_size = 20
max_backups = 3
max_age = 14

[ui]
# Enable colored output
color_enabled = true
`

// ConfigPath returns the config file path inside configDir.
func ConfigPath(configDir string) string {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	return filepath.Join(configDir, FileName+".toml")
}

func createTemplateConfig(configDir string) (string, error) {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	path := ConfigPath(configDir)
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return "", fmt.Errorf("writing config template: %w", err)
	}
	return path, nil
}
