package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingAuth indicates no completion-service keys are configured.
var ErrMissingAuth = errors.New("no API keys configured: set AUTOPILOT_API_KEYS or enable offline mode")

// Load loads configuration from file and environment variables.
func Load(path string) (*Config, error) {
	// A local .env is optional; ignore absence.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path == "" {
		path = defaultConfigPath()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	loadFromEnv(cfg)

	return cfg, nil
}

// defaultConfigPath returns the path to the config file.
func defaultConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "autopilot", "config.yaml")
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config", "autopilot", "config.yaml")
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	// Allow ${VAR} references inside the config file.
	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// loadFromEnv loads configuration from environment variables.
func loadFromEnv(cfg *Config) {
	// Key pool. Priority: AUTOPILOT_API_KEYS > GEMINI_API_KEYS > GEMINI_API_KEY.
	if raw := os.Getenv("AUTOPILOT_API_KEYS"); raw != "" {
		cfg.API.Keys = splitKeys(raw)
	} else if raw := os.Getenv("GEMINI_API_KEYS"); raw != "" {
		cfg.API.Keys = splitKeys(raw)
	} else if key := os.Getenv("GEMINI_API_KEY"); key != "" && len(cfg.API.Keys) == 0 {
		cfg.API.Keys = []string{key}
	}

	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.API.GitHubToken = token
	}

	if model := os.Getenv("AUTOPILOT_MODEL"); model != "" {
		cfg.Model.Name = model
	}

	if offline := os.Getenv("AUTOPILOT_OFFLINE"); offline != "" {
		switch strings.ToLower(offline) {
		case "1", "true", "yes":
			cfg.API.Offline = true
		}
	}

	if level := os.Getenv("AUTOPILOT_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}

// splitKeys parses a comma- or semicolon-separated key list, trimming
// whitespace and dropping empty entries.
func splitKeys(raw string) []string {
	parts := strings.Split(strings.ReplaceAll(raw, ";", ","), ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keys = append(keys, p)
		}
	}
	return keys
}

// Validate validates the configuration. Missing keys are fatal unless the
// stub provider is selected.
func (c *Config) Validate() error {
	if c.API.Offline {
		return nil
	}
	if len(c.API.Keys) == 0 {
		return ErrMissingAuth
	}
	return nil
}
