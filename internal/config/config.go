package config

import "time"

// Config represents the main application configuration.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Model    ModelConfig    `yaml:"model"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Safety   SafetyConfig   `yaml:"safety"`
	Memory   MemoryConfig   `yaml:"memory"`
	Logging  LoggingConfig  `yaml:"logging"`

	// Runtime version information
	Version string `yaml:"-"`
}

// APIConfig holds completion-service settings.
type APIConfig struct {
	// Keys is the rotation pool for the completion service. Populated from
	// the config file or the AUTOPILOT_API_KEYS / GEMINI_API_KEYS env vars
	// (comma- or semicolon-separated).
	Keys []string `yaml:"keys,omitempty"`

	// Offline selects the deterministic stub provider instead of the
	// network-backed one. No keys are required in offline mode.
	Offline bool `yaml:"offline"`

	// GitHubToken is used for cloning private repositories.
	GitHubToken string `yaml:"github_token,omitempty"`

	Retry RetryConfig `yaml:"retry"`
}

// RetryConfig holds retry settings for completion calls.
type RetryConfig struct {
	RetryDelay time.Duration `yaml:"retry_delay"` // Initial delay between retries
	MaxDelay   time.Duration `yaml:"max_delay"`   // Backoff cap
}

// ModelConfig holds model generation settings.
type ModelConfig struct {
	Name            string  `yaml:"name"`
	Temperature     float32 `yaml:"temperature"`
	TopP            float32 `yaml:"top_p"`
	MaxOutputTokens int32   `yaml:"max_output_tokens"`
}

// AnalysisConfig holds static-analysis settings.
type AnalysisConfig struct {
	MaxComplexityFiles int      `yaml:"max_complexity_files"` // Cap for full-repo scans
	MaxLogFiles        int      `yaml:"max_log_files"`        // Cap per incident analysis
	MinDuplicateLines  int      `yaml:"min_duplicate_lines"`  // Minimum duplicate block length
	ExcludeDirs        []string `yaml:"exclude_dirs"`         // Directory names skipped by walks
}

// SafetyConfig holds evaluator thresholds.
type SafetyConfig struct {
	// DiffMinRemovals is the deletion floor before a diff is considered for
	// rejection. Empirical constant carried over from production tuning.
	DiffMinRemovals int `yaml:"diff_min_removals"`
	// DiffRemovalRatio: removals must exceed ratio*additions.
	DiffRemovalRatio int `yaml:"diff_removal_ratio"`
}

// MemoryConfig holds conversation and preference memory settings.
type MemoryConfig struct {
	MaxHistory      int    `yaml:"max_history"`      // Exchanges kept in session memory
	PreferencesFile string `yaml:"preferences_file"` // Long-term preference store path
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Retry: RetryConfig{
				RetryDelay: 1 * time.Second,
				MaxDelay:   10 * time.Second,
			},
		},
		Model: ModelConfig{
			Name:            "gemini-2.0-flash",
			Temperature:     0.1,
			TopP:            0.95,
			MaxOutputTokens: 2048,
		},
		Analysis: AnalysisConfig{
			MaxComplexityFiles: 50,
			MaxLogFiles:        3,
			MinDuplicateLines:  5,
			ExcludeDirs: []string{
				".git", "__pycache__", "venv", "node_modules",
				".autopilot", "tests", "dist", "build",
			},
		},
		Safety: SafetyConfig{
			DiffMinRemovals:  50,
			DiffRemovalRatio: 2,
		},
		Memory: MemoryConfig{
			MaxHistory:      8,
			PreferencesFile: "devops_preferences.json",
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}
