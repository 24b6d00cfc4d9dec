package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Picker backends.
const (
	BackendBuiltin   = "builtin"   // Inline picker on /dev/tty
	BackendBubbleTea = "bubbletea" // Full-screen Bubble Tea picker
	BackendFzf       = "fzf"       // External fzf, falls back to builtin
)

// Config represents the easybranch configuration.
type Config struct {
	Picker PickerConfig `yaml:"picker"`
	Git    GitConfig    `yaml:"git"`
	Log    LogConfig    `yaml:"log"`
}

// PickerConfig holds interactive picker settings.
type PickerConfig struct {
	Backend        string `yaml:"backend"`         // builtin, bubbletea, or fzf
	Prompt         string `yaml:"prompt"`          // Line shown above the branches (empty = none)
	HighlightColor string `yaml:"highlight_color"` // lipgloss colour for matches and prompt
}

// GitConfig holds branch discovery and checkout settings.
type GitConfig struct {
	FetchRetries    int      `yaml:"fetch_retries"`    // Fetches attempted when nothing matches
	FetchCommand    string   `yaml:"fetch_command"`    // Shell-style command, split with shlex
	CheckoutCommand string   `yaml:"checkout_command"` // Branch name is appended
	RemotePrefixes  []string `yaml:"remote_prefixes"`  // Stripped from remote branch names
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // Log file path (empty = cache dir default)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Picker: PickerConfig{
			Backend:        BackendBuiltin,
			Prompt:         "Choose a branch:",
			HighlightColor: "12",
		},
		Git: GitConfig{
			FetchRetries:    1,
			FetchCommand:    "git fetch",
			CheckoutCommand: "git checkout",
			RemotePrefixes:  []string{"origin/"},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	paths := DefaultPaths()
	return LoadFromFile(paths.ConfigFile())
}

// LoadFromFile loads configuration from a specific file. A missing file
// yields the defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if !IsValidBackend(c.Picker.Backend) {
		return fmt.Errorf("picker.backend must be builtin, bubbletea, or fzf (got: %s)", c.Picker.Backend)
	}

	if c.Git.FetchRetries < 0 {
		return errors.New("git.fetch_retries must be >= 0")
	}

	if c.Git.CheckoutCommand == "" {
		return errors.New("git.checkout_command must not be empty")
	}

	if !isValidLogLevel(c.Log.Level) {
		return fmt.Errorf("log.level must be debug, info, warn, or error (got: %s)", c.Log.Level)
	}

	return nil
}

// IsValidBackend reports whether backend names a known picker backend.
func IsValidBackend(backend string) bool {
	switch backend {
	case BackendBuiltin, BackendBubbleTea, BackendFzf:
		return true
	}
	return false
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

// ApplyEnvOverrides applies environment variable overrides to the config.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("EASYBRANCH_PICKER_BACKEND"); v != "" {
		if IsValidBackend(v) {
			c.Picker.Backend = v
		}
	}
	if v := os.Getenv("EASYBRANCH_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && b {
			c.Log.Level = "debug"
		}
	}
	if v := os.Getenv("EASYBRANCH_LOG_LEVEL"); v != "" {
		if isValidLogLevel(v) {
			c.Log.Level = v
		}
	}
}
