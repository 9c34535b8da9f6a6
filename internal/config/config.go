// Package config handles the XDG configuration directory, file paths and settings.
package config

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const (
	// AppName is the application directory name.
	AppName = "questctl"

	// SettingsFile is the optional YAML settings filename.
	SettingsFile = "config.yaml"

	// EnvFile is the optional dotenv filename.
	EnvFile = ".env"

	// TokenFile is the stored access token filename.
	TokenFile = "token.json"

	// StateFile holds console state persisted between runs.
	StateFile = "state.json"
)

// Output formats accepted by --output.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Output is one of OutputTable, OutputJSON or OutputYAML.
	Output string

	// Settings are the loaded file/env settings.
	Settings Settings

	// Logger is never nil after New; use Log() on hand-built configs.
	Logger *zap.Logger
}

// New creates a new Config with the default or specified config directory
// and loads its settings.
// If configDir is empty, uses XDG_CONFIG_HOME/questctl or $HOME/.config/questctl.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	settings, err := LoadSettings(dir)
	if err != nil {
		return nil, err
	}
	return &Config{
		Dir:      dir,
		Output:   OutputTable,
		Settings: settings,
		Logger:   zap.NewNop(),
	}, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// Log returns the configured logger or a no-op one.
func (c *Config) Log() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// SettingsPath returns the path to the YAML settings file.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// TokenPath returns the path to the stored access token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// StatePath returns the path to the persisted console state.
func (c *Config) StatePath() string {
	return filepath.Join(c.Dir, StateFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasToken reports whether a token file exists. The token may still be
// expired; the API decides.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

