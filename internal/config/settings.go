package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Settings are read from <dir>/config.yaml, falling back to the environment.
// Environment variables override file values.
type Settings struct {
	Origin string `yaml:"origin" env:"QUESTCTL_ORIGIN" env-default:"http://localhost:8080"`
	APIURL string `yaml:"api_url" env:"QUESTCTL_API_URL"`

	Timeout       time.Duration `yaml:"timeout" env:"QUESTCTL_TIMEOUT" env-default:"10s"`
	LoginTimeout  time.Duration `yaml:"login_timeout" env:"QUESTCTL_LOGIN_TIMEOUT" env-default:"10s"`
	HealthTimeout time.Duration `yaml:"health_timeout" env:"QUESTCTL_HEALTH_TIMEOUT" env-default:"1500ms"`
	StatusTimeout time.Duration `yaml:"status_timeout" env:"QUESTCTL_STATUS_TIMEOUT" env-default:"4s"`
	ProbeTimeout  time.Duration `yaml:"probe_timeout" env:"QUESTCTL_PROBE_TIMEOUT" env-default:"3s"`

	DashboardInterval time.Duration `yaml:"dashboard_interval" env:"QUESTCTL_DASHBOARD_INTERVAL" env-default:"10s"`
	QueueInterval     time.Duration `yaml:"queue_interval" env:"QUESTCTL_QUEUE_INTERVAL" env-default:"30s"`
	StatusInterval    time.Duration `yaml:"status_interval" env:"QUESTCTL_STATUS_INTERVAL" env-default:"30s"`

	JoinDelay time.Duration `yaml:"join_delay" env:"QUESTCTL_JOIN_DELAY" env-default:"3s"`

	YouTubeAPIKey string `yaml:"youtube_api_key" env:"QUESTCTL_YOUTUBE_API_KEY"`
}

// DefaultSettings mirrors the env-default tags.
func DefaultSettings() Settings {
	return Settings{
		Origin:            "http://localhost:8080",
		Timeout:           10 * time.Second,
		LoginTimeout:      10 * time.Second,
		HealthTimeout:     1500 * time.Millisecond,
		StatusTimeout:     4 * time.Second,
		ProbeTimeout:      3 * time.Second,
		DashboardInterval: 10 * time.Second,
		QueueInterval:     30 * time.Second,
		StatusInterval:    30 * time.Second,
		JoinDelay:         3 * time.Second,
	}
}

// LoadSettings loads <dir>/.env into the process environment (existing
// variables win), then reads <dir>/config.yaml. A missing file means
// environment only.
func LoadSettings(dir string) (Settings, error) {
	var s Settings

	if err := godotenv.Load(filepath.Join(dir, EnvFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return s, fmt.Errorf("cannot read %s: %w", EnvFile, err)
	}

	if err := cleanenv.ReadConfig(filepath.Join(dir, SettingsFile), &s); err != nil {
		var pe *os.PathError
		if !errors.As(err, &pe) {
			return s, fmt.Errorf("cannot read %s: %w", SettingsFile, err)
		}
		s = Settings{}
		if err := cleanenv.ReadEnv(&s); err != nil {
			return s, fmt.Errorf("cannot read env: %w", err)
		}
	}
	return s, nil
}

// APIBase returns the explicit API URL or the one derived from Origin.
func (s Settings) APIBase() string {
	if s.APIURL != "" {
		return strings.TrimRight(s.APIURL, "/")
	}
	return DeriveAPIURL(s.Origin)
}

// DeriveAPIURL maps the console origin to the API base. The console runs
// on port 8080 and the API on 8000, spelled either as a forwarded-host
// suffix (-8080.) or as an explicit port (:8080). Only the first form
// found is rewritten.
func DeriveAPIURL(origin string) string {
	base := strings.TrimRight(origin, "/")
	switch {
	case strings.Contains(base, "-8080."):
		base = strings.Replace(base, "-8080.", "-8000.", 1)
	case strings.Contains(base, ":8080"):
		base = strings.Replace(base, ":8080", ":8000", 1)
	}
	return base + "/api"
}
