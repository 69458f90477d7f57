package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings represents the CLI settings file (~/.orbiter/config.yaml). Every
// key can also be supplied as an ORBITER_* environment variable.
type Settings struct {
	APIURL     string            `yaml:"api_url"`
	UploadURL  string            `yaml:"upload_url"`
	BaseDomain string            `yaml:"base_domain"`
	Auth       AuthSettings      `yaml:"auth"`
	Login      LoginSettings     `yaml:"login"`
	Templates  TemplatesSettings `yaml:"templates"`
	Log        LogSettings       `yaml:"log"`
}

// AuthSettings points at the identity provider.
type AuthSettings struct {
	URL              string `yaml:"url"`
	AnonKey          string `yaml:"anon_key"`
	RefreshThreshold string `yaml:"refresh_threshold"`
}

// LoginSettings controls the local OAuth callback listener.
type LoginSettings struct {
	Port    int    `yaml:"port"`
	Timeout string `yaml:"timeout"`
}

// TemplatesSettings controls where project templates come from and how long
// a fetched copy stays fresh.
type TemplatesSettings struct {
	Repo        string `yaml:"repo"`
	Branch      string `yaml:"branch"`
	MaxAge      string `yaml:"max_age"`
	GitHubToken string `yaml:"github_token"`
}

// LogSettings controls diagnostic output on stderr.
type LogSettings struct {
	Level string `yaml:"level"`
}

// Staleness defaults. The refresh threshold assumes a 60 minute upstream
// access token lifetime.
const (
	DefaultRefreshThreshold = 55 * time.Minute
	DefaultTemplateMaxAge   = 24 * time.Hour
	DefaultLoginTimeout     = 60 * time.Second
	DefaultLoginPort        = 54321
)

// LoadSettings reads and parses a YAML settings file. Environment variables
// referenced as ${VAR_NAME} in the file are expanded before parsing.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}

	content := os.ExpandEnv(string(data))

	cfg := DefaultSettings()
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return nil, fmt.Errorf("parse settings file: %w", err)
	}
	return cfg, nil
}

// DefaultSettings returns Settings pre-filled with the production endpoints.
func DefaultSettings() *Settings {
	return &Settings{
		APIURL:     "https://api.orbiter.host",
		UploadURL:  "https://api.orbiter.host/files",
		BaseDomain: "orbiter.website",
		Auth: AuthSettings{
			URL:              "https://auth.orbiter.host",
			RefreshThreshold: DefaultRefreshThreshold.String(),
		},
		Login: LoginSettings{
			Port:    DefaultLoginPort,
			Timeout: DefaultLoginTimeout.String(),
		},
		Templates: TemplatesSettings{
			Repo:   "https://github.com/orbiterhost/orbiter-templates",
			Branch: "main",
			MaxAge: DefaultTemplateMaxAge.String(),
		},
		Log: LogSettings{
			Level: "info",
		},
	}
}

// WriteDefaultSettings writes the default settings to a YAML file.
func WriteDefaultSettings(path string) error {
	data, err := yaml.Marshal(DefaultSettings())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ParseDuration parses s, falling back to def when s is empty or invalid.
func ParseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
