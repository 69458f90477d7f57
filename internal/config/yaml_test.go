package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	if got := ParseDuration(s.Auth.RefreshThreshold, 0); got != 55*time.Minute {
		t.Errorf("refresh threshold = %v, want 55m", got)
	}
	if got := ParseDuration(s.Templates.MaxAge, 0); got != 24*time.Hour {
		t.Errorf("template max age = %v, want 24h", got)
	}
	if got := ParseDuration(s.Login.Timeout, 0); got != 60*time.Second {
		t.Errorf("login timeout = %v, want 60s", got)
	}
	if s.Login.Port != DefaultLoginPort {
		t.Errorf("login port = %d, want %d", s.Login.Port, DefaultLoginPort)
	}
}

func TestWriteAndLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefaultSettings(path); err != nil {
		t.Fatalf("WriteDefaultSettings: %v", err)
	}

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.APIURL != DefaultSettings().APIURL {
		t.Errorf("APIURL = %q", s.APIURL)
	}
}

func TestLoadSettings_ExpandsEnv(t *testing.T) {
	t.Setenv("ORBITER_TEST_TOKEN", "ghp_secret")
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "templates:\n  github_token: ${ORBITER_TEST_TOKEN}\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.Templates.GitHubToken != "ghp_secret" {
		t.Errorf("GitHubToken = %q, want expanded env value", s.Templates.GitHubToken)
	}
	// Unset keys keep their defaults.
	if s.Templates.Branch != "main" {
		t.Errorf("Branch = %q, want default", s.Templates.Branch)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", time.Minute},
		{"bogus", time.Minute},
		{"-5m", time.Minute},
		{"90s", 90 * time.Second},
	}
	for _, tt := range tests {
		if got := ParseDuration(tt.in, time.Minute); got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
