package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/orbiterhost/orbiter-cli/internal/config"
)

// loadSettings builds the effective settings: defaults, then the config
// file viper located, then ORBITER_* environment variables.
func loadSettings() (*config.Settings, error) {
	s := config.DefaultSettings()
	if path := viper.ConfigFileUsed(); path != "" {
		loaded, err := config.LoadSettings(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		s = loaded
	}

	env := viper.New()
	env.SetEnvPrefix(envPrefix)
	env.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	env.AutomaticEnv()

	overrideString(env, "api_url", &s.APIURL)
	overrideString(env, "upload_url", &s.UploadURL)
	overrideString(env, "base_domain", &s.BaseDomain)
	overrideString(env, "auth.url", &s.Auth.URL)
	overrideString(env, "auth.anon_key", &s.Auth.AnonKey)
	overrideString(env, "auth.refresh_threshold", &s.Auth.RefreshThreshold)
	overrideString(env, "login.timeout", &s.Login.Timeout)
	overrideString(env, "templates.repo", &s.Templates.Repo)
	overrideString(env, "templates.branch", &s.Templates.Branch)
	overrideString(env, "templates.max_age", &s.Templates.MaxAge)
	overrideString(env, "templates.github_token", &s.Templates.GitHubToken)
	overrideString(env, "log.level", &s.Log.Level)
	if env.IsSet("login.port") {
		s.Login.Port = env.GetInt("login.port")
	}
	return s, nil
}

func overrideString(v *viper.Viper, key string, dst *string) {
	if v.IsSet(key) {
		*dst = v.GetString(key)
	}
}

// envAPIKey returns ORBITER_API_KEY, which takes precedence over any stored
// credential.
func envAPIKey() string {
	env := viper.New()
	env.SetEnvPrefix(envPrefix)
	env.AutomaticEnv()
	return strings.TrimSpace(env.GetString("api_key"))
}
