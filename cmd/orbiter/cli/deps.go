package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/orbiterhost/orbiter-cli/internal/api"
	"github.com/orbiterhost/orbiter-cli/internal/auth"
	"github.com/orbiterhost/orbiter-cli/internal/config"
	"github.com/orbiterhost/orbiter-cli/internal/model"
	"github.com/orbiterhost/orbiter-cli/internal/template"
	"github.com/orbiterhost/orbiter-cli/internal/upload"
)

// deps holds everything a command needs, built once per invocation.
type deps struct {
	settings *config.Settings
	logger   *slog.Logger
	store    *config.CredentialStore
	provider *auth.Client
	dataDir  string
	out      io.Writer
}

func newDeps(cmd *cobra.Command) (*deps, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	dir := resolveDataDir()
	logger := newLogger(settings.Log.Level)
	return &deps{
		settings: settings,
		logger:   logger,
		store:    config.NewCredentialStore(dir),
		provider: auth.NewClient(settings.Auth.URL, settings.Auth.AnonKey),
		dataDir:  dir,
		out:      cmd.OutOrStdout(),
	}, nil
}

func newLogger(level string) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	} else if err := logLevel.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

func (d *deps) resolver() *auth.Resolver {
	return &auth.Resolver{
		Store:     d.store,
		Refresher: d.provider,
		EnvKey:    envAPIKey(),
		Threshold: config.ParseDuration(d.settings.Auth.RefreshThreshold, config.DefaultRefreshThreshold),
		Logger:    d.logger,
	}
}

// credential resolves the credential every authenticated command runs with.
func (d *deps) credential(ctx context.Context) (*model.Credential, error) {
	return d.resolver().Resolve(ctx)
}

// apiClient returns a client for the hosted API, authenticated when cred is
// non-nil.
func (d *deps) apiClient(cred *model.Credential) *api.Client {
	return api.NewClient(d.settings.APIURL, cred, d.logger)
}

// authedClient resolves the credential and returns an API client using it.
func (d *deps) authedClient(ctx context.Context) (*api.Client, *model.Credential, error) {
	cred, err := d.credential(ctx)
	if err != nil {
		return nil, nil, err
	}
	return d.apiClient(cred), cred, nil
}

func (d *deps) uploader(cred *model.Credential) *upload.Client {
	return upload.NewClient(d.settings.UploadURL, cred, d.logger)
}

func (d *deps) templateCache() (*template.Cache, error) {
	src, err := template.ParseSource(d.settings.Templates.Repo, d.settings.Templates.Branch)
	if err != nil {
		return nil, err
	}
	cacheDir := filepath.Join(d.dataDir, "templates")
	httpCacheDir := filepath.Join(d.dataDir, "cache", "github")
	return &template.Cache{
		Dir:    cacheDir,
		Source: src,
		MaxAge: config.ParseDuration(d.settings.Templates.MaxAge, config.DefaultTemplateMaxAge),
		Cloner: &template.GitCloner{Logger: d.logger},
		Remote: template.NewGitHubRemote(src, d.settings.Templates.GitHubToken, httpCacheDir, d.logger),
		Logger: d.logger,
	}, nil
}
