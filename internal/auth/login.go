package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"

	"github.com/cli/browser"
	"github.com/jonboulle/clockwork"

	"github.com/orbiterhost/orbiter-cli/internal/model"
	"github.com/orbiterhost/orbiter-cli/internal/server"
)

// DefaultLoginTimeout bounds how long the callback listener waits.
const DefaultLoginTimeout = 60 * time.Second

// SessionProvider is the part of the identity provider the browser login
// needs.
type SessionProvider interface {
	AuthorizeURL(provider, redirectTo string) (string, error)
	User(ctx context.Context, accessToken string) (*User, error)
}

// LoginFlow performs the browser-based OAuth login: it starts a loopback
// listener, sends the user to the provider, and persists the session that
// comes back through the redirect.
type LoginFlow struct {
	Provider    SessionProvider
	Store       CredentialStore
	Port        int
	Timeout     time.Duration
	OpenBrowser func(url string) error
	Clock       clockwork.Clock
	Out         io.Writer
	Logger      *slog.Logger
}

// Run blocks until the callback arrives, the timeout elapses, or ctx is
// cancelled. The listener is shut down before Run returns.
func (f *LoginFlow) Run(ctx context.Context, provider string) (*model.Credential, error) {
	logger := f.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	out := f.Out
	if out == nil {
		out = io.Discard
	}

	var cred *model.Credential
	cfg := server.DefaultConfig()
	cfg.Port = f.Port

	srv := server.New(cfg, func(cbCtx context.Context, params url.Values) error {
		c, err := f.complete(cbCtx, params)
		if err != nil {
			return err
		}
		cred = c
		return nil
	}, logger)

	if err := srv.Start(); err != nil {
		return nil, fmt.Errorf("start callback listener: %w", err)
	}
	defer srv.Shutdown(context.Background())

	redirectTo := fmt.Sprintf("http://localhost:%d/auth", srv.Port())
	authURL, err := f.Provider.AuthorizeURL(provider, redirectTo)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(out, "Opening your browser to log in with %s.\n", provider)
	fmt.Fprintf(out, "If it does not open, visit:\n  %s\n", authURL)

	open := f.OpenBrowser
	if open == nil {
		open = browser.OpenURL
	}
	if err := open(authURL); err != nil {
		logger.Debug("could not open browser", "error", err)
	}

	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultLoginTimeout
	}
	clock := f.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	select {
	case err := <-srv.Done():
		if err != nil {
			return nil, err
		}
		return cred, nil
	case <-clock.After(timeout):
		return nil, ErrLoginTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// complete establishes a session from the redirect parameters and persists
// it as the current credential.
func (f *LoginFlow) complete(ctx context.Context, params url.Values) (*model.Credential, error) {
	if desc := params.Get("error_description"); desc != "" {
		return nil, fmt.Errorf("%w: %s", ErrLoginFailed, desc)
	}
	if e := params.Get("error"); e != "" {
		return nil, fmt.Errorf("%w: %s", ErrLoginFailed, e)
	}

	access := params.Get("access_token")
	refresh := params.Get("refresh_token")
	if access == "" || refresh == "" {
		return nil, fmt.Errorf("%w: callback is missing access or refresh token", ErrLoginFailed)
	}

	if _, err := f.Provider.User(ctx, access); err != nil {
		return nil, fmt.Errorf("establish session: %w", err)
	}

	cred, err := f.Store.Store(ctx, access, refresh, model.KeyTypeOAuth)
	if err != nil {
		return nil, fmt.Errorf("save credentials: %w", err)
	}
	return cred, nil
}
