package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/orbiterhost/orbiter-cli/internal/model"
)

// DefaultRefreshThreshold is the age after which an OAuth credential is
// refreshed. Upstream access tokens live for 60 minutes.
const DefaultRefreshThreshold = 55 * time.Minute

// CredentialStore is the persistence the resolver and login flows need.
type CredentialStore interface {
	Load(ctx context.Context) (*model.Credential, bool)
	Save(ctx context.Context, cred *model.Credential) error
	Store(ctx context.Context, accessToken, refreshToken string, keyType model.KeyType) (*model.Credential, error)
}

// Refresher exchanges a refresh token for a new session.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
}

// Resolver produces a currently usable credential, refreshing a stale OAuth
// record when needed. It never retries: a failed refresh means the user has
// to log in again.
type Resolver struct {
	Store     CredentialStore
	Refresher Refresher
	Clock     clockwork.Clock
	// EnvKey is an API key supplied through the environment. When set it
	// wins over the store entirely.
	EnvKey    string
	Threshold time.Duration
	Logger    *slog.Logger
}

// Resolve returns the credential to authenticate with, or ErrNotAuthenticated.
func (r *Resolver) Resolve(ctx context.Context) (*model.Credential, error) {
	clock := r.clock()

	if r.EnvKey != "" {
		return &model.Credential{
			AccessToken: r.EnvKey,
			CreatedAt:   clock.Now().UTC(),
			KeyType:     model.KeyTypeAPIKey,
		}, nil
	}

	cred, ok := r.Store.Load(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	if cred.IsAPIKey() || cred.Age(clock.Now()) < r.threshold() {
		return cred, nil
	}

	return r.refresh(ctx, cred)
}

func (r *Resolver) refresh(ctx context.Context, cred *model.Credential) (*model.Credential, error) {
	log := r.logger()

	if cred.RefreshToken == "" || r.Refresher == nil {
		log.Debug("oauth credential expired and cannot be refreshed")
		return nil, ErrNotAuthenticated
	}

	log.Debug("refreshing oauth credential", "age", cred.Age(r.clock().Now()).Round(time.Second))
	sess, err := r.Refresher.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		log.Debug("token refresh failed", "error", err)
		return nil, ErrNotAuthenticated
	}

	refreshed := &model.Credential{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		CreatedAt:    r.clock().Now().UTC(),
		KeyType:      model.KeyTypeOAuth,
	}
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = cred.RefreshToken
	}

	if err := r.Store.Save(ctx, refreshed); err != nil {
		// The new token is still good for this invocation.
		log.Warn("failed to persist refreshed credential", "error", err)
	}
	return refreshed, nil
}

func (r *Resolver) clock() clockwork.Clock {
	if r.Clock == nil {
		return clockwork.NewRealClock()
	}
	return r.Clock
}

func (r *Resolver) threshold() time.Duration {
	if r.Threshold <= 0 {
		return DefaultRefreshThreshold
	}
	return r.Threshold
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}
