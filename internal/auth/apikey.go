package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/orbiterhost/orbiter-cli/internal/model"
)

// KeyChecker performs a lightweight authenticated read with the given
// credential. The API client satisfies it.
type KeyChecker interface {
	Ping(ctx context.Context, cred *model.Credential) error
}

// statusError is implemented by errors that carry an HTTP status, meaning
// the server answered and refused.
type statusError interface {
	HTTPStatus() int
}

// RegisterAPIKey validates key against the API and, only if it is accepted,
// stores it as the current credential.
func RegisterAPIKey(ctx context.Context, checker KeyChecker, store CredentialStore, key string) (*model.Credential, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("%w: key is empty", ErrInvalidKey)
	}

	probe := &model.Credential{AccessToken: key, KeyType: model.KeyTypeAPIKey}
	if err := checker.Ping(ctx, probe); err != nil {
		var se statusError
		if errors.As(err, &se) {
			return nil, fmt.Errorf("%w (status %d)", ErrInvalidKey, se.HTTPStatus())
		}
		return nil, fmt.Errorf("validate key: %w", err)
	}

	cred, err := store.Store(ctx, key, "", model.KeyTypeAPIKey)
	if err != nil {
		return nil, fmt.Errorf("save credentials: %w", err)
	}
	return cred, nil
}
