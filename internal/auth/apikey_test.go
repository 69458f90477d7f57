package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orbiterhost/orbiter-cli/internal/model"
)

type statusErr int

func (e statusErr) Error() string   { return "http error" }
func (e statusErr) HTTPStatus() int { return int(e) }

type fakeChecker struct {
	err error
	got *model.Credential
}

func (c *fakeChecker) Ping(_ context.Context, cred *model.Credential) error {
	c.got = cred
	return c.err
}

func TestRegisterAPIKey_Valid(t *testing.T) {
	store := &mockStore{}
	checker := &fakeChecker{}

	cred, err := RegisterAPIKey(context.Background(), checker, store, "  key_abc \n")
	require.NoError(t, err)
	require.Equal(t, "key_abc", cred.AccessToken)
	require.Equal(t, model.KeyTypeAPIKey, cred.KeyType)
	require.Empty(t, cred.RefreshToken)
	require.Equal(t, model.KeyTypeAPIKey, checker.got.KeyType)
	require.Equal(t, cred, store.saved)
}

func TestRegisterAPIKey_RejectedNotPersisted(t *testing.T) {
	store := &mockStore{}

	_, err := RegisterAPIKey(context.Background(), &fakeChecker{err: statusErr(401)}, store, "key_bad")
	require.ErrorIs(t, err, ErrInvalidKey)
	require.Nil(t, store.saved)
}

func TestRegisterAPIKey_NetworkErrorIsNotInvalidKey(t *testing.T) {
	store := &mockStore{}

	_, err := RegisterAPIKey(context.Background(), &fakeChecker{err: errors.New("dial tcp: refused")}, store, "key")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInvalidKey)
	require.Nil(t, store.saved)
}

func TestRegisterAPIKey_Empty(t *testing.T) {
	_, err := RegisterAPIKey(context.Background(), &fakeChecker{}, &mockStore{}, "   ")
	require.ErrorIs(t, err, ErrInvalidKey)
}
