package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/orbiterhost/orbiter-cli/internal/config"
)

type fakeProvider struct {
	userErr  error
	gotToken string
}

func (p *fakeProvider) AuthorizeURL(provider, redirectTo string) (string, error) {
	return "https://auth.example.test/authorize?provider=" + provider + "&redirect_to=" + url.QueryEscape(redirectTo), nil
}

func (p *fakeProvider) User(_ context.Context, accessToken string) (*User, error) {
	p.gotToken = accessToken
	if p.userErr != nil {
		return nil, p.userErr
	}
	return &User{ID: "u1", Email: "dev@example.com"}, nil
}

// redirectBrowser plays the browser: it follows the authorize URL straight
// to the callback endpoint with the given query.
func redirectBrowser(t *testing.T, query string) func(string) error {
	return func(authURL string) error {
		u, err := url.Parse(authURL)
		require.NoError(t, err)
		redirect, err := url.Parse(u.Query().Get("redirect_to"))
		require.NoError(t, err)

		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%s/callback?%s", redirect.Port(), query))
		require.NoError(t, err)
		resp.Body.Close()
		return nil
	}
}

func TestLoginFlow_StoresOAuthCredential(t *testing.T) {
	store := config.NewCredentialStore(filepath.Join(t.TempDir(), ".orbiter"))
	provider := &fakeProvider{}

	flow := &LoginFlow{
		Provider:    provider,
		Store:       store,
		Port:        0,
		Timeout:     5 * time.Second,
		OpenBrowser: redirectBrowser(t, "access_token=acc&refresh_token=ref&expires_in=3600&token_type=bearer"),
	}

	cred, err := flow.Run(context.Background(), "github")
	require.NoError(t, err)
	require.Equal(t, "acc", cred.AccessToken)
	require.Equal(t, "acc", provider.gotToken)

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	var onDisk map[string]any
	require.NoError(t, json.Unmarshal(data, &onDisk))
	require.Equal(t, "oauth", onDisk["key_type"])
	require.Equal(t, "acc", onDisk["access_token"])
	require.Equal(t, "ref", onDisk["refresh_token"])
}

func TestLoginFlow_ProviderError(t *testing.T) {
	store := config.NewCredentialStore(filepath.Join(t.TempDir(), ".orbiter"))

	flow := &LoginFlow{
		Provider:    &fakeProvider{},
		Store:       store,
		Timeout:     5 * time.Second,
		OpenBrowser: redirectBrowser(t, "error=access_denied&error_description=User+denied"),
	}

	_, err := flow.Run(context.Background(), "google")
	require.ErrorIs(t, err, ErrLoginFailed)
	require.Contains(t, err.Error(), "User denied")

	_, ok := store.Load(context.Background())
	require.False(t, ok)
}

func TestLoginFlow_SessionRejected(t *testing.T) {
	store := config.NewCredentialStore(filepath.Join(t.TempDir(), ".orbiter"))

	flow := &LoginFlow{
		Provider:    &fakeProvider{userErr: ErrProviderRejected},
		Store:       store,
		Timeout:     5 * time.Second,
		OpenBrowser: redirectBrowser(t, "access_token=acc&refresh_token=ref"),
	}

	_, err := flow.Run(context.Background(), "github")
	require.ErrorIs(t, err, ErrProviderRejected)

	_, ok := store.Load(context.Background())
	require.False(t, ok)
}

func TestLoginFlow_Timeout(t *testing.T) {
	clock := clockwork.NewFakeClock()
	flow := &LoginFlow{
		Provider:    &fakeProvider{},
		Store:       config.NewCredentialStore(t.TempDir()),
		Timeout:     60 * time.Second,
		OpenBrowser: func(string) error { return errors.New("no browser") },
		Clock:       clock,
	}

	errCh := make(chan error, 1)
	go func() {
		_, err := flow.Run(context.Background(), "github")
		errCh <- err
	}()

	clock.BlockUntil(1)
	clock.Advance(61 * time.Second)

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, ErrLoginTimeout)
	case <-time.After(5 * time.Second):
		t.Fatal("login flow did not time out")
	}
}

func TestLoginFlow_UnsupportedProvider(t *testing.T) {
	flow := &LoginFlow{
		Provider: NewClient("https://auth.example.test", ""),
		Store:    config.NewCredentialStore(t.TempDir()),
	}
	_, err := flow.Run(context.Background(), "myspace")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported provider")
}
