package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuthorizeURL(t *testing.T) {
	c := NewClient("https://auth.example.test/", "anon")

	raw, err := c.AuthorizeURL("github", "http://localhost:54321/auth")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "/auth/v1/authorize", u.Path)
	require.Equal(t, "github", u.Query().Get("provider"))
	require.Equal(t, "http://localhost:54321/auth", u.Query().Get("redirect_to"))
}

func TestRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/v1/token", r.URL.Path)
		require.Equal(t, "refresh_token", r.URL.Query().Get("grant_type"))
		require.Equal(t, "anon", r.Header.Get("apikey"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["refresh_token"] != "good" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid Refresh Token"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"new-access","refresh_token":"new-refresh","expires_in":3600,"token_type":"bearer"}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "anon")

	sess, err := c.Refresh(context.Background(), "good")
	require.NoError(t, err)
	require.Equal(t, "new-access", sess.AccessToken)
	require.Equal(t, "new-refresh", sess.RefreshToken)

	_, err = c.Refresh(context.Background(), "bad")
	require.ErrorIs(t, err, ErrProviderRejected)
	require.Contains(t, err.Error(), "Invalid Refresh Token")
}

func TestUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") != "Bearer token-1" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"msg":"invalid JWT"}`))
			return
		}
		w.Write([]byte(`{"id":"u1","email":"dev@example.com"}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "")

	user, err := c.User(context.Background(), "token-1")
	require.NoError(t, err)
	require.Equal(t, "dev@example.com", user.Email)

	_, err = c.User(context.Background(), "token-2")
	require.ErrorIs(t, err, ErrProviderRejected)
	require.Contains(t, err.Error(), "invalid JWT")
}
