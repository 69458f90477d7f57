package auth

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Providers lists the identity providers `orbiter login` accepts.
var Providers = []string{"github", "google"}

// Session is the token pair issued by the auth provider.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	User         *User  `json:"user,omitempty"`
}

// User is the identity behind a session.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type providerError struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
	Msg         string `json:"msg"`
	Message     string `json:"message"`
}

func (e *providerError) text(status string) string {
	for _, s := range []string{e.Description, e.Msg, e.Message, e.Error} {
		if s != "" {
			return s
		}
	}
	return status
}

// Client talks to the hosted identity provider: it builds authorize URLs,
// refreshes sessions, and resolves the user behind an access token.
type Client struct {
	http    *resty.Client
	baseURL string
}

// NewClient creates a provider client. anonKey is the public project key the
// provider expects on every request; it may be empty for self-hosted setups.
func NewClient(baseURL, anonKey string) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	hc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetHeader("Content-Type", "application/json")
	if anonKey != "" {
		hc.SetHeader("apikey", anonKey)
	}
	return &Client{http: hc, baseURL: baseURL}
}

// AuthorizeURL returns the address the browser is sent to. The provider
// redirects back to redirectTo with the session in the URL fragment.
func (c *Client) AuthorizeURL(provider, redirectTo string) (string, error) {
	if !slices.Contains(Providers, provider) {
		return "", fmt.Errorf("unsupported provider %q (want one of %s)", provider, strings.Join(Providers, ", "))
	}

	u, err := url.Parse(c.baseURL + "/auth/v1/authorize")
	if err != nil {
		return "", fmt.Errorf("parse auth url: %w", err)
	}
	q := u.Query()
	q.Set("provider", provider)
	q.Set("redirect_to", redirectTo)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Refresh exchanges a refresh token for a new session.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	var sess Session
	var perr providerError

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "refresh_token").
		SetBody(map[string]string{"refresh_token": refreshToken}).
		SetResult(&sess).
		SetError(&perr).
		Post("/auth/v1/token")
	if err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("refresh session: %s: %w", perr.text(resp.Status()), ErrProviderRejected)
	}
	if sess.AccessToken == "" {
		return nil, fmt.Errorf("refresh session: empty access token: %w", ErrProviderRejected)
	}
	return &sess, nil
}

// User returns the identity behind accessToken, which also proves the token
// is accepted by the provider.
func (c *Client) User(ctx context.Context, accessToken string) (*User, error) {
	var user User
	var perr providerError

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&user).
		SetError(&perr).
		Get("/auth/v1/user")
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("get user: %s: %w", perr.text(resp.Status()), ErrProviderRejected)
	}
	return &user, nil
}
