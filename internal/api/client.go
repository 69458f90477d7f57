// Package api is the client for the Orbiter hosted sites REST API.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/orbiterhost/orbiter-cli/internal/model"
	"github.com/orbiterhost/orbiter-cli/internal/server/middleware"
)

// APIKeyHeader carries static API keys; OAuth tokens use Authorization.
const APIKeyHeader = "X-Orbiter-API-Key"

// ErrUnauthorized matches any 401 or 403 answer.
var ErrUnauthorized = errors.New("unauthorized")

// Error is a non-2xx answer from the API. Message is the server's text,
// verbatim when it sent one.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// HTTPStatus returns the response status code.
func (e *Error) HTTPStatus() int {
	return e.Status
}

// Is lets errors.Is(err, ErrUnauthorized) match auth failures.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && (e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden)
}

// Client calls the hosted API on behalf of a single credential.
type Client struct {
	http   *resty.Client
	cred   *model.Credential
	logger *slog.Logger
}

// NewClient creates a client for baseURL. cred may be nil for calls that
// pass their own credential (Ping).
func NewClient(baseURL string, cred *model.Credential, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	hc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(60*time.Second).
		SetHeader("Accept", "application/json")
	return newClient(hc, cred, logger)
}

// NewClientWithHTTPClient creates a Client on top of an existing http.Client.
// Tests use it to point at an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string, cred *model.Credential) *Client {
	hc := resty.NewWithClient(httpClient).SetBaseURL(strings.TrimRight(baseURL, "/"))
	return newClient(hc, cred, slog.New(slog.DiscardHandler))
}

func newClient(hc *resty.Client, cred *model.Credential, logger *slog.Logger) *Client {
	c := &Client{http: hc, cred: cred, logger: logger}
	hc.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		req.SetHeader(middleware.RequestIDHeader, middleware.NewID())
		return nil
	})
	hc.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		c.logger.Debug("api request",
			"method", resp.Request.Method,
			"url", resp.Request.URL,
			"status", resp.StatusCode(),
			"duration_ms", resp.Time().Milliseconds(),
			"request_id", resp.Request.Header.Get(middleware.RequestIDHeader),
		)
		return nil
	})
	return c
}

// Authorize sets the credential headers on req.
func Authorize(req *resty.Request, cred *model.Credential) *resty.Request {
	if cred == nil {
		return req
	}
	if cred.IsAPIKey() {
		return req.SetHeader(APIKeyHeader, cred.AccessToken)
	}
	return req.SetAuthToken(cred.AccessToken)
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return Authorize(c.http.R().SetContext(ctx), c.cred)
}

// do runs the request and decodes {data: ...} into out when out is non-nil.
func do[T any](req *resty.Request, method, path string, out *T) error {
	var env model.DataResponse[T]
	var apiErr model.ErrorResponse

	req.SetError(&apiErr)
	if out != nil {
		req.SetResult(&env)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		msg := apiErr.Text()
		if msg == "" {
			msg = strings.TrimSpace(resp.String())
		}
		if msg == "" {
			msg = resp.Status()
		}
		return &Error{Status: resp.StatusCode(), Message: msg}
	}
	if out != nil {
		*out = env.Data
	}
	return nil
}

// Ping performs the cheapest authenticated read with cred. It is used to
// validate API keys before they are stored.
func (c *Client) Ping(ctx context.Context, cred *model.Credential) error {
	req := Authorize(c.http.R().SetContext(ctx), cred)
	return do[struct{}](req, http.MethodGet, "/sites", nil)
}
