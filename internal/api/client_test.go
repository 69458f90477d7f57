package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/orbiterhost/orbiter-cli/internal/model"
)

func newTestClient(t *testing.T, cred *model.Credential, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClientWithHTTPClient(srv.Client(), srv.URL, cred)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestAPIKeyHeader(t *testing.T) {
	cred := &model.Credential{AccessToken: "k-123", KeyType: model.KeyTypeAPIKey}
	c := newTestClient(t, cred, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get(APIKeyHeader); got != "k-123" {
			t.Errorf("%s = %q, want k-123", APIKeyHeader, got)
		}
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want empty for api keys", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("X-Request-ID not set")
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": []any{}})
	})

	sites, err := c.ListSites(context.Background())
	if err != nil {
		t.Fatalf("ListSites: %v", err)
	}
	if len(sites) != 0 {
		t.Errorf("len(sites) = %d, want 0", len(sites))
	}
}

func TestBearerForOAuth(t *testing.T) {
	cred := &model.Credential{AccessToken: "jwt-abc", KeyType: model.KeyTypeOAuth}
	c := newTestClient(t, cred, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer jwt-abc" {
			t.Errorf("Authorization = %q, want Bearer jwt-abc", got)
		}
		if got := r.Header.Get(APIKeyHeader); got != "" {
			t.Errorf("%s = %q, want empty for oauth", APIKeyHeader, got)
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]string{
			{"id": "s1", "domain": "blog", "cid": "bafy1"},
		}})
	})

	sites, err := c.ListSites(context.Background())
	if err != nil {
		t.Fatalf("ListSites: %v", err)
	}
	if len(sites) != 1 || sites[0].ID != "s1" || sites[0].CID != "bafy1" {
		t.Errorf("sites = %+v", sites)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         any
		wantMsg      string
		unauthorized bool
	}{
		{"unauthorized", http.StatusUnauthorized, map[string]string{"message": "Invalid API key"}, "Invalid API key", true},
		{"forbidden", http.StatusForbidden, map[string]string{"error": "not your site"}, "not your site", true},
		{"server error", http.StatusInternalServerError, map[string]string{"message": "boom"}, "boom", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			err := c.DeleteSite(context.Background(), "s1")
			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *Error", err)
			}
			if apiErr.Status != tt.status {
				t.Errorf("Status = %d, want %d", apiErr.Status, tt.status)
			}
			if apiErr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.wantMsg)
			}
			if got := errors.Is(err, ErrUnauthorized); got != tt.unauthorized {
				t.Errorf("errors.Is(ErrUnauthorized) = %v, want %v", got, tt.unauthorized)
			}
		})
	}
}

func TestErrorPlainTextBody(t *testing.T) {
	c := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway sad", http.StatusBadGateway)
	})

	_, err := c.ListSites(context.Background())
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if apiErr.Message != "gateway sad" {
		t.Errorf("Message = %q, want gateway sad", apiErr.Message)
	}
}

func TestPingUsesGivenCredential(t *testing.T) {
	c := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sites" || r.Method != http.MethodGet {
			t.Errorf("request = %s %s, want GET /sites", r.Method, r.URL.Path)
		}
		if r.Header.Get(APIKeyHeader) != "good" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "nope"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": []any{}})
	})

	good := &model.Credential{AccessToken: "good", KeyType: model.KeyTypeAPIKey}
	if err := c.Ping(context.Background(), good); err != nil {
		t.Fatalf("Ping(good): %v", err)
	}

	bad := &model.Credential{AccessToken: "bad", KeyType: model.KeyTypeAPIKey}
	err := c.Ping(context.Background(), bad)
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.HTTPStatus() != http.StatusUnauthorized {
		t.Fatalf("Ping(bad) = %v, want 401 *Error", err)
	}
}
