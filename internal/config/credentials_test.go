package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/orbiterhost/orbiter-cli/internal/model"
)

func newTestCredentialStore(t *testing.T) *CredentialStore {
	t.Helper()
	return NewCredentialStore(filepath.Join(t.TempDir(), ".orbiter"))
}

func TestCredentialStore_StoreAndLoad(t *testing.T) {
	s := newTestCredentialStore(t)
	ctx := context.Background()

	before := time.Now().UTC().Add(-time.Second)
	stored, err := s.Store(ctx, "access", "refresh", model.KeyTypeOAuth)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if stored.CreatedAt.Before(before) {
		t.Errorf("CreatedAt %v is earlier than expected", stored.CreatedAt)
	}

	got, ok := s.Load(ctx)
	if !ok {
		t.Fatal("Load reported absent after Store")
	}
	if got.AccessToken != "access" || got.RefreshToken != "refresh" {
		t.Errorf("tokens = %q/%q", got.AccessToken, got.RefreshToken)
	}
	if got.KeyType != model.KeyTypeOAuth {
		t.Errorf("KeyType = %q, want oauth", got.KeyType)
	}
	if !got.CreatedAt.Equal(stored.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, stored.CreatedAt)
	}
}

func TestCredentialStore_Overwrites(t *testing.T) {
	s := newTestCredentialStore(t)
	ctx := context.Background()

	if _, err := s.Store(ctx, "first", "r1", model.KeyTypeOAuth); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if _, err := s.Store(ctx, "second", "", model.KeyTypeAPIKey); err != nil {
		t.Fatalf("Store: %v", err)
	}

	got, ok := s.Load(ctx)
	if !ok {
		t.Fatal("Load reported absent")
	}
	if got.AccessToken != "second" || got.KeyType != model.KeyTypeAPIKey {
		t.Errorf("got %+v, want the second record", got)
	}
	if got.RefreshToken != "" {
		t.Errorf("API key record kept refresh token %q", got.RefreshToken)
	}
}

func TestCredentialStore_FileMode(t *testing.T) {
	s := newTestCredentialStore(t)
	if _, err := s.Store(context.Background(), "x", "", model.KeyTypeAPIKey); err != nil {
		t.Fatalf("Store: %v", err)
	}

	info, err := os.Stat(s.Path())
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file mode = %o, want 600", perm)
	}
}

func TestCredentialStore_FileFormat(t *testing.T) {
	s := newTestCredentialStore(t)
	if _, err := s.Store(context.Background(), "tok", "ref", model.KeyTypeOAuth); err != nil {
		t.Fatalf("Store: %v", err)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("credential file is not JSON: %v", err)
	}
	for _, key := range []string{"access_token", "refresh_token", "created_at", "key_type"} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
}

func TestCredentialStore_LoadMissing(t *testing.T) {
	s := newTestCredentialStore(t)
	if cred, ok := s.Load(context.Background()); ok || cred != nil {
		t.Errorf("Load on empty store = %+v, %v", cred, ok)
	}
}

func TestCredentialStore_LoadMalformedEqualsMissing(t *testing.T) {
	tests := map[string]string{
		"garbage":      "{not json",
		"empty object": "{}",
		"bad key type": `{"access_token":"x","created_at":"2025-01-01T00:00:00Z","key_type":"session"}`,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			s := newTestCredentialStore(t)
			if err := os.MkdirAll(filepath.Dir(s.Path()), 0700); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(s.Path(), []byte(content), 0600); err != nil {
				t.Fatal(err)
			}

			missing := newTestCredentialStore(t)
			gotCred, gotOK := s.Load(context.Background())
			wantCred, wantOK := missing.Load(context.Background())
			if gotOK != wantOK || gotCred != wantCred {
				t.Errorf("malformed load = %+v/%v, missing load = %+v/%v", gotCred, gotOK, wantCred, wantOK)
			}
		})
	}
}

func TestCredentialStore_SaveRejectsUnknownKeyType(t *testing.T) {
	s := newTestCredentialStore(t)
	err := s.Save(context.Background(), &model.Credential{AccessToken: "x", KeyType: "bogus"})
	if err == nil {
		t.Fatal("expected error for unknown key type")
	}
	if _, statErr := os.Stat(s.Path()); !os.IsNotExist(statErr) {
		t.Error("file should not be written for an invalid record")
	}
}
