package config

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"

	"github.com/orbiterhost/orbiter-cli/internal/model"
)

// CredentialsFile is the name of the credential record inside the data dir.
const CredentialsFile = "credentials.json"

// CredentialStore persists the single credential record as a JSON file.
// There is no file locking; concurrent CLI invocations may race.
type CredentialStore struct {
	path string
}

// NewCredentialStore returns a store rooted at dataDir. The directory is
// created lazily on the first write.
func NewCredentialStore(dataDir string) *CredentialStore {
	return &CredentialStore{path: filepath.Join(dataDir, CredentialsFile)}
}

// Path returns the location of the credential file.
func (s *CredentialStore) Path() string {
	return s.path
}

// Store overwrites the record with a new credential issued now.
func (s *CredentialStore) Store(ctx context.Context, accessToken, refreshToken string, keyType model.KeyType) (*model.Credential, error) {
	cred := &model.Credential{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		CreatedAt:    time.Now().UTC(),
		KeyType:      keyType,
	}
	if err := s.Save(ctx, cred); err != nil {
		return nil, err
	}
	return cred, nil
}

// Save writes cred as-is, replacing any previous record.
func (s *CredentialStore) Save(_ context.Context, cred *model.Credential) error {
	if !cred.KeyType.Valid() {
		return fmt.Errorf("invalid key type %q", cred.KeyType)
	}
	if cred.KeyType == model.KeyTypeAPIKey {
		cred.RefreshToken = ""
	}

	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return os.Chmod(s.path, 0600)
}

// Load returns the stored record. A missing, unreadable, or malformed file
// all report false: the caller treats them the same as never having logged in.
func (s *CredentialStore) Load(_ context.Context) (*model.Credential, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, false
	}

	var cred model.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, false
	}
	if cred.AccessToken == "" || !cred.KeyType.Valid() {
		return nil, false
	}
	return &cred, true
}
