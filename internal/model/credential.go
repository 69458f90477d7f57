package model

import "time"

// KeyType identifies how a credential was obtained.
type KeyType string

const (
	KeyTypeOAuth  KeyType = "oauth"
	KeyTypeAPIKey KeyType = "apikey"
)

// Valid reports whether k is one of the known key types.
func (k KeyType) Valid() bool {
	return k == KeyTypeOAuth || k == KeyTypeAPIKey
}

// Credential is the locally persisted record used to authenticate against
// the Orbiter API. Only one record exists at a time; every login or key
// registration replaces it.
type Credential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"` // empty for API keys
	CreatedAt    time.Time `json:"created_at"`
	KeyType      KeyType   `json:"key_type"`
}

// Age returns how long ago the credential was issued relative to now.
func (c *Credential) Age(now time.Time) time.Duration {
	return now.Sub(c.CreatedAt)
}

// IsAPIKey reports whether the credential is a static API key.
func (c *Credential) IsAPIKey() bool {
	return c.KeyType == KeyTypeAPIKey
}
