package model

import "time"

// Site is a hosted site as returned by the Orbiter API.
type Site struct {
	ID           string    `json:"id"`
	Domain       string    `json:"domain"`
	CID          string    `json:"cid"`
	CustomDomain string    `json:"custom_domain,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// URL returns the public address of the site under the given base domain.
// A custom domain takes precedence when one is configured.
func (s *Site) URL(baseDomain string) string {
	if s.CustomDomain != "" {
		return "https://" + s.CustomDomain
	}
	return "https://" + s.Domain + "." + baseDomain
}

// Version is one deployed revision of a site, identified by its content CID.
type Version struct {
	ID        string    `json:"id"`
	SiteID    string    `json:"site_id"`
	CID       string    `json:"cid"`
	CreatedAt time.Time `json:"created_at"`
}

// Function is a server function deployment attached to a site.
type Function struct {
	SiteID    string    `json:"site_id"`
	CID       string    `json:"cid"`
	Runtime   string    `json:"runtime"`
	EntryPath string    `json:"entry_path"`
	CreatedAt time.Time `json:"created_at"`
}

// DefaultBaseDomain is the domain hosted sites are served under.
const DefaultBaseDomain = "orbiter.website"
