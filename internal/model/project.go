package model

// ProjectConfig is the per-project deployment file (orbiter.json). Static
// sites use Domain/BuildCommand/BuildDir; server deployments additionally set
// EntryPath and Runtime and always carry a SiteID.
type ProjectConfig struct {
	SiteID       string `json:"siteId,omitempty"`
	Domain       string `json:"domain,omitempty"`
	BuildCommand string `json:"buildCommand"`
	BuildDir     string `json:"buildDir"`
	EntryPath    string `json:"entryPath,omitempty"`
	Runtime      string `json:"runtime,omitempty"`
}

// IsServer reports whether the project deploys a server function rather
// than a static site.
func (p *ProjectConfig) IsServer() bool {
	return p.EntryPath != ""
}

// DefaultRuntime is used for server deployments that do not name one.
const DefaultRuntime = "nodejs"
