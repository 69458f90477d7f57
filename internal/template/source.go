package template

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultBranch is used when no branch is configured.
const DefaultBranch = "main"

// Source identifies the repository templates are fetched from. Every
// top-level directory of the repository is one template.
type Source struct {
	URL    string
	Owner  string
	Repo   string
	Branch string
}

// ParseSource splits a GitHub repository URL into its owner and name.
// Both https://github.com/owner/repo(.git) and owner/repo are accepted.
func ParseSource(repoURL, branch string) (Source, error) {
	if branch == "" {
		branch = DefaultBranch
	}
	raw := strings.TrimSpace(repoURL)
	path := raw
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return Source{}, fmt.Errorf("parse template repo %q: %w", repoURL, err)
		}
		path = u.Path
	} else {
		raw = "https://github.com/" + strings.TrimSuffix(raw, ".git")
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Source{}, fmt.Errorf("template repo %q: expected owner/repo", repoURL)
	}
	return Source{
		URL:    raw,
		Owner:  parts[0],
		Repo:   strings.TrimSuffix(parts[1], ".git"),
		Branch: branch,
	}, nil
}

func (s Source) String() string {
	return s.Owner + "/" + s.Repo + "@" + s.Branch
}
