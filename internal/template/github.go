package template

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
)

// Remote downloads templates without git.
type Remote interface {
	Download(ctx context.Context, name, dest string) error
	List(ctx context.Context) ([]string, error)
}

// GitHubRemote walks the GitHub contents API of the template repository.
type GitHubRemote struct {
	gh     *gh.Client
	http   *http.Client
	source Source
	logger *slog.Logger
}

// NewGitHubRemote creates a remote with the following transport stack:
//  1. httpcache on disk under httpCacheDir (ETag conditional requests)
//  2. go-github-ratelimit (sleeps on secondary rate limits)
//  3. go-github, authenticated when token is set
//
// An empty httpCacheDir keeps the cache in memory.
func NewGitHubRemote(source Source, token, httpCacheDir string, logger *slog.Logger) *GitHubRemote {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	var cacheTransport *httpcache.Transport
	if httpCacheDir != "" {
		cacheTransport = httpcache.NewTransport(diskcache.New(httpCacheDir))
	} else {
		cacheTransport = httpcache.NewMemoryCacheTransport()
	}
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	rateLimitClient.Timeout = 2 * time.Minute

	client := gh.NewClient(rateLimitClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &GitHubRemote{gh: client, http: rateLimitClient, source: source, logger: logger}
}

// NewGitHubRemoteWithHTTPClient points the remote at baseURL. Tests use it
// with an httptest server.
func NewGitHubRemoteWithHTTPClient(httpClient *http.Client, baseURL string, source Source) (*GitHubRemote, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client := gh.NewClient(httpClient)
	client.BaseURL = u
	return &GitHubRemote{gh: client, http: httpClient, source: source, logger: slog.New(slog.DiscardHandler)}, nil
}

// List returns the top-level directory names of the repository.
func (r *GitHubRemote) List(ctx context.Context) ([]string, error) {
	entries, err := r.dir(ctx, "")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.GetType() == "dir" && !strings.HasPrefix(e.GetName(), ".") {
			names = append(names, e.GetName())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Download writes the contents of the template directory name into dest.
func (r *GitHubRemote) Download(ctx context.Context, name, dest string) error {
	return r.download(ctx, name, dest)
}

func (r *GitHubRemote) download(ctx context.Context, repoPath, dest string) error {
	entries, err := r.dir(ctx, repoPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	for _, e := range entries {
		target := filepath.Join(dest, filepath.FromSlash(e.GetName()))
		child := path.Join(repoPath, e.GetName())
		switch e.GetType() {
		case "dir":
			if err := r.download(ctx, child, target); err != nil {
				return err
			}
		case "file":
			if err := r.file(ctx, e.GetDownloadURL(), target); err != nil {
				return fmt.Errorf("download %s: %w", child, err)
			}
		default:
			r.logger.Debug("skipping template entry", "path", child, "type", e.GetType())
		}
	}
	return nil
}

func (r *GitHubRemote) dir(ctx context.Context, repoPath string) ([]*gh.RepositoryContent, error) {
	opts := &gh.RepositoryContentGetOptions{Ref: r.source.Branch}
	file, entries, resp, err := r.gh.Repositories.GetContents(ctx, r.source.Owner, r.source.Repo, repoPath, opts)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%s in %s: %w", displayPath(repoPath), r.source, ErrNotFound)
		}
		return nil, fmt.Errorf("listing %s in %s: %w", displayPath(repoPath), r.source, err)
	}
	logRateLimit(r.logger, resp, repoPath)
	if file != nil {
		return nil, fmt.Errorf("%s in %s is not a directory: %w", displayPath(repoPath), r.source, ErrNotFound)
	}
	return entries, nil
}

func (r *GitHubRemote) file(ctx context.Context, downloadURL, dest string) error {
	if downloadURL == "" {
		return errors.New("no download url")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return err
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func displayPath(p string) string {
	if p == "" {
		return "repository root"
	}
	return p
}

func logRateLimit(logger *slog.Logger, resp *gh.Response, repoPath string) {
	if resp == nil {
		return
	}
	logger.Debug("github api call",
		"path", repoPath,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)
	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 10 {
		logger.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}
