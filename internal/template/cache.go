// Package template fetches project templates into a local cache and
// scaffolds new projects from them.
package template

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/natefinch/atomic"

	"github.com/orbiterhost/orbiter-cli/internal/model"
)

// MetaFile is the sidecar written inside every cached template.
const MetaFile = ".orbiter-template.json"

// DefaultMaxAge is how long a cached template is served without refetching.
const DefaultMaxAge = 24 * time.Hour

// ErrNotFound is returned when the template does not exist in the source.
var ErrNotFound = errors.New("template not found")

// FetchError reports that neither fetch path produced the template.
type FetchError struct {
	Name      string
	Available []string
	Err       error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch template %q: %v", e.Name, e.Err)
	if len(e.Available) > 0 {
		msg += "; available templates: " + strings.Join(e.Available, ", ")
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Err }

// Cache keeps fetched templates under Dir, one directory per template.
type Cache struct {
	Dir    string
	Source Source
	MaxAge time.Duration
	Clock  clockwork.Clock
	Cloner Cloner
	Remote Remote
	Logger *slog.Logger
}

func (c *Cache) clock() clockwork.Clock {
	if c.Clock == nil {
		return clockwork.NewRealClock()
	}
	return c.Clock
}

func (c *Cache) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

func (c *Cache) maxAge() time.Duration {
	if c.MaxAge <= 0 {
		return DefaultMaxAge
	}
	return c.MaxAge
}

// Fetch returns the local path of template name, downloading it when the
// cached copy is missing or older than MaxAge. A shallow git clone is tried
// first and the GitHub contents API second.
func (c *Cache) Fetch(ctx context.Context, name string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	dest := filepath.Join(c.Dir, name)
	logger := c.logger().With("template", name)

	if meta, ok := readMeta(dest); ok {
		age := c.clock().Since(meta.FetchedAt)
		if age <= c.maxAge() {
			logger.Debug("using cached template", "age", age.Round(time.Second))
			return dest, nil
		}
		logger.Debug("cached template is stale", "age", age.Round(time.Second))
	}

	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create template cache: %w", err)
	}

	cloneErr := c.viaClone(ctx, name, dest)
	if cloneErr == nil {
		return dest, c.writeMeta(dest, name)
	}
	logger.Debug("clone failed, falling back to contents api", "error", cloneErr)

	if c.Remote == nil {
		return "", c.fetchError(ctx, name, cloneErr)
	}
	apiErr := c.viaRemote(ctx, name, dest)
	if apiErr == nil {
		return dest, c.writeMeta(dest, name)
	}
	return "", c.fetchError(ctx, name, errors.Join(cloneErr, apiErr))
}

func (c *Cache) viaClone(ctx context.Context, name, dest string) error {
	if c.Cloner == nil {
		return errors.New("no cloner configured")
	}
	tmp, err := os.MkdirTemp("", "orbiter-templates-")
	if err != nil {
		return fmt.Errorf("create clone dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	repo := filepath.Join(tmp, "repo")
	if err := c.Cloner.Clone(ctx, c.Source.URL, c.Source.Branch, repo); err != nil {
		return err
	}
	src := filepath.Join(repo, name)
	if info, err := os.Stat(src); err != nil || !info.IsDir() {
		return fmt.Errorf("%s in %s: %w", name, c.Source, ErrNotFound)
	}
	return c.replace(dest, func(staging string) error {
		return copyTree(src, staging, nil)
	})
}

func (c *Cache) viaRemote(ctx context.Context, name, dest string) error {
	return c.replace(dest, func(staging string) error {
		return c.Remote.Download(ctx, name, staging)
	})
}

// replace fills a staging directory next to dest and swaps it into place,
// leaving any previous copy untouched on failure.
func (c *Cache) replace(dest string, fill func(staging string) error) error {
	staging, err := os.MkdirTemp(c.Dir, ".staging-")
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := fill(staging); err != nil {
		return err
	}
	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("remove old template: %w", err)
	}
	if err := os.Rename(staging, dest); err != nil {
		return fmt.Errorf("move template into cache: %w", err)
	}
	return nil
}

func (c *Cache) writeMeta(dest, name string) error {
	meta := model.TemplateMeta{
		FetchedAt:    c.clock().Now().UTC(),
		TemplateName: name,
		Source:       c.Source.URL,
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode template metadata: %w", err)
	}
	if err := atomic.WriteFile(filepath.Join(dest, MetaFile), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write template metadata: %w", err)
	}
	return nil
}

func (c *Cache) fetchError(ctx context.Context, name string, err error) error {
	available, listErr := c.List(ctx)
	if listErr != nil {
		c.logger().Debug("listing templates failed", "error", listErr)
	}
	return &FetchError{Name: name, Available: available, Err: err}
}

// List returns the names of available templates. The source repository is
// asked first; when it cannot be reached the cached templates are listed.
func (c *Cache) List(ctx context.Context) ([]string, error) {
	if c.Remote != nil {
		names, err := c.Remote.List(ctx)
		if err == nil {
			return names, nil
		}
		c.logger().Debug("remote template listing failed", "error", err)
	}
	return c.cached()
}

func (c *Cache) cached() ([]string, error) {
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read template cache: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func readMeta(dir string) (*model.TemplateMeta, bool) {
	data, err := os.ReadFile(filepath.Join(dir, MetaFile))
	if err != nil {
		return nil, false
	}
	var meta model.TemplateMeta
	if err := json.Unmarshal(data, &meta); err != nil || meta.FetchedAt.IsZero() {
		return nil, false
	}
	return &meta, true
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid template name %q", name)
	}
	return nil
}
