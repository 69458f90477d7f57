package template

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Cloner makes a shallow copy of a single branch of a repository.
type Cloner interface {
	Clone(ctx context.Context, url, branch, dest string) error
}

// GitCloner shells out to the git binary.
type GitCloner struct {
	Logger *slog.Logger
}

// Clone runs a depth-1, single-branch, tag-less clone of url into dest.
func (g *GitCloner) Clone(ctx context.Context, url, branch, dest string) error {
	if _, err := exec.LookPath("git"); err != nil {
		return fmt.Errorf("git clone: %w", err)
	}

	args := []string{"clone", "--depth", "1", "--single-branch", "--no-tags", "--branch", branch, url, dest}
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Env = append(cmd.Environ(), "GIT_TERMINAL_PROMPT=0")

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if g.Logger != nil {
		g.Logger.Debug("cloning templates", "url", url, "branch", branch)
	}
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("git clone %s: %w: %s", url, err, msg)
		}
		return fmt.Errorf("git clone %s: %w", url, err)
	}
	return nil
}
