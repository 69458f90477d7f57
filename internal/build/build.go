// Package build runs a project's build command before deployment.
package build

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// Runner executes build commands through the user's shell.
type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// Run executes command in dir. An empty command does nothing.
func (r *Runner) Run(ctx context.Context, dir, command string) error {
	command = strings.TrimSpace(command)
	if command == "" {
		return nil
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cmd := shellCommand(ctx, command)
	cmd.Dir = dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	cmd.Env = os.Environ()

	start := time.Now()
	logger.Debug("running build", "dir", dir, "command", command)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("build %q: %w", command, err)
	}
	logger.Debug("build finished", "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func shellCommand(ctx context.Context, command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", command)
	}
	return exec.CommandContext(ctx, "sh", "-c", command)
}
