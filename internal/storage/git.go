package storage

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"vk-compliment-bot/pkg/logger"
)

const gitTimeout = 30 * time.Second

// Runner executes one external command in dir and returns its combined output.
type Runner func(ctx context.Context, dir string, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}

// GitSync commits the state file and pushes it to a remote after each save.
type GitSync struct {
	dir    string
	file   string
	remote string
	branch string
	run    Runner
}

func NewGitSync(path, remote, branch string) *GitSync {
	return &GitSync{
		dir:    filepath.Dir(path),
		file:   filepath.Base(path),
		remote: remote,
		branch: branch,
		run:    execRunner,
	}
}

func (g *GitSync) WithRunner(r Runner) *GitSync {
	g.run = r
	return g
}

func (g *GitSync) Sync(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, gitTimeout)
	defer cancel()

	if out, err := g.run(ctx, g.dir, "git", "add", g.file); err != nil {
		return fmt.Errorf("git add: %w: %s", err, strings.TrimSpace(string(out)))
	}

	out, err := g.run(ctx, g.dir, "git",
		"-c", "user.email=bot@example.com",
		"-c", "user.name=Bot",
		"commit", "-m", "Update "+g.file,
	)
	if err != nil {
		if bytes.Contains(out, []byte("nothing to commit")) || bytes.Contains(out, []byte("no changes added")) {
			logger.Debug("State unchanged, nothing to push")
			return nil
		}
		return fmt.Errorf("git commit: %w: %s", err, strings.TrimSpace(string(out)))
	}

	if out, err := g.run(ctx, g.dir, "git", "push", g.remote, g.branch); err != nil {
		return fmt.Errorf("git push: %w: %s", err, strings.TrimSpace(string(out)))
	}

	logger.Info("State pushed", logger.String("remote", g.remote), logger.String("branch", g.branch))
	return nil
}
