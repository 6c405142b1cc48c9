// Package repo locates or clones the git repository that is being set up.
// Git is driven through its CLI; every invocation goes through the shared
// command runner so it is echoed and cancellable.
package repo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"wsetup-cli/internal/interfaces"
)

// ErrGitMissing is returned when git cannot be executed
var ErrGitMissing = errors.New("'git' not found on PATH")

// ErrNotFound is returned when no repository encloses the start directory
var ErrNotFound = errors.New("not inside a Git repository")

// Manager performs repository operations
type Manager struct {
	runner   interfaces.CommandRunner
	reporter interfaces.Reporter
}

// NewManager creates a repository manager
func NewManager(runner interfaces.CommandRunner, reporter interfaces.Reporter) *Manager {
	return &Manager{runner: runner, reporter: reporter}
}

// HaveGit reports whether `git --version` succeeds
func (m *Manager) HaveGit(ctx context.Context) bool {
	return m.runner.Probe(ctx, "git", "--version")
}

// Clone clones url into dest. A non-empty dest is left untouched and
// returned as-is.
func (m *Manager) Clone(ctx context.Context, url, dest string) (string, error) {
	if !m.HaveGit(ctx) {
		return "", ErrGitMissing
	}

	nonEmpty, err := isNonEmptyDir(dest)
	if err != nil {
		return "", err
	}
	if nonEmpty {
		m.reporter.Warn("Destination '%s' already exists and is not empty; skipping clone.", dest)
		return dest, nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("failed to create parent of %s: %w", dest, err)
	}

	if err := m.runner.Run(ctx, "", "git", "clone", url, dest); err != nil {
		return "", fmt.Errorf("failed to clone %s: %w", url, err)
	}
	return dest, nil
}

// DetectRoot walks up from start, at most depth directories, looking for a
// directory containing .git/.
func DetectRoot(start string, depth int) (string, error) {
	p, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", start, err)
	}
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		p = resolved
	}

	for i := 0; i < depth; i++ {
		if info, err := os.Stat(filepath.Join(p, ".git")); err == nil && info.IsDir() {
			return p, nil
		}
		parent := filepath.Dir(p)
		if parent == p {
			break
		}
		p = parent
	}
	return "", ErrNotFound
}

// NameFromURL derives a directory name from a clone URL
// (git@github.com:org/repo.git -> repo).
func NameFromURL(url string) string {
	name := strings.TrimRight(url, "/")
	if i := strings.LastIndexAny(name, "/:"); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, ".git")
}

// DefaultDest resolves the clone destination: dest when given, otherwise
// <cwd>/<repo name>.
func DefaultDest(cwd, url, dest string) (string, error) {
	if dest == "" {
		name := NameFromURL(url)
		if name == "" {
			return "", fmt.Errorf("cannot derive a directory name from %q; pass --dest", url)
		}
		dest = filepath.Join(cwd, name)
	} else if !filepath.IsAbs(dest) {
		dest = filepath.Join(cwd, dest)
	}
	return filepath.Abs(dest)
}

func isNonEmptyDir(path string) (bool, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s: %w", path, err)
	}
	defer f.Close()

	names, err := f.Readdirnames(1)
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to inspect %s: %w", path, err)
	}
	return len(names) > 0, nil
}
