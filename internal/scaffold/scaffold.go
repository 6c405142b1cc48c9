// Package scaffold creates the baseline data files of a workspace. Every
// operation is create-if-absent or a set union, so repeated runs converge.
package scaffold

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"wsetup-cli/internal/interfaces"
)

// IgnoreEntries are always present in the workspace .gitignore
var IgnoreEntries = []string{
	".venv/",
	".pythonrt/",
	"secrets.toml",
	"__pycache__/",
	".vscode/*.log",
}

// Scaffolder writes baseline files under a repository root
type Scaffolder struct {
	fs       afero.Fs
	root     string
	reporter interfaces.Reporter
}

// New creates a scaffolder rooted at root
func New(fs afero.Fs, root string, reporter interfaces.Reporter) *Scaffolder {
	return &Scaffolder{fs: fs, root: root, reporter: reporter}
}

// EnsureSecrets creates an empty secrets file if none exists
func (s *Scaffolder) EnsureSecrets(name string) error {
	path := filepath.Join(s.root, name)

	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", name, err)
	}
	if exists {
		s.reporter.Info("%s already exists; leaving it as-is.", name)
		return nil
	}

	if err := afero.WriteFile(s.fs, path, nil, 0600); err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	s.reporter.OK("Created empty %s", name)
	return nil
}

// CopyDefaultConfig copies src to dst (both relative to the root) unless dst
// already exists. A missing src is reported and skipped.
func (s *Scaffolder) CopyDefaultConfig(src, dst string) error {
	srcPath := filepath.Join(s.root, src)
	dstPath := filepath.Join(s.root, dst)

	info, err := s.fs.Stat(srcPath)
	if errors.Is(err, os.ErrNotExist) {
		s.reporter.Info("%s not found; skipping copy.", src)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", src, err)
	}

	exists, err := afero.Exists(s.fs, dstPath)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", dst, err)
	}
	if exists {
		s.reporter.Info("%s already exists; leaving it as-is.", dst)
		return nil
	}

	if err := copyFile(s.fs, srcPath, dstPath, info); err != nil {
		return err
	}
	s.reporter.OK("Copied %s → %s", src, dst)
	return nil
}

func copyFile(fs afero.Fs, src, dst string, info os.FileInfo) error {
	in, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}

	// Keep the source modification time like a metadata-preserving copy
	return fs.Chtimes(dst, info.ModTime(), info.ModTime())
}

// EnsureGitignore merges IgnoreEntries plus extra into .gitignore. Lines are
// trimmed, deduplicated and written sorted.
func (s *Scaffolder) EnsureGitignore(extra ...string) error {
	path := filepath.Join(s.root, ".gitignore")

	lines := map[string]bool{}
	data, err := afero.ReadFile(s.fs, path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read .gitignore: %w", err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		lines[strings.TrimSpace(line)] = true
	}
	for _, entry := range append(append([]string{}, IgnoreEntries...), extra...) {
		lines[entry] = true
	}

	var merged []string
	for line := range lines {
		if line != "" {
			merged = append(merged, line)
		}
	}
	sort.Strings(merged)

	content := strings.Join(merged, "\n") + "\n"
	if err := afero.WriteFile(s.fs, path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write .gitignore: %w", err)
	}
	s.reporter.OK("Ensured .gitignore has venv, portable runtime & secrets")
	return nil
}
