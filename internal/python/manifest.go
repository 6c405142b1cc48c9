package python

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// nameTerminators end the project name in a requirement line
var nameTerminators = []string{"===", "==", ">=", "<=", "!=", "~=", ">", "<", "[", "@", " ", "\t"}

// skippedDirs are never searched for nested manifests
var skippedDirs = map[string]bool{
	".git":         true,
	".venv":        true,
	".pythonrt":    true,
	"node_modules": true,
	"__pycache__":  true,
}

// ParseRequirements returns the normalized project names declared in a
// requirements file. Comments, blank lines and pip options are ignored.
func ParseRequirements(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if name := RequirementName(scanner.Text()); name != "" {
			names = append(names, name)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read requirements: %w", err)
	}
	return names, nil
}

// RequirementName extracts the normalized project name from one
// requirements line ("NumPy[extra]>=1.26 ; python_version>'3'" -> "numpy").
func RequirementName(line string) string {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
		return ""
	}

	// Environment markers and trailing comments
	if i := strings.Index(line, ";"); i >= 0 {
		line = line[:i]
	}
	if i := strings.Index(line, " #"); i >= 0 {
		line = line[:i]
	}

	name := line
	for _, term := range nameTerminators {
		if i := strings.Index(name, term); i >= 0 {
			name = name[:i]
		}
	}

	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, "_", "-")
}

// HasHeavy reports whether any manifest declares one of heavy. Unreadable or
// missing manifests count as declaring nothing.
func HasHeavy(manifests []string, heavy []string) bool {
	wanted := make(map[string]bool, len(heavy))
	for _, h := range heavy {
		wanted[strings.ReplaceAll(strings.ToLower(h), "_", "-")] = true
	}

	for _, path := range manifests {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		names, err := ParseRequirements(f)
		f.Close()
		if err != nil {
			continue
		}
		for _, name := range names {
			if wanted[name] {
				return true
			}
		}
	}
	return false
}

// FindManifests returns the manifest at root/name when it exists and, when
// recursive is set, every file called filepath.Base(name) below root. The
// root manifest comes first; nested ones follow in lexical order.
func FindManifests(root, name string, recursive bool) ([]string, error) {
	var found []string

	top := filepath.Join(root, name)
	if info, err := os.Stat(top); err == nil && !info.IsDir() {
		found = append(found, top)
	}
	if !recursive {
		return found, nil
	}

	base := filepath.Base(name)
	var nested []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			if path != root && skippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == base && path != top {
			nested = append(nested, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search %s for %s: %w", root, base, err)
	}

	sort.Strings(nested)
	return append(found, nested...), nil
}
