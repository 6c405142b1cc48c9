package python

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// ErrUnsafeArchive is returned for entries that would land outside the
// extraction directory.
var ErrUnsafeArchive = errors.New("archive entry escapes destination")

// Extract unpacks a .tar.gz/.tgz or .tar.zst archive into dest
func Extract(archive, dest string) error {
	f, err := os.Open(archive)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	var r io.Reader
	switch {
	case strings.HasSuffix(archive, ".tar.gz"), strings.HasSuffix(archive, ".tgz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to read gzip stream of %s: %w", filepath.Base(archive), err)
		}
		defer gz.Close()
		r = gz
	case strings.HasSuffix(archive, ".tar.zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to read zstd stream of %s: %w", filepath.Base(archive), err)
		}
		defer zr.Close()
		r = zr
	default:
		return fmt.Errorf("unsupported archive format: %s", filepath.Base(archive))
	}

	if err := os.MkdirAll(dest, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	return extractTar(tar.NewReader(r), dest)
}

func extractTar(tr *tar.Reader, dest string) error {
	root, err := filepath.EvalSymlinks(dest)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", dest, err)
	}

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read archive: %w", err)
		}

		target, err := within(root, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			dir, err := resolveWithin(root, target, hdr.Name)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create %s: %w", dir, err)
			}

		case tar.TypeReg:
			path, err := resolveEntry(root, target, hdr.Name)
			if err != nil {
				return err
			}
			if err := writeFile(tr, path, hdr.FileInfo().Mode().Perm()); err != nil {
				return err
			}

		case tar.TypeSymlink:
			if filepath.IsAbs(hdr.Linkname) {
				return fmt.Errorf("%w: %s -> %s", ErrUnsafeArchive, hdr.Name, hdr.Linkname)
			}
			path, err := resolveEntry(root, target, hdr.Name)
			if err != nil {
				return err
			}
			if !inside(root, filepath.Join(filepath.Dir(path), hdr.Linkname)) {
				return fmt.Errorf("%w: %s -> %s", ErrUnsafeArchive, hdr.Name, hdr.Linkname)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
			}
			_ = os.Remove(path)
			if err := os.Symlink(hdr.Linkname, path); err != nil {
				return fmt.Errorf("failed to link %s: %w", path, err)
			}

		case tar.TypeLink:
			linked, err := within(root, hdr.Linkname)
			if err != nil {
				return err
			}
			source, err := resolveEntry(root, linked, hdr.Linkname)
			if err != nil {
				return err
			}
			path, err := resolveEntry(root, target, hdr.Name)
			if err != nil {
				return err
			}
			_ = os.Remove(path)
			if err := os.Link(source, path); err != nil {
				return fmt.Errorf("failed to link %s: %w", path, err)
			}

		default:
			// Device nodes, fifos and pax headers carry nothing we need
		}
	}
}

func writeFile(r io.Reader, target string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(target), err)
	}

	// A symlink left at target by an earlier entry must not be followed
	if info, err := os.Lstat(target); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if err := os.Remove(target); err != nil {
			return fmt.Errorf("failed to replace %s: %w", target, err)
		}
	}

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode|0200)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return out.Close()
}

// within joins name onto dest and rejects results outside dest
func within(dest, name string) (string, error) {
	target := filepath.Join(dest, name)
	if !inside(dest, target) {
		return "", fmt.Errorf("%w: %s", ErrUnsafeArchive, name)
	}
	return target, nil
}

// inside reports whether the cleaned path is dest or below it
func inside(dest, path string) bool {
	rel, err := filepath.Rel(dest, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// resolveEntry resolves the directory holding target through the links
// already extracted and keeps the final name unresolved.
func resolveEntry(root, target, name string) (string, error) {
	dir, err := resolveWithin(root, filepath.Dir(target), name)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, filepath.Base(target)), nil
}

// resolveWithin evaluates the symlinks of the longest existing prefix of path
// and rejects the result when it leaves root. Missing components are appended
// as they are.
func resolveWithin(root, path, name string) (string, error) {
	existing, rest := path, ""
	for {
		resolved, err := filepath.EvalSymlinks(existing)
		if err == nil {
			existing = resolved
			break
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to resolve %s: %w", existing, err)
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return "", fmt.Errorf("%w: %s", ErrUnsafeArchive, name)
		}
		rest = filepath.Join(filepath.Base(existing), rest)
		existing = parent
	}

	full := filepath.Join(existing, rest)
	if !inside(root, full) {
		return "", fmt.Errorf("%w: %s", ErrUnsafeArchive, name)
	}
	return full, nil
}
