package python

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"wsetup-cli/internal/interfaces"
	"wsetup-cli/internal/logger"
)

// ErrPortableMissing is returned when an extracted archive does not contain
// the interpreter at the expected location.
var ErrPortableMissing = errors.New("portable Python extraction did not produce an executable at expected path")

// ErrDownloadFailed wraps transport and extraction failures of a portable runtime
var ErrDownloadFailed = errors.New("portable runtime download failed")

// ErrChecksumMismatch is returned when a downloaded archive does not match
// its published digest.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// Portable provisions project-local CPython builds from python-build-standalone
type Portable struct {
	downloader interfaces.Downloader
	reporter   interfaces.Reporter
	log        *logger.Logger

	BaseURL        string
	Tag            string
	VerifyChecksum bool
	GOOS           string
	GOARCH         string
}

// URL returns the install_only archive URL for a full version (3.11.9)
func (p *Portable) URL(version string) string {
	return fmt.Sprintf("%s/%s/cpython-%s+%s-%s.tar.gz",
		p.BaseURL, p.Tag, version, p.Tag, PlatformTag(p.GOOS, p.GOARCH))
}

// Ensure returns the interpreter under runtimeDir/<major.minor>/, downloading
// and extracting the archive when it is not there yet.
func (p *Portable) Ensure(ctx context.Context, runtimeDir, version string) (string, error) {
	majorMinor, err := MajorMinor(version)
	if err != nil {
		return "", err
	}
	runtimeRoot := filepath.Join(runtimeDir, majorMinor)
	candidate := PortableExecutable(runtimeRoot, p.GOOS)

	if _, err := os.Stat(candidate); err == nil {
		p.log.Debug().Str("path", candidate).Msg("portable runtime already extracted")
		return candidate, nil
	}

	url := p.URL(version)
	archive := filepath.Join(runtimeDir, fmt.Sprintf("cpython-%s.tar.gz", version))

	p.reporter.Info("↓ Downloading %s", url)
	if err := p.downloader.Download(ctx, url, archive); err != nil {
		return "", fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	defer func() {
		if err := os.Remove(archive); err != nil && !errors.Is(err, os.ErrNotExist) {
			p.log.Debug().Err(err).Str("archive", archive).Msg("failed to remove archive")
		}
	}()

	if p.VerifyChecksum {
		if err := p.verify(ctx, url, archive); err != nil {
			return "", err
		}
	}

	p.reporter.Info("⇪ Extracting %s → %s", filepath.Base(archive), runtimeRoot)
	if err := Extract(archive, runtimeRoot); err != nil {
		return "", fmt.Errorf("%w: extracting %s: %w", ErrDownloadFailed, filepath.Base(archive), err)
	}

	if _, err := os.Stat(candidate); err != nil {
		return "", fmt.Errorf("%w (%s)", ErrPortableMissing, candidate)
	}
	return candidate, nil
}

func (p *Portable) verify(ctx context.Context, url, archive string) error {
	body, err := p.downloader.Fetch(ctx, url+".sha256")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	want, err := parseChecksum(body)
	if err != nil {
		return fmt.Errorf("failed to parse checksum for %s: %w", url, err)
	}
	got, err := fileSHA256(archive)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w for %s: got %s, want %s", ErrChecksumMismatch, filepath.Base(archive), got, want)
	}
	p.log.Debug().Str("sha256", got).Msg("archive checksum verified")
	return nil
}
