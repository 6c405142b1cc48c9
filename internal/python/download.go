package python

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-resty/resty/v2"
)

// HTTPDownloader implements Downloader with a resty client
type HTTPDownloader struct {
	*resty.Client
}

// NewHTTPDownloader creates a downloader that follows release-asset redirects
func NewHTTPDownloader() *HTTPDownloader {
	client := resty.New().
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10)).
		SetHeader("User-Agent", "wsetup")
	return &HTTPDownloader{Client: client}
}

// Download streams the body of url into dest
func (d *HTTPDownloader) Download(ctx context.Context, url string, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(dest), err)
	}

	resp, err := d.R().
		SetContext(ctx).
		SetOutput(dest).
		Get(url)
	if err != nil {
		_ = os.Remove(dest)
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	if resp.IsError() {
		_ = os.Remove(dest)
		return fmt.Errorf("failed to download %s: HTTP %s", url, resp.Status())
	}
	return nil
}

// Fetch returns the body of url
func (d *HTTPDownloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := d.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to fetch %s: HTTP %s", url, resp.Status())
	}
	return resp.Body(), nil
}

// fileSHA256 returns the hex SHA-256 digest of the file at path
func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// parseChecksum takes the digest from a "<hex>  <file>" or bare "<hex>" body
func parseChecksum(body []byte) (string, error) {
	fields := strings.Fields(string(body))
	if len(fields) == 0 {
		return "", fmt.Errorf("empty checksum file")
	}
	digest := strings.ToLower(fields[0])
	if _, err := hex.DecodeString(digest); err != nil || len(digest) != sha256.Size*2 {
		return "", fmt.Errorf("malformed checksum %q", fields[0])
	}
	return digest, nil
}
