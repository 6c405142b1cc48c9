package interfaces

import "context"

// Downloader fetches remote files
type Downloader interface {
	// Download writes the body of url to dest, creating parent directories
	Download(ctx context.Context, url string, dest string) error

	// Fetch returns the body of url
	Fetch(ctx context.Context, url string) ([]byte, error)
}
