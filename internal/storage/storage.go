// Package storage provides transient file staging and optional raw-upload
// archival. It defines the Storage interface (port) and implementations for
// local disk and S3-backed archival.
package storage

import (
	"context"
	"io"
)

// Storage defines the interface for transient staging of uploaded videos.
// Every request stages its payload to a uniquely named temp file so the
// provider client can read it from disk, and cleans it up afterwards.
type Storage interface {
	// SaveTemp saves data to a temporary file and returns the file path.
	// The name parameter is used as a hint for the filename.
	SaveTemp(ctx context.Context, name string, data io.Reader) (path string, err error)

	// LoadTemp reads a temporary file and returns a reader.
	// The caller is responsible for closing the returned ReadCloser.
	LoadTemp(ctx context.Context, path string) (io.ReadCloser, error)

	// CleanupTemp removes the specified temporary files.
	// It continues cleanup even if some files fail to delete.
	CleanupTemp(ctx context.Context, paths []string) error

	// ArchiveRaw uploads the raw video bytes to S3 under the given key and
	// returns the object URL. Returns ErrS3NotConfigured when no S3 backend
	// is configured.
	ArchiveRaw(ctx context.Context, key string, data io.Reader) (url string, err error)
}
