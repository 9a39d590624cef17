// Package storage provides interfaces and implementations for object storage.
// Supported backends: Amazon S3 (and S3-compatible services) and the local
// filesystem for development.
package storage

import (
	"bytes"
	"context"
	"io"
	"time"
)

// FileInfo contains metadata about a stored object.
type FileInfo struct {
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// Storage defines the interface for object storage operations.
type Storage interface {
	// Upload writes data from reader to the given path with the given
	// content type. An empty content type is allowed.
	Upload(ctx context.Context, path string, reader io.Reader, contentType string) error

	// Download returns a reader for the object at the given path.
	// The caller is responsible for closing the returned ReadCloser.
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the object at the given path.
	// Returns nil if the object does not exist.
	Delete(ctx context.Context, path string) error

	// Exists checks whether an object exists at the given path.
	Exists(ctx context.Context, path string) (bool, error)

	// List returns metadata for all objects whose path starts with prefix.
	List(ctx context.Context, prefix string) ([]FileInfo, error)
}

// UploadBytes stores data at the given path.
func UploadBytes(ctx context.Context, s Storage, path string, data []byte, contentType string) error {
	return s.Upload(ctx, path, bytes.NewReader(data), contentType)
}

// DownloadBytes retrieves the full object at the given path.
func DownloadBytes(ctx context.Context, s Storage, path string) ([]byte, error) {
	rc, err := s.Download(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
