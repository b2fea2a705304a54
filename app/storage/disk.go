// Package storage abstracts where media files live.
//
// Two drivers are available:
//   - "local": a directory on the local filesystem (MEDIA_ROOT)
//   - "s3":    an S3-compatible bucket (AWS S3, MinIO, R2)
//
// Paths are always slash separated and relative to the disk root, e.g.
// "images/chair.jpg".
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/mytheresa/go-shop-catalog/app/config"
)

// Disk is the filesystem driver interface.
type Disk interface {
	// Put writes content to path, creating parent directories as needed.
	// A reader of path never observes a partially written file.
	Put(ctx context.Context, path string, r io.Reader) error

	// Get returns a ReadCloser for the file. Caller must close it.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists reports whether a file exists at path.
	Exists(ctx context.Context, path string) (bool, error)

	// MakeDirectory creates directory (and any parents).
	MakeDirectory(ctx context.Context, path string) error

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL for path.
	URL(path string) string
}

// New builds the disk selected by cfg.StorageDisk.
func New(ctx context.Context, cfg config.Config) (Disk, error) {
	switch cfg.StorageDisk {
	case "local":
		return NewLocalDisk(cfg.MediaRoot, cfg.MediaURL), nil
	case "s3":
		return NewS3Disk(ctx, S3Options{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Key:      cfg.S3Key,
			Secret:   cfg.S3Secret,
			Endpoint: cfg.S3Endpoint,
			BaseURL:  cfg.S3URL,
		})
	default:
		return nil, fmt.Errorf("storage: unsupported disk %q (supported: local, s3)", cfg.StorageDisk)
	}
}
