// Package storage abstracts where uploaded binaries live. The metadata
// rows in the database always reference a storage key; the backend is
// either the local filesystem or an S3-compatible bucket.
package storage

import (
	"context"
	"io"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/spf13/viper"
)

const keyCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type Storage interface {
	// Save stores the full contents of r under key. Implementations must
	// never leave a partial object visible under key: either the complete
	// binary exists afterwards, or nothing does.
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Exists reports whether a complete binary is present under key.
	Exists(ctx context.Context, key string) (bool, error)

	// Open returns the binary, its size and content type for serving.
	Open(ctx context.Context, key string) (io.ReadCloser, int64, string, error)

	// Delete removes the binary. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// ServeURL returns a URL clients can be redirected to when the
	// backend serves binaries itself, and false when the API must stream
	// the object.
	ServeURL(ctx context.Context, key string) (string, bool)
}

// NewKey generates a fresh storage key with the file's extension attached.
func NewKey(ext string) (string, error) {
	id, err := gonanoid.Generate(keyCharset, 16)
	if err != nil {
		return "", err
	}
	return id + ext, nil
}

// New picks the backend from the storage.type config key.
func New() (Storage, error) {
	if viper.GetString("storage.type") == "s3" {
		return NewS3()
	}
	return NewLocal(viper.GetString("storage.path"))
}
