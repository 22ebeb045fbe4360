package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
)

// Local stores binaries as plain files under a single directory. Keys are
// generated server-side, so they never contain path separators, but the
// filepath is still pinned to the root as a guard.
type Local struct {
	root string
}

func NewLocal(root string) (*Local, error) {
	if root == "" {
		root = "uploads"
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory, %w", err)
	}

	return &Local{root: root}, nil
}

func (l *Local) path(key string) string {
	return filepath.Join(l.root, filepath.Base(key))
}

func (l *Local) Save(_ context.Context, key string, r io.Reader, size int64, _ string) error {
	// Write to a temp name and rename so an aborted upload never leaves a
	// partial binary under the final key
	tmp, err := os.CreateTemp(l.root, ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file, %w", err)
	}

	written, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write upload, %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to flush upload, %w", err)
	}

	if size >= 0 && written != size {
		os.Remove(tmp.Name())
		return fmt.Errorf("upload truncated, got %d of %d bytes", written, size)
	}

	if err := os.Rename(tmp.Name(), l.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move upload into place, %w", err)
	}

	return nil
}

func (l *Local) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(l.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (l *Local) Open(_ context.Context, key string) (io.ReadCloser, int64, string, error) {
	f, err := os.Open(l.path(key))
	if err != nil {
		return nil, 0, "", err
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, "", err
	}

	ct := mime.TypeByExtension(filepath.Ext(key))
	if ct == "" {
		ct = "application/octet-stream"
	}

	return f, stat.Size(), ct, nil
}

func (l *Local) Delete(_ context.Context, key string) error {
	err := os.Remove(l.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (l *Local) ServeURL(context.Context, string) (string, bool) {
	return "", false
}
