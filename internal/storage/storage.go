// Package storage abstracts where uploaded image files live.  Photo and
// poster records reference files only by provider name and storage id, so
// the backing store can change without touching the records.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// StoredFile identifies a stored object independently of any backend.
type StoredFile struct {
	ID       string `json:"storage_id"`
	Provider string `json:"provider"`
	Size     int64  `json:"size"`
}

// Provider stores uploaded files and hands back an opaque id.
type Provider interface {
	// Store writes the file content and returns its identity.  The
	// original filename is only used to preserve the extension.
	Store(ctx context.Context, filename string, r io.Reader) (StoredFile, error)
}

// LocalProvider keeps files on the local filesystem under a base
// directory, named by a fresh UUID plus the original extension.
type LocalProvider struct {
	dir string
}

// NewLocalProvider creates the base directory if needed.
func NewLocalProvider(dir string) (*LocalProvider, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create dir: %w", err)
	}
	return &LocalProvider{dir: dir}, nil
}

// Store writes the content to <dir>/<uuid><ext> and returns the generated
// id.  The caller's filename never reaches the filesystem, so path
// traversal in uploads is a non-issue.
func (p *LocalProvider) Store(ctx context.Context, filename string, r io.Reader) (StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return StoredFile{}, err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	id := uuid.NewString() + ext

	f, err := os.Create(filepath.Join(p.dir, id))
	if err != nil {
		return StoredFile{}, fmt.Errorf("storage: create file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		return StoredFile{}, fmt.Errorf("storage: write file: %w", err)
	}
	return StoredFile{ID: id, Provider: "local", Size: n}, nil
}
