package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"path/filepath"
	"time"
)

// ErrNotFound reports that no stored object exists at the given path.
var ErrNotFound = errors.New("file not found")

// StoredFile describes an object written to a Store. Path is the handle
// later calls use; Name is the generated object name.
type StoredFile struct {
	Name string
	Path string
	Size int64
}

// Store is the file-byte persistence contract. Implementations do not
// validate size or type; that is enforced upstream before bytes arrive.
type Store interface {
	// Put writes the reader's bytes under a generated collision-free name
	// derived from originalName.
	Put(ctx context.Context, r io.Reader, originalName, contentType string) (*StoredFile, error)
	// Get opens the stored object for reading.
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	// Stat reports ErrNotFound when the object is gone.
	Stat(ctx context.Context, path string) error
	// Delete removes the object; deleting a missing object is a no-op.
	Delete(ctx context.Context, path string) error
}

// uniqueName keeps the original base name and extension and inserts a
// time+random token, so concurrent uploads of the same file cannot collide.
func uniqueName(originalName string) string {
	ext := filepath.Ext(originalName)
	base := filepath.Base(originalName[:len(originalName)-len(ext)])
	return fmt.Sprintf("%s-%d-%d%s", base, time.Now().UnixMilli(), rand.Intn(1_000_000_000), ext)
}
