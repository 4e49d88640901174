package storage

import (
	"context"
	"io"
)

// MediaStore abstracts the external host that keeps image bytes. The API
// stores only object keys and URLs; it never serves image content itself.
type MediaStore interface {
	// Put uploads the object and returns its publicly reachable URL.
	Put(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error)
	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
	// URL returns the public URL for a stored key.
	URL(key string) string
}
