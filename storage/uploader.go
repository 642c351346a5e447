package storage

import (
	"context"
	"io"
)

// StoredObject describes a blob after it landed in the bucket. URL is the
// public address derived from the configured base URL, not a signed link.
type StoredObject struct {
	Key  string
	URL  string
	ETag string
}

// FileUploader stores the platform's user-facing binaries, compliance
// documents from onlus applications and team logos, under caller-chosen keys.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*StoredObject, error)

	Delete(ctx context.Context, key string) error

	// PublicURL maps a stored key to its public address. Returns the empty
	// string for an empty key.
	PublicURL(key string) string
}
