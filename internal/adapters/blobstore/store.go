// Package blobstore defines the blob storage contract and its errors.
//
// The service treats storage as a durable key-value blob store addressed by
// object key: overwrite-put, paginated list, get. Implementations must keep
// Put overwrite-idempotent so a resubmission under the same key fully
// replaces the previous content.
package blobstore

import "context"

// ObjectInfo describes one stored object in a listing.
type ObjectInfo struct {
	// Key is the full object key, usable with Get.
	Key string
	// Name is the base name of the object within its namespace.
	Name string
}

// Page is one page of a listing. Callers must follow NextCursor until
// HasMore is false to see the whole namespace.
type Page struct {
	Entries    []ObjectInfo
	NextCursor string
	HasMore    bool
}

// Store provides read/write access to vote record blobs.
type Store interface {
	// Put writes data under key with overwrite semantics.
	Put(ctx context.Context, key string, data []byte) error

	// Get returns the raw content stored under key.
	// Returns ErrNotFound if the key is unknown.
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns one page of objects under prefix, starting at cursor.
	// An empty cursor starts from the beginning.
	List(ctx context.Context, prefix string, cursor string) (Page, error)
}
