package blobstore

import "errors"

// Sentinel kinds for blob store errors.
var (
	ErrNotFound   = errors.New("object not found")
	ErrInvalidKey = errors.New("invalid object key")
)
