package storage

import "errors"

var (
	// ErrNotFound is returned when an artifact does not exist in the store
	ErrNotFound = errors.New("audio file not found")

	// ErrUnsafeFilename is returned when a filename contains path traversal segments
	ErrUnsafeFilename = errors.New("unsafe artifact filename")
)
