package storage

import "errors"

var (
	// ErrNotFound is returned by Get when no record has the requested id.
	ErrNotFound = errors.New("link not found")

	// ErrInvalidRecord is returned by Put for a record without an id.
	ErrInvalidRecord = errors.New("invalid link record")

	// ErrStorageUnavailable wraps the failure that prevented the database
	// from opening. Once returned by an Opener it is returned forever.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
