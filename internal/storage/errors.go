package storage

import "errors"

// Sentinel errors for the storage package. Using sentinels instead of ad-hoc
// fmt.Errorf allows callers to match with errors.Is for reliable error handling.
var (
	// ErrStateNotFound is returned when no readable session record exists.
	// Absent, unreadable and malformed files all map to it.
	ErrStateNotFound = errors.New("session state not found")

	// ErrSessionIDRequired is returned when a path is requested without an ID.
	ErrSessionIDRequired = errors.New("session ID is required")
)
