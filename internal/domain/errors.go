package domain

import "errors"

var (
	// ErrUnauthorized is returned when no identity could be resolved for a request.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidInput covers category/list names outside the enumerations and missing ids.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned when a user document or an item that must exist does not.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable wraps any failure of the underlying content store.
	ErrStoreUnavailable = errors.New("store unavailable")
)
