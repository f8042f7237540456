package store

import "errors"

var (
	// ErrNotAuthenticated is returned by entitlement writes attempted
	// without a logged-in user.
	ErrNotAuthenticated = errors.New("user not authenticated")

	// ErrNotFound is returned when an operation references an id absent
	// from the current document.
	ErrNotFound = errors.New("not found")
)
