package domain

import "errors"

var (
	// ErrNotFound: the requested review id does not exist anywhere we can
	// see. Distinct from transport failure so the boundary can 404.
	ErrNotFound = errors.New("review not found")

	// ErrNoCredential: no unexpired token stored for the client identity.
	ErrNoCredential = errors.New("no valid credential")

	// ErrStoreNotConfigured: the credential store is missing its
	// connection settings while a live call is attempted. Raised distinctly
	// so callers can fall back instead of retrying.
	ErrStoreNotConfigured = errors.New("credential store not configured")
)
