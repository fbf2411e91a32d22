package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEnrichmentActive signals that an enrichment run is already in flight.
	ErrEnrichmentActive = errors.New("enrichment already in progress")
	// ErrMissingCredential signals that the enrichment backend has no API key configured.
	ErrMissingCredential = errors.New("missing enrichment credential")
	// ErrAttachmentLimit signals that a record already holds the maximum number of photos.
	ErrAttachmentLimit = errors.New("attachment limit reached")
)
