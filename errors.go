package nextver

import "errors"

// Sentinel errors returned by this package. Wrapped errors can be checked
// with errors.Is.

// ErrMalformedVersion is returned when a tag does not reduce to three
// non-negative integer components.
var ErrMalformedVersion = errors.New("malformed version")

// ErrInvalidReleaseOverride is returned when a release branch names a version
// that is unparsable or not strictly greater than the current version.
var ErrInvalidReleaseOverride = errors.New("invalid or non-incremental release version in branch name")

// ErrMissingInput is returned when a required caller parameter is empty.
var ErrMissingInput = errors.New("missing required input")

// ErrMissingContext is returned when the runner context lacks repository or
// commit information.
var ErrMissingContext = errors.New("missing run context")
