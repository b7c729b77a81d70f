package archiveconfig

import "errors"

// Configuration validation errors returned by Config.Validate().
//
// Design decision: package-level sentinel errors rather than ad hoc
// fmt.Errorf values, so callers can use errors.Is() for programmatic
// handling.
var (
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")

	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative")

	ErrInvalidRequestDelay = errors.New("invalid request delay: must be non-negative")

	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	ErrInvalidNavigationPolicy = errors.New("invalid navigation policy: must be one of none, limited, all")

	ErrInvalidMaxExternalDepth = errors.New("invalid max external depth: must be non-negative")

	ErrInvalidMinContentLength = errors.New("invalid min content length: must be non-negative")

	ErrInvalidCompressionLevel = errors.New("invalid compression level: must be between 1 and 9")

	ErrInvalidChunkSize = errors.New("invalid chunk size: could not parse as a byte size")

	ErrInvalidOrientation = errors.New("invalid pdf orientation: must be portrait or landscape")
)
