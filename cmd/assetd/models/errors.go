package models

import "errors"

// Error taxonomy for the upload subsystem. Services wrap these sentinels
// with context; handlers map them to HTTP status codes at the boundary.
var (
	// ErrValidation covers bad MIME, oversize declarations and missing fields (4xx)
	ErrValidation = errors.New("validation error")
	// ErrNotFound covers unknown asset ids at resolution time (404)
	ErrNotFound = errors.New("not found")
)
