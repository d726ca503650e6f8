// internal/services/errors.go
package services

import "errors"

// Sentinel error classes. Services wrap these with context via fmt.Errorf and
// %w; handlers translate the class into a transport status code so internal
// detail never leaks in 500 responses.
var (
	// ErrInvalidInput marks validation and business-rule failures (400).
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks lookups for unknown entities (404).
	ErrNotFound = errors.New("not found")
)
