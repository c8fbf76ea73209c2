package models

import (
	"errors"
)

// Common validation errors for models.
var (
	// ErrDataRequired indicates an empty channel record blob.
	ErrDataRequired = errors.New("channel record data is required")
)
