// Package storage persists keyed byte blobs on the local filesystem. It backs
// the web page cache: each key maps to one file and every write is an atomic
// replace, so readers never observe a partially written entry.
package storage

import (
	"fmt"

	"github.com/JaimeStill/document-center/pkg/errs"
)

// Storage errors returned by System implementations.
var (
	// ErrNotFound indicates the requested key does not exist in storage.
	ErrNotFound = fmt.Errorf("storage: key not found: %w", errs.ErrNotFound)

	// ErrPermissionDenied indicates insufficient permissions to access the key.
	ErrPermissionDenied = fmt.Errorf("storage: permission denied")

	// ErrInvalidKey indicates the key is empty or escapes the base path.
	ErrInvalidKey = fmt.Errorf("storage: invalid key: %w", errs.ErrInvalidArgument)

	// ErrTooLarge indicates the entry exceeds the configured maximum size.
	ErrTooLarge = fmt.Errorf("storage: entry too large: %w", errs.ErrInvalidArgument)
)
