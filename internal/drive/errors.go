package drive

import (
	"fmt"

	"github.com/JaimeStill/document-center/pkg/errs"
)

var (
	// ErrNotFound indicates a lookup matched no entries.
	ErrNotFound = fmt.Errorf("drive: %w", errs.ErrNotFound)

	// ErrInvalidArgument indicates a required identifier is missing or a
	// payload cannot be transferred with the requested mime type.
	ErrInvalidArgument = fmt.Errorf("drive: %w", errs.ErrInvalidArgument)

	// ErrUpstream wraps every failure reported by the remote store.
	ErrUpstream = fmt.Errorf("drive: %w", errs.ErrUpstream)
)
