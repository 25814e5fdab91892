package storage

import (
	"context"

	"github.com/JaimeStill/document-center/internal/lifecycle"
)

// System stores and retrieves byte blobs by key.
type System interface {
	// Store atomically replaces the contents at key. Concurrent readers see
	// either the previous contents or the new contents, never a mix.
	Store(ctx context.Context, key string, data []byte) error

	// Retrieve returns the contents at key, or ErrNotFound.
	Retrieve(ctx context.Context, key string) ([]byte, error)

	// Start creates the base directory during startup.
	Start(lc *lifecycle.Coordinator) error
}
