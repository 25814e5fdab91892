// Package tablestore is the narrow document-table client used for document
// metadata: rows are JSON objects grouped by a slash-separated path and
// matched by field containment.
package tablestore

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/JaimeStill/document-center/pkg/errs"
)

// Migrations holds the schema for the PostgreSQL client.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsPath is the directory inside Migrations.
const MigrationsPath = "migrations"

var (
	// ErrInvalidPath indicates an empty or malformed collection path.
	ErrInvalidPath = fmt.Errorf("tablestore: invalid path: %w", errs.ErrInvalidArgument)

	// ErrUpstream wraps failures reported by the backing store.
	ErrUpstream = fmt.Errorf("tablestore: %w", errs.ErrUpstream)
)

// Row is one stored JSON object.
type Row = map[string]any

// Client stores rows under a path. A query matches rows that contain every
// field of the query with an equal value; an empty query matches all rows.
type Client interface {
	// Create stores data under path with the given id. An existing row with
	// the same id is replaced.
	Create(ctx context.Context, path string, data map[string]any, id string) error
	Read(ctx context.Context, path string, query map[string]any) ([]Row, error)
	Delete(ctx context.Context, path string, query map[string]any) error
}

func cleanPath(path string) (string, error) {
	p := strings.Trim(path, "/")
	if p == "" || strings.Contains(p, "//") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return p, nil
}
