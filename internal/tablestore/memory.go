package tablestore

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/JaimeStill/document-center/pkg/decode"
	"github.com/JaimeStill/document-center/pkg/errs"
)

type memoryRow struct {
	id   string
	data Row
}

type memory struct {
	mu          sync.RWMutex
	collections map[string][]memoryRow
	logger      *slog.Logger
}

// NewMemory creates a process-local client with the same matching rules as
// the PostgreSQL client. Values are normalized through JSON on write.
func NewMemory(logger *slog.Logger) Client {
	return &memory{
		collections: make(map[string][]memoryRow),
		logger:      logger.With("system", "tablestore"),
	}
}

func (m *memory) Create(ctx context.Context, path string, data map[string]any, id string) error {
	collection, err := cleanPath(path)
	if err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("tablestore: id required: %w", errs.ErrInvalidArgument)
	}

	row, err := normalize(data)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.collections[collection]
	for i := range rows {
		if rows[i].id == id {
			rows[i].data = row
			m.logger.Warn("row replaced", "path", collection, "id", id)
			return nil
		}
	}

	m.collections[collection] = append(rows, memoryRow{id: id, data: row})
	m.logger.Info("row created", "path", collection, "id", id)
	return nil
}

func (m *memory) Read(ctx context.Context, path string, query map[string]any) ([]Row, error) {
	collection, err := cleanPath(path)
	if err != nil {
		return nil, err
	}

	q, err := normalize(query)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []Row{}
	for _, r := range m.collections[collection] {
		if contains(r.data, q) {
			copied, _ := normalize(r.data)
			result = append(result, copied)
		}
	}
	return result, nil
}

func (m *memory) Delete(ctx context.Context, path string, query map[string]any) error {
	collection, err := cleanPath(path)
	if err != nil {
		return err
	}

	q, err := normalize(query)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.collections[collection]
	kept := rows[:0]
	for _, r := range rows {
		if !contains(r.data, q) {
			kept = append(kept, r)
		}
	}

	m.logger.Info("rows deleted", "path", collection, "count", len(rows)-len(kept))
	m.collections[collection] = kept
	return nil
}

func normalize(v map[string]any) (Row, error) {
	if v == nil {
		return Row{}, nil
	}

	row, err := decode.FromMap[Row](v)
	if err != nil {
		return nil, fmt.Errorf("tablestore: %w: %w", errs.ErrInvalidArgument, err)
	}
	return row, nil
}

// contains follows jsonb @> semantics for normalized JSON values.
func contains(doc, query any) bool {
	switch q := query.(type) {
	case map[string]any:
		d, ok := doc.(map[string]any)
		if !ok {
			return false
		}
		for k, qv := range q {
			dv, ok := d[k]
			if !ok || !contains(dv, qv) {
				return false
			}
		}
		return true
	case []any:
		d, ok := doc.([]any)
		if !ok {
			return false
		}
		for _, qv := range q {
			found := false
			for _, dv := range d {
				if contains(dv, qv) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(doc, query)
	}
}
