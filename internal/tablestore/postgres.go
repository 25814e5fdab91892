package tablestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/document-center/internal/metrics"
	"github.com/JaimeStill/document-center/pkg/errs"
)

type postgres struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgres creates a client over the records table.
func NewPostgres(db *sql.DB, logger *slog.Logger) Client {
	return &postgres{
		db:     db,
		logger: logger.With("system", "tablestore"),
	}
}

func (p *postgres) Create(ctx context.Context, path string, data map[string]any, id string) error {
	collection, err := cleanPath(path)
	if err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("tablestore: id required: %w", errs.ErrInvalidArgument)
	}

	doc, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("tablestore: encode row: %w", errs.ErrInvalidArgument)
	}

	q := `
		INSERT INTO records (collection, id, data)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = now()
		RETURNING (xmax = 0) AS inserted`

	start := time.Now()
	var inserted bool
	err = p.db.QueryRowContext(ctx, q, collection, id, string(doc)).Scan(&inserted)
	metrics.RecordTableQuery("create", time.Since(start))
	if err != nil {
		return fmt.Errorf("%w: insert row: %w", ErrUpstream, err)
	}

	if !inserted {
		p.logger.Warn("row replaced", "path", collection, "id", id)
		return nil
	}
	p.logger.Info("row created", "path", collection, "id", id)
	return nil
}

func (p *postgres) Read(ctx context.Context, path string, query map[string]any) ([]Row, error) {
	collection, err := cleanPath(path)
	if err != nil {
		return nil, err
	}

	filter, err := encodeQuery(query)
	if err != nil {
		return nil, err
	}

	q := `
		SELECT data FROM records
		WHERE collection = $1 AND data @> $2::jsonb
		ORDER BY created_at, id`

	start := time.Now()
	rows, err := p.db.QueryContext(ctx, q, collection, filter)
	if err != nil {
		metrics.RecordTableQuery("read", time.Since(start))
		return nil, fmt.Errorf("%w: query rows: %w", ErrUpstream, err)
	}
	defer rows.Close()

	result := []Row{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("%w: scan row: %w", ErrUpstream, err)
		}

		var row Row
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, fmt.Errorf("%w: decode row: %w", ErrUpstream, err)
		}
		result = append(result, row)
	}
	metrics.RecordTableQuery("read", time.Since(start))

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate rows: %w", ErrUpstream, err)
	}
	return result, nil
}

func (p *postgres) Delete(ctx context.Context, path string, query map[string]any) error {
	collection, err := cleanPath(path)
	if err != nil {
		return err
	}

	filter, err := encodeQuery(query)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := p.db.ExecContext(ctx,
		`DELETE FROM records WHERE collection = $1 AND data @> $2::jsonb`,
		collection, filter,
	)
	metrics.RecordTableQuery("delete", time.Since(start))
	if err != nil {
		return fmt.Errorf("%w: delete rows: %w", ErrUpstream, err)
	}

	n, _ := result.RowsAffected()
	p.logger.Info("rows deleted", "path", collection, "count", n)
	return nil
}

func encodeQuery(query map[string]any) (string, error) {
	if len(query) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(query)
	if err != nil {
		return "", fmt.Errorf("tablestore: encode query: %w", errs.ErrInvalidArgument)
	}
	return string(b), nil
}
