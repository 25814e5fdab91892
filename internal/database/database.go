// Package database owns the PostgreSQL connection pool and applies schema
// migrations when the service starts.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync/atomic"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/document-center/internal/lifecycle"
	"github.com/JaimeStill/document-center/pkg/database"
)

// System exposes the shared connection pool.
type System interface {
	Connection() *sql.DB
	Start(lc *lifecycle.Coordinator) error
	Ready() bool
}

// Migrations is a directory of golang-migrate SQL files inside an fs.FS.
type Migrations struct {
	FS   fs.FS
	Path string
}

type system struct {
	db         *sql.DB
	cfg        *database.Config
	migrations []Migrations
	logger     *slog.Logger
	ready      atomic.Bool
}

// New opens a pool for cfg. No connection is attempted until Start.
func New(cfg *database.Config, logger *slog.Logger, migrations ...Migrations) (System, error) {
	db, err := sql.Open("pgx", cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &system{
		db:         db,
		cfg:        cfg,
		migrations: migrations,
		logger:     logger.With("system", "database"),
	}, nil
}

func (s *system) Connection() *sql.DB {
	return s.db
}

func (s *system) Ready() bool {
	return s.ready.Load()
}

// Start verifies connectivity, applies migrations, and closes the pool on shutdown.
func (s *system) Start(lc *lifecycle.Coordinator) error {
	ctx, cancel := context.WithTimeout(lc.Context(), s.cfg.ConnTimeoutDuration())
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	s.logger.Info("database connected", "host", s.cfg.Host, "name", s.cfg.Name)

	for _, m := range s.migrations {
		if err := s.migrate(m); err != nil {
			return err
		}
	}
	s.ready.Store(true)

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		s.ready.Store(false)
		if err := s.db.Close(); err != nil {
			s.logger.Error("database close error", "error", err)
			return
		}
		s.logger.Info("database connection closed")
	})

	return nil
}

func (s *system) migrate(m Migrations) error {
	src, err := iofs.New(m.FS, m.Path)
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	defer src.Close()

	driver, err := migratepgx.WithInstance(s.db, &migratepgx.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	// m.Close would also close the shared pool.
	mg, err := migrate.NewWithInstance("iofs", src, s.cfg.Name, driver)
	if err != nil {
		return fmt.Errorf("migration init: %w", err)
	}

	if err := mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}

	version, dirty, err := mg.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migration version: %w", err)
	}
	s.logger.Info("migrations applied", "path", m.Path, "version", version, "dirty", dirty)
	return nil
}
