// Package infrastructure assembles the process-wide systems that domain
// systems depend on: lifecycle, logging, database, page cache and secrets.
package infrastructure

import (
	"fmt"
	"log/slog"

	"github.com/JaimeStill/document-center/internal/config"
	"github.com/JaimeStill/document-center/internal/database"
	"github.com/JaimeStill/document-center/internal/lifecycle"
	"github.com/JaimeStill/document-center/internal/secrets"
	"github.com/JaimeStill/document-center/internal/storage"
	"github.com/JaimeStill/document-center/internal/tablestore"
	"github.com/JaimeStill/document-center/pkg/logging"
)

// Infrastructure holds the core systems required by all domain systems.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Cache     storage.System
	Secrets   secrets.Provider
}

// New creates an Infrastructure from a finalized configuration. Systems are
// constructed but not started; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := logging.New(&cfg.Logging)

	db, err := database.New(&cfg.Database, logger, database.Migrations{
		FS:   tablestore.Migrations,
		Path: tablestore.MigrationsPath,
	})
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	cache, err := storage.New(&cfg.Cache, logger)
	if err != nil {
		return nil, fmt.Errorf("cache init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Cache:     cache,
		Secrets:   secrets.New(&cfg.Secrets, logger),
	}, nil
}

// Start registers every system with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Cache.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("cache start failed: %w", err)
	}
	return nil
}
