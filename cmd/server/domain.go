package main

import (
	"fmt"

	"github.com/JaimeStill/document-center/internal/browser"
	"github.com/JaimeStill/document-center/internal/config"
	"github.com/JaimeStill/document-center/internal/documents"
	"github.com/JaimeStill/document-center/internal/drive"
	"github.com/JaimeStill/document-center/internal/infrastructure"
	"github.com/JaimeStill/document-center/internal/tablestore"
)

// Domain holds the systems behind the HTTP surface.
type Domain struct {
	Drive     drive.System
	Tables    tablestore.Client
	Documents documents.System
	Browser   *browser.Browser
}

// NewDomain builds the remote store client eagerly so credential problems
// surface at startup rather than on the first request.
func NewDomain(infra *infrastructure.Infrastructure, cfg *config.Config) (*Domain, error) {
	remote, err := drive.New(
		infra.Lifecycle.Context(),
		&cfg.Drive,
		infra.Secrets,
		cfg.Pagination,
		infra.Logger,
	)
	if err != nil {
		return nil, fmt.Errorf("drive init failed: %w", err)
	}

	tables := tablestore.NewPostgres(infra.Database.Connection(), infra.Logger)

	return &Domain{
		Drive:     remote,
		Tables:    tables,
		Documents: documents.New(&cfg.Documents, remote, tables, infra.Logger),
		Browser:   browser.New(&cfg.Browser, infra.Cache, infra.Logger),
	}, nil
}
