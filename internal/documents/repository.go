package documents

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/JaimeStill/document-center/internal/drive"
	"github.com/JaimeStill/document-center/internal/metrics"
	"github.com/JaimeStill/document-center/internal/tablestore"
	"github.com/JaimeStill/document-center/pkg/decode"
	"github.com/JaimeStill/document-center/pkg/errs"
)

const (
	idLayout = "20060102150405"
	mimePDF  = "application/pdf"
)

type repo struct {
	cfg    Config
	drive  drive.System
	table  tablestore.Client
	now    func() time.Time
	logger *slog.Logger
}

// New creates the document lifecycle over a finalized Config.
func New(cfg *Config, remote drive.System, table tablestore.Client, logger *slog.Logger) System {
	c := *cfg
	c.Categories = slices.Clone(cfg.Categories)

	return &repo{
		cfg:    c,
		drive:  remote,
		table:  table,
		now:    time.Now,
		logger: logger.With("system", "documents"),
	}
}

func (r *repo) Folders() []Category {
	return slices.Clone(r.cfg.Categories)
}

func (r *repo) ReadAll(ctx context.Context, query map[string]any) (map[string][]tablestore.Row, error) {
	files := make(map[string][]tablestore.Row, len(r.cfg.Categories))
	total := 0

	for _, cat := range r.cfg.Categories {
		rows, err := r.table.Read(ctx, r.path(cat.ID), query)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", cat.ID, err)
		}
		files[cat.ID] = rows
		total += len(rows)
	}

	if total == 0 {
		return nil, ErrNoDocuments
	}
	return files, nil
}

func (r *repo) Delete(ctx context.Context, record Record, parentFolderID string) error {
	if record.DocumentID == "" || record.FileInfo.ID == "" {
		metrics.RecordDocumentDelete(false)
		return fmt.Errorf("%w: DocumentID and FileInfo.id required", ErrInvalidRecord)
	}

	path := r.path(parentFolderID)
	if err := r.table.Delete(ctx, path, map[string]any{"DocumentID": record.DocumentID}); err != nil {
		metrics.RecordDocumentDelete(false)
		return fmt.Errorf("delete metadata: %w", err)
	}

	if err := r.drive.Delete(ctx, record.FileInfo.ID); err != nil {
		metrics.RecordDocumentDelete(false)
		r.logger.Error("metadata deleted but file remains",
			"document_id", record.DocumentID,
			"file_id", record.FileInfo.ID,
			"error", err,
		)
		return fmt.Errorf("delete file: %w", err)
	}

	metrics.RecordDocumentDelete(true)
	r.logger.Info("document deleted", "document_id", record.DocumentID, "file_id", record.FileInfo.ID)
	return nil
}

func (r *repo) Upload(ctx context.Context, cmd UploadCommand) (*Record, error) {
	if cmd.Payload.IsEmpty() {
		return nil, fmt.Errorf("%w: file_data required", errs.ErrInvalidArgument)
	}

	var pageCount *int
	if cmd.MimeType == mimePDF && !cmd.Payload.IsTabular() {
		pageCount = r.pageCount(cmd)
	}

	entry, err := r.drive.Upload(ctx, drive.UploadRequest{
		Name:     cmd.Name,
		MimeType: cmd.MimeType,
		Payload:  cmd.Payload,
		ParentID: cmd.ParentFolderID,
	})
	if err != nil {
		return nil, fmt.Errorf("upload file: %w", err)
	}

	record := Record{
		DocumentID:   r.now().Format(idLayout),
		DocumentInfo: cmd.DocumentInfo,
		FileInfo:     *entry,
		Uploader:     cmd.Uploader,
		Category:     r.cfg.Classify(cmd.ParentFolderID),
		PageCount:    pageCount,
	}

	row, err := toRow(record)
	if err != nil {
		return nil, err
	}

	if err := r.table.Create(ctx, r.path(record.Category), row, record.DocumentID); err != nil {
		r.logger.Error("file uploaded but metadata not stored",
			"file_id", entry.ID,
			"document_id", record.DocumentID,
			"error", err,
		)
		return nil, fmt.Errorf("store metadata: %w", err)
	}

	metrics.RecordDocumentUpload(record.Category)
	r.logger.Info("document uploaded",
		"document_id", record.DocumentID,
		"category", record.Category,
		"file_id", entry.ID,
		"name", entry.Name,
	)
	return &record, nil
}

func (r *repo) path(categoryID string) string {
	return r.cfg.TablePrefix + "/" + categoryID
}

func (r *repo) pageCount(cmd UploadCommand) *int {
	data, err := cmd.Payload.Bytes(cmd.MimeType)
	if err != nil {
		return nil
	}

	count, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		r.logger.Warn("failed to extract pdf page count", "name", cmd.Name, "error", err)
		return nil
	}
	return &count
}

func toRow(record Record) (map[string]any, error) {
	row, err := decode.ToMap(record)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return row, nil
}
