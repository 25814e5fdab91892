package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	drivev3 "google.golang.org/api/drive/v3"

	"github.com/JaimeStill/document-center/internal/codec"
	"github.com/JaimeStill/document-center/internal/metrics"
	"github.com/JaimeStill/document-center/pkg/pagination"
)

// UploadRequest describes one object to create under ParentID.
type UploadRequest struct {
	Name     string
	MimeType string
	Payload  codec.Payload
	ParentID string
}

// System is the remote store gateway. Listing operations follow every page;
// any failure aborts the whole operation without retry.
type System interface {
	FindSharedDrive(ctx context.Context, name string) (*Entry, error)
	FindFolder(ctx context.Context, parentID, name string) (*Entry, error)
	FindFile(ctx context.Context, parentID, name string) (*Entry, error)
	ListChildren(ctx context.Context, parentID string) ([]Entry, error)
	FileByID(ctx context.Context, id string) (*Entry, error)

	CreateFolder(ctx context.Context, name, parentID string) (*Entry, error)
	Rename(ctx context.Context, id, newName string) (*Entry, error)
	Move(ctx context.Context, entry Entry, newParentID string) (*Entry, error)

	Upload(ctx context.Context, req UploadRequest) (*Entry, error)
	Download(ctx context.Context, id string) ([]byte, error)
	DownloadRecords(ctx context.Context, id string) ([]codec.Record, error)
	Export(ctx context.Context, id, mimeType string) ([]byte, error)
	ExportRecords(ctx context.Context, id, mimeType string) ([]codec.Record, error)

	Delete(ctx context.Context, id string) error
	ResetFolder(ctx context.Context, parentID string) error

	About(ctx context.Context) (*drivev3.About, error)
}

type gateway struct {
	api       API
	pageSize  int64
	chunkSize int
	logger    *slog.Logger
}

// NewWithAPI creates the gateway over an existing API implementation.
func NewWithAPI(api API, cfg *Config, pagination pagination.Config, logger *slog.Logger) System {
	chunk := cfg.ChunkSizeBytes()
	if chunk <= 0 {
		chunk = 1 << 20
	}
	return &gateway{
		api:       api,
		pageSize:  int64(pagination.PageSize),
		chunkSize: chunk,
		logger:    logger.With("system", "drive"),
	}
}

func (g *gateway) FindSharedDrive(ctx context.Context, name string) (*Entry, error) {
	drives, err := observe(g, "drives.list", func() ([]Entry, error) {
		return pagination.All(ctx, func(ctx context.Context, cursor string) ([]Entry, string, error) {
			return g.api.ListDrives(ctx, name, cursor, g.pageSize)
		})
	})
	if err != nil {
		return nil, err
	}
	if len(drives) == 0 {
		return nil, fmt.Errorf("%w: no shared drive named %q", ErrNotFound, name)
	}

	g.logger.Info("shared drive found", "name", name, "id", drives[0].ID, "matches", len(drives))
	return &drives[0], nil
}

func (g *gateway) FindFolder(ctx context.Context, parentID, name string) (*Entry, error) {
	return g.findOne(ctx, "folder", parentID, name)
}

func (g *gateway) FindFile(ctx context.Context, parentID, name string) (*Entry, error) {
	return g.findOne(ctx, "file", parentID, name)
}

// findOne returns the first entry named name under parentID, reading listing
// pages only until a match appears.
func (g *gateway) findOne(ctx context.Context, kind, parentID, name string) (*Entry, error) {
	if parentID == "" {
		return nil, fmt.Errorf("%w: parent id required", ErrInvalidArgument)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: %s name required", ErrInvalidArgument, kind)
	}

	q := Query{Name: name, ParentID: parentID}
	match, err := observe(g, "files.list", func() (*Entry, error) {
		e, ok, err := pagination.First(ctx, func(ctx context.Context, cursor string) ([]Entry, string, error) {
			return g.api.ListFiles(ctx, q, cursor, g.pageSize)
		})
		if err != nil || !ok {
			return nil, err
		}
		return &e, nil
	})
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, fmt.Errorf("%w: no %s named %q in parent %q", ErrNotFound, kind, name, parentID)
	}

	g.logger.Info(kind+" found", "name", name, "parent", parentID, "id", match.ID)
	return match, nil
}

func (g *gateway) ListChildren(ctx context.Context, parentID string) ([]Entry, error) {
	if parentID == "" {
		return nil, fmt.Errorf("%w: parent id required", ErrInvalidArgument)
	}

	children, err := g.list(ctx, Query{ParentID: parentID})
	if err != nil {
		return nil, err
	}

	g.logger.Info("folder listed", "parent", parentID, "count", len(children))
	return children, nil
}

func (g *gateway) list(ctx context.Context, q Query) ([]Entry, error) {
	return observe(g, "files.list", func() ([]Entry, error) {
		return pagination.All(ctx, func(ctx context.Context, cursor string) ([]Entry, string, error) {
			return g.api.ListFiles(ctx, q, cursor, g.pageSize)
		})
	})
}

func (g *gateway) FileByID(ctx context.Context, id string) (*Entry, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: file id required", ErrInvalidArgument)
	}

	entry, err := observe(g, "files.get", func() (Entry, error) {
		return g.api.GetFile(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (g *gateway) CreateFolder(ctx context.Context, name, parentID string) (*Entry, error) {
	if parentID == "" {
		return nil, fmt.Errorf("%w: parent folder id required", ErrInvalidArgument)
	}

	entry, err := observe(g, "files.create", func() (Entry, error) {
		return g.api.CreateFile(ctx, Entry{
			Name:     name,
			Parents:  []string{parentID},
			MimeType: FolderMimeType,
		}, nil)
	})
	if err != nil {
		return nil, err
	}

	g.logger.Info("folder created", "name", name, "parent", parentID, "id", entry.ID)
	return &entry, nil
}

func (g *gateway) Rename(ctx context.Context, id, newName string) (*Entry, error) {
	if id == "" || newName == "" {
		return nil, fmt.Errorf("%w: file id and name required", ErrInvalidArgument)
	}

	entry, err := observe(g, "files.update", func() (Entry, error) {
		return g.api.UpdateFile(ctx, id, Patch{Name: newName})
	})
	if err != nil {
		return nil, err
	}

	g.logger.Info("file renamed", "id", id, "name", newName)
	return &entry, nil
}

// Move detaches entry from its first parent only and attaches it to newParentID.
func (g *gateway) Move(ctx context.Context, entry Entry, newParentID string) (*Entry, error) {
	if len(entry.Parents) == 0 {
		return nil, fmt.Errorf("%w: entry %q has no parent", ErrInvalidArgument, entry.ID)
	}
	if newParentID == "" {
		return nil, fmt.Errorf("%w: new parent id required", ErrInvalidArgument)
	}

	moved, err := observe(g, "files.update", func() (Entry, error) {
		return g.api.UpdateFile(ctx, entry.ID, Patch{
			AddParents:    newParentID,
			RemoveParents: entry.Parents[0],
		})
	})
	if err != nil {
		return nil, err
	}

	g.logger.Info("file moved", "id", entry.ID, "from", entry.Parents[0], "to", newParentID)
	return &moved, nil
}

func (g *gateway) Upload(ctx context.Context, req UploadRequest) (*Entry, error) {
	if req.ParentID == "" {
		return nil, fmt.Errorf("%w: parent folder id required", ErrInvalidArgument)
	}
	if req.Payload.IsEmpty() {
		return nil, fmt.Errorf("%w: file data required", ErrInvalidArgument)
	}
	if req.Payload.IsTabular() && !codec.Supported(req.MimeType) {
		return nil, fmt.Errorf("%w: unsupported mime type %q for record upload", ErrInvalidArgument, req.MimeType)
	}

	data, err := req.Payload.Bytes(req.MimeType)
	if err != nil {
		return nil, fmt.Errorf("prepare payload: %w", err)
	}

	entry, err := observe(g, "files.create", func() (Entry, error) {
		return g.api.CreateFile(ctx, Entry{
			Name:     req.Name,
			Parents:  []string{req.ParentID},
			MimeType: req.MimeType,
		}, bytes.NewReader(data))
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordDriveUpload(int64(len(data)))

	g.logger.Info("file uploaded",
		"name", req.Name,
		"parent", req.ParentID,
		"id", entry.ID,
		"bytes", len(data),
	)
	return &entry, nil
}

func (g *gateway) Download(ctx context.Context, id string) ([]byte, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: file id required", ErrInvalidArgument)
	}

	return observe(g, "files.download", func() ([]byte, error) {
		body, err := g.api.Download(ctx, id)
		if err != nil {
			return nil, err
		}
		return g.drain(id, body)
	})
}

func (g *gateway) DownloadRecords(ctx context.Context, id string) ([]codec.Record, error) {
	entry, err := g.FileByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !codec.Supported(entry.MimeType) {
		return nil, fmt.Errorf("%w: cannot parse %q", codec.ErrUnsupportedFormat, entry.MimeType)
	}

	data, err := g.Download(ctx, id)
	if err != nil {
		return nil, err
	}
	return codec.Decode(data, entry.MimeType)
}

func (g *gateway) Export(ctx context.Context, id, mimeType string) ([]byte, error) {
	if id == "" || mimeType == "" {
		return nil, fmt.Errorf("%w: file id and mime type required", ErrInvalidArgument)
	}

	return observe(g, "files.export", func() ([]byte, error) {
		body, err := g.api.Export(ctx, id, mimeType)
		if err != nil {
			return nil, err
		}
		return g.drain(id, body)
	})
}

func (g *gateway) ExportRecords(ctx context.Context, id, mimeType string) ([]codec.Record, error) {
	if !codec.Supported(mimeType) {
		return nil, fmt.Errorf("%w: cannot parse %q", codec.ErrUnsupportedFormat, mimeType)
	}

	data, err := g.Export(ctx, id, mimeType)
	if err != nil {
		return nil, err
	}
	return codec.Decode(data, mimeType)
}

// drain reads body to completion in chunkSize reads.
func (g *gateway) drain(id string, body io.ReadCloser) ([]byte, error) {
	defer body.Close()

	var out bytes.Buffer
	buf := make([]byte, g.chunkSize)
	chunks := 0
	for {
		n, err := body.Read(buf)
		if n > 0 {
			out.Write(buf[:n])
			chunks++
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	metrics.RecordDriveDownload(int64(out.Len()))

	g.logger.Info("file transferred", "id", id, "bytes", out.Len(), "reads", chunks)
	return out.Bytes(), nil
}

func (g *gateway) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: file id required", ErrInvalidArgument)
	}

	_, err := observe(g, "files.delete", func() (struct{}, error) {
		return struct{}{}, g.api.DeleteFile(ctx, id)
	})
	if err != nil {
		return err
	}

	g.logger.Info("file deleted", "id", id)
	return nil
}

// ResetFolder deletes every direct child of parentID, stopping at the first
// failure. Children deleted before the failure stay deleted.
func (g *gateway) ResetFolder(ctx context.Context, parentID string) error {
	children, err := g.ListChildren(ctx, parentID)
	if err != nil {
		return err
	}

	for i, child := range children {
		if err := g.Delete(ctx, child.ID); err != nil {
			return fmt.Errorf("reset folder %s: deleted %d of %d: %w", parentID, i, len(children), err)
		}
	}

	g.logger.Info("folder reset", "parent", parentID, "deleted", len(children))
	return nil
}

func (g *gateway) About(ctx context.Context) (*drivev3.About, error) {
	return observe(g, "about.get", func() (*drivev3.About, error) {
		return g.api.About(ctx)
	})
}

// observe times fn, records the outcome, and wraps failures as upstream errors.
func observe[T any](g *gateway, op string, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := fn()
	metrics.RecordDriveOperation(op, time.Since(start), err == nil)
	if err != nil {
		g.logger.Error("drive operation failed", "operation", op, "error", err)
		var zero T
		return zero, fmt.Errorf("%w: %s: %w", ErrUpstream, op, err)
	}
	return v, nil
}
