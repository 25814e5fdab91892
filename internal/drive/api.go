package drive

import (
	"context"
	"io"
	"net/http"
	"strings"

	drivev3 "google.golang.org/api/drive/v3"
)

const (
	fileFields  = "id, name, parents, mimeType, size, modifiedTime, createdTime"
	listFields  = "nextPageToken, files(" + fileFields + ")"
	driveFields = "nextPageToken, drives(id, name, createdTime)"
	aboutFields = "storageQuota,user,appInstalled,maxUploadSize,importFormats,exportFormats,canCreateDrives,folderColorPalette,driveThemes"

	maxDrivePageSize = 100
)

// Query selects non-trashed entries by exact name, parent, or both.
type Query struct {
	Name     string
	ParentID string
}

// String renders the query in the remote store's search syntax.
func (q Query) String() string {
	var clauses []string
	if q.Name != "" {
		clauses = append(clauses, "name = '"+escape(q.Name)+"'")
	}
	if q.ParentID != "" {
		clauses = append(clauses, "'"+escape(q.ParentID)+"' in parents")
	}
	clauses = append(clauses, "trashed = false")
	return strings.Join(clauses, " and ")
}

func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}

// Patch describes a metadata update. Empty fields are left unchanged.
type Patch struct {
	Name          string
	AddParents    string
	RemoveParents string
}

// API is the set of remote store calls the gateway depends on.
type API interface {
	ListDrives(ctx context.Context, name, pageToken string, pageSize int64) ([]Entry, string, error)
	ListFiles(ctx context.Context, q Query, pageToken string, pageSize int64) ([]Entry, string, error)
	GetFile(ctx context.Context, id string) (Entry, error)
	// CreateFile creates an entry. A nil content creates metadata only.
	CreateFile(ctx context.Context, meta Entry, content io.Reader) (Entry, error)
	UpdateFile(ctx context.Context, id string, patch Patch) (Entry, error)
	DeleteFile(ctx context.Context, id string) error
	Download(ctx context.Context, id string) (io.ReadCloser, error)
	Export(ctx context.Context, id, mimeType string) (io.ReadCloser, error)
	About(ctx context.Context) (*drivev3.About, error)
}

type driveAPI struct {
	svc       *drivev3.Service
	client    *http.Client
	chunkSize int
}

// NewAPI adapts a Drive v3 service. client must be the authorized client the
// service was built with; it carries the resumable upload sessions, which
// send chunkSize bytes per request.
func NewAPI(svc *drivev3.Service, client *http.Client, chunkSize int) API {
	return &driveAPI{svc: svc, client: client, chunkSize: chunkSize}
}

func (a *driveAPI) ListDrives(ctx context.Context, name, pageToken string, pageSize int64) ([]Entry, string, error) {
	call := a.svc.Drives.List().
		Q("name = '" + escape(name) + "'").
		Fields(driveFields).
		PageSize(min(pageSize, maxDrivePageSize)).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, "", err
	}

	entries := make([]Entry, 0, len(resp.Drives))
	for _, d := range resp.Drives {
		entries = append(entries, fromDrive(d))
	}
	return entries, resp.NextPageToken, nil
}

func (a *driveAPI) ListFiles(ctx context.Context, q Query, pageToken string, pageSize int64) ([]Entry, string, error) {
	call := a.svc.Files.List().
		Q(q.String()).
		Fields(listFields).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		PageSize(pageSize).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, "", err
	}

	entries := make([]Entry, 0, len(resp.Files))
	for _, f := range resp.Files {
		entries = append(entries, fromFile(f))
	}
	return entries, resp.NextPageToken, nil
}

func (a *driveAPI) GetFile(ctx context.Context, id string) (Entry, error) {
	f, err := a.svc.Files.Get(id).
		Fields(fileFields).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return Entry{}, err
	}
	return fromFile(f), nil
}

func (a *driveAPI) CreateFile(ctx context.Context, meta Entry, content io.Reader) (Entry, error) {
	if content != nil {
		return a.upload(ctx, meta, content)
	}

	f, err := a.svc.Files.Create(&drivev3.File{
		Name:     meta.Name,
		Parents:  meta.Parents,
		MimeType: meta.MimeType,
	}).
		Fields(fileFields).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return Entry{}, err
	}
	return fromFile(f), nil
}

func (a *driveAPI) UpdateFile(ctx context.Context, id string, patch Patch) (Entry, error) {
	call := a.svc.Files.Update(id, &drivev3.File{Name: patch.Name}).
		Fields(fileFields).
		SupportsAllDrives(true).
		Context(ctx)
	if patch.AddParents != "" {
		call = call.AddParents(patch.AddParents)
	}
	if patch.RemoveParents != "" {
		call = call.RemoveParents(patch.RemoveParents)
	}

	f, err := call.Do()
	if err != nil {
		return Entry{}, err
	}
	return fromFile(f), nil
}

func (a *driveAPI) DeleteFile(ctx context.Context, id string) error {
	return a.svc.Files.Delete(id).SupportsAllDrives(true).Context(ctx).Do()
}

func (a *driveAPI) Download(ctx context.Context, id string) (io.ReadCloser, error) {
	resp, err := a.svc.Files.Get(id).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (a *driveAPI) Export(ctx context.Context, id, mimeType string) (io.ReadCloser, error) {
	resp, err := a.svc.Files.Export(id, mimeType).Context(ctx).Download()
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (a *driveAPI) About(ctx context.Context) (*drivev3.About, error) {
	return a.svc.About.Get().Fields(aboutFields).Context(ctx).Do()
}
