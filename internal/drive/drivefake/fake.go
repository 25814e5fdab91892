// Package drivefake is an in-memory drive.API for tests.
package drivefake

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"sync"

	drivev3 "google.golang.org/api/drive/v3"

	"github.com/JaimeStill/document-center/internal/drive"
)

// API stores entries and contents in memory. Listings are served in pages of
// PageSize entries regardless of the requested page size, so callers that
// stop after one page are caught.
type API struct {
	PageSize int

	mu       sync.Mutex
	next     int
	entries  []drive.Entry
	content  map[string][]byte
	trashed  map[string]bool
	drives   []drive.Entry
	failures map[string]error
	calls    map[string]int
}

func New() *API {
	return &API{
		PageSize: 2,
		content:  make(map[string][]byte),
		trashed:  make(map[string]bool),
		failures: make(map[string]error),
		calls:    make(map[string]int),
	}
}

// Fail makes every subsequent call to op return err. A nil err clears it.
func (a *API) Fail(op string, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err == nil {
		delete(a.failures, op)
		return
	}
	a.failures[op] = err
}

// Calls reports how many times op was invoked.
func (a *API) Calls(op string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[op]
}

// AddDrive registers a shared drive.
func (a *API) AddDrive(name string) drive.Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	e := drive.Entry{ID: a.id("drive"), Name: name}
	a.drives = append(a.drives, e)
	return e
}

// Put stores an entry directly, returning it with an assigned id.
func (a *API) Put(e drive.Entry, content []byte) drive.Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	if e.ID == "" {
		e.ID = a.id("file")
	}
	e.Size = int64(len(content))
	a.entries = append(a.entries, e)
	if content != nil {
		a.content[e.ID] = content
	}
	return e
}

// Trash marks an entry as trashed so listings skip it.
func (a *API) Trash(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.trashed[id] = true
}

// Has reports whether an entry with id exists.
func (a *API) Has(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.index(id) >= 0
}

// Content returns the stored bytes for id.
func (a *API) Content(id string) []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.content[id]
}

func (a *API) ListDrives(ctx context.Context, name, pageToken string, pageSize int64) ([]drive.Entry, string, error) {
	if err := a.enter("drives.list"); err != nil {
		return nil, "", err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	var matches []drive.Entry
	for _, d := range a.drives {
		if d.Name == name {
			matches = append(matches, d)
		}
	}
	return a.page(matches, pageToken)
}

func (a *API) ListFiles(ctx context.Context, q drive.Query, pageToken string, pageSize int64) ([]drive.Entry, string, error) {
	if err := a.enter("files.list"); err != nil {
		return nil, "", err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	var matches []drive.Entry
	for _, e := range a.entries {
		if a.trashed[e.ID] {
			continue
		}
		if q.Name != "" && e.Name != q.Name {
			continue
		}
		if q.ParentID != "" && !slices.Contains(e.Parents, q.ParentID) {
			continue
		}
		matches = append(matches, e)
	}
	return a.page(matches, pageToken)
}

func (a *API) GetFile(ctx context.Context, id string) (drive.Entry, error) {
	if err := a.enter("files.get"); err != nil {
		return drive.Entry{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	i := a.index(id)
	if i < 0 {
		return drive.Entry{}, fmt.Errorf("file not found: %s", id)
	}
	return a.entries[i], nil
}

func (a *API) CreateFile(ctx context.Context, meta drive.Entry, content io.Reader) (drive.Entry, error) {
	if err := a.enter("files.create"); err != nil {
		return drive.Entry{}, err
	}

	var data []byte
	if content != nil {
		var err error
		if data, err = io.ReadAll(content); err != nil {
			return drive.Entry{}, err
		}
	}

	meta.ID = ""
	meta.CreatedTime = "2024-01-01T00:00:00.000Z"
	meta.ModifiedTime = meta.CreatedTime
	return a.Put(meta, data), nil
}

func (a *API) UpdateFile(ctx context.Context, id string, patch drive.Patch) (drive.Entry, error) {
	if err := a.enter("files.update"); err != nil {
		return drive.Entry{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	i := a.index(id)
	if i < 0 {
		return drive.Entry{}, fmt.Errorf("file not found: %s", id)
	}

	e := &a.entries[i]
	if patch.Name != "" {
		e.Name = patch.Name
	}
	if patch.RemoveParents != "" {
		e.Parents = slices.DeleteFunc(slices.Clone(e.Parents), func(p string) bool {
			return p == patch.RemoveParents
		})
	}
	if patch.AddParents != "" {
		e.Parents = append(e.Parents, patch.AddParents)
	}
	return *e, nil
}

func (a *API) DeleteFile(ctx context.Context, id string) error {
	if err := a.enter("files.delete"); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	i := a.index(id)
	if i < 0 {
		return fmt.Errorf("file not found: %s", id)
	}
	a.entries = slices.Delete(a.entries, i, i+1)
	delete(a.content, id)
	return nil
}

func (a *API) Download(ctx context.Context, id string) (io.ReadCloser, error) {
	if err := a.enter("files.download"); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	data, ok := a.content[id]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", id)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Export returns the stored bytes unchanged; conversion is the remote store's job.
func (a *API) Export(ctx context.Context, id, mimeType string) (io.ReadCloser, error) {
	if err := a.enter("files.export"); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	data, ok := a.content[id]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", id)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (a *API) About(ctx context.Context) (*drivev3.About, error) {
	if err := a.enter("about.get"); err != nil {
		return nil, err
	}
	return &drivev3.About{
		User:         &drivev3.User{DisplayName: "Fake Admin", EmailAddress: "admin@example.com"},
		StorageQuota: &drivev3.AboutStorageQuota{Limit: 1 << 30},
	}, nil
}

func (a *API) enter(op string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls[op]++
	return a.failures[op]
}

func (a *API) page(matches []drive.Entry, token string) ([]drive.Entry, string, error) {
	start := 0
	if token != "" {
		n, err := strconv.Atoi(token)
		if err != nil {
			return nil, "", fmt.Errorf("invalid page token %q", token)
		}
		start = n
	}

	size := max(a.PageSize, 1)
	end := min(start+size, len(matches))
	if start >= end {
		return []drive.Entry{}, "", nil
	}

	next := ""
	if end < len(matches) {
		next = strconv.Itoa(end)
	}
	return slices.Clone(matches[start:end]), next, nil
}

func (a *API) index(id string) int {
	return slices.IndexFunc(a.entries, func(e drive.Entry) bool { return e.ID == id })
}

func (a *API) id(prefix string) string {
	a.next++
	return prefix + "-" + strconv.Itoa(a.next)
}
