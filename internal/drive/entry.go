// Package drive is the gateway to the remote hierarchical object store
// (Google Drive v3). It paginates listings, moves bytes in chunks, and routes
// tabular payloads through the codec.
package drive

import (
	drivev3 "google.golang.org/api/drive/v3"
)

// FolderMimeType marks an entry as a folder.
const FolderMimeType = "application/vnd.google-apps.folder"

// Entry is a file or folder in the remote store. JSON names follow the
// remote store's own field names.
type Entry struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Parents      []string `json:"parents,omitempty"`
	MimeType     string   `json:"mimeType,omitempty"`
	Size         int64    `json:"size,omitempty,string"`
	CreatedTime  string   `json:"createdTime,omitempty"`
	ModifiedTime string   `json:"modifiedTime,omitempty"`
}

func (e Entry) IsFolder() bool {
	return e.MimeType == FolderMimeType
}

func fromFile(f *drivev3.File) Entry {
	return Entry{
		ID:           f.Id,
		Name:         f.Name,
		Parents:      f.Parents,
		MimeType:     f.MimeType,
		Size:         f.Size,
		CreatedTime:  f.CreatedTime,
		ModifiedTime: f.ModifiedTime,
	}
}

func fromDrive(d *drivev3.Drive) Entry {
	return Entry{
		ID:          d.Id,
		Name:        d.Name,
		CreatedTime: d.CreatedTime,
	}
}
