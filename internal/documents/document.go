// Package documents ties remote objects to metadata records and classifies
// them by the category owning their folder.
package documents

import (
	"github.com/JaimeStill/document-center/internal/codec"
	"github.com/JaimeStill/document-center/internal/drive"
)

// Record is the metadata row persisted for each uploaded document. Field
// names are the stored column names.
type Record struct {
	DocumentID   string         `json:"DocumentID"`
	DocumentInfo map[string]any `json:"DocumentInfo"`
	FileInfo     drive.Entry    `json:"FileInfo"`
	Uploader     any            `json:"Uploader"`
	Category     string         `json:"Category"`
	PageCount    *int           `json:"PageCount,omitempty"`
}

// UploadCommand contains everything needed to file one document.
type UploadCommand struct {
	Name           string         `json:"file_name"`
	MimeType       string         `json:"mime_type"`
	Payload        codec.Payload  `json:"file_data"`
	ParentFolderID string         `json:"parent_folder_id"`
	DocumentInfo   map[string]any `json:"document_info"`
	Uploader       any            `json:"uploader"`
}

// DeleteCommand identifies a record and the category collection holding it.
type DeleteCommand struct {
	Document       Record `json:"document"`
	ParentFolderID string `json:"parent_folder_id"`
}

// ReadCommand filters records by field containment.
type ReadCommand struct {
	Query map[string]any `json:"query"`
}
