package documents

import (
	"context"

	"github.com/JaimeStill/document-center/internal/tablestore"
)

// System defines the document lifecycle. Deletes touch two stores and are
// not atomic: metadata is removed before the remote object.
type System interface {
	Folders() []Category
	ReadAll(ctx context.Context, query map[string]any) (map[string][]tablestore.Row, error)
	Delete(ctx context.Context, record Record, parentFolderID string) error
	Upload(ctx context.Context, cmd UploadCommand) (*Record, error)
}
