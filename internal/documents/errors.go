package documents

import (
	"fmt"

	"github.com/JaimeStill/document-center/pkg/errs"
)

var (
	ErrNoDocuments   = fmt.Errorf("documents: no files found: %w", errs.ErrNotFound)
	ErrInvalidRecord = fmt.Errorf("documents: invalid record: %w", errs.ErrInvalidArgument)
)
