// Package codec converts between tabular records, base64 payloads, and the raw
// bytes transferred to and from the remote store.
package codec

import (
	"fmt"

	"github.com/JaimeStill/document-center/pkg/errs"
)

var (
	// ErrUnsupportedFormat indicates no encoder or decoder exists for the mime type.
	ErrUnsupportedFormat = fmt.Errorf("codec: %w", errs.ErrUnsupportedFormat)

	// ErrInvalidPayload indicates the payload could not be interpreted.
	ErrInvalidPayload = fmt.Errorf("codec: invalid payload: %w", errs.ErrInvalidArgument)
)
