// Package browser fetches external pages through a disk-backed cache,
// honoring robots.txt for every request.
package browser

import (
	"fmt"

	"github.com/JaimeStill/document-center/pkg/errs"
)

var (
	ErrInvalidURL   = fmt.Errorf("browser: invalid url: %w", errs.ErrInvalidArgument)
	ErrPolicyDenied = fmt.Errorf("browser: disallowed by robots.txt: %w", errs.ErrPolicyDenied)
	ErrFetchFailed  = fmt.Errorf("browser: %w", errs.ErrFetchFailed)
)
