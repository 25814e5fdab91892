// Package errs defines the error taxonomy shared by every document-center system.
// Packages wrap these sentinels so callers can classify failures with errors.Is
// regardless of which layer produced them.
package errs

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound indicates a lookup yielded zero results.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument indicates a missing required identifier or an unsupported request.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupportedFormat indicates the codec has no handler for a mime type.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrPolicyDenied indicates robots exclusion or an equivalent policy refused the request.
	ErrPolicyDenied = errors.New("policy denied")

	// ErrFetchFailed indicates a non-success transport response.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrUpstream indicates an error surfaced by the remote store or the table store.
	ErrUpstream = errors.New("upstream failure")
)

// HTTPStatus converts a taxonomy error to the status code returned at the HTTP boundary.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrPolicyDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrFetchFailed), errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
