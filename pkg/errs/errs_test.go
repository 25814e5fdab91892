package errs_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/JaimeStill/document-center/pkg/errs"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", errs.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("drive: %w", errs.ErrNotFound), http.StatusNotFound},
		{"invalid argument", errs.ErrInvalidArgument, http.StatusBadRequest},
		{"unsupported format", errs.ErrUnsupportedFormat, http.StatusUnsupportedMediaType},
		{"policy denied", errs.ErrPolicyDenied, http.StatusForbidden},
		{"fetch failed", errs.ErrFetchFailed, http.StatusBadGateway},
		{"upstream", fmt.Errorf("%w: %w", errs.ErrUpstream, errors.New("boom")), http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errs.HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
