// Package handlers provides HTTP response utilities for JSON APIs.
// These stateless functions standardize response formatting across handlers.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/document-center/pkg/envelope"
	"github.com/JaimeStill/document-center/pkg/errs"
)

// RespondJSON writes a JSON response with the given status code and data.
// It sets the Content-Type header to application/json.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs the error and writes an error envelope.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	logger.Error("handler error", "error", err, "status", status)
	RespondJSON(w, status, envelope.Failure[any](err))
}

// RespondResult writes the envelope with the status code its error maps to.
func RespondResult[T any](w http.ResponseWriter, result envelope.Result[T]) {
	RespondJSON(w, errs.HTTPStatus(result.Err), result)
}
