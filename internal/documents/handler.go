package documents

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/document-center/internal/tablestore"
	"github.com/JaimeStill/document-center/pkg/envelope"
	"github.com/JaimeStill/document-center/pkg/errs"
	"github.com/JaimeStill/document-center/pkg/handlers"
	"github.com/JaimeStill/document-center/pkg/routes"
)

// Handler exposes the document lifecycle over HTTP. Every response is an
// envelope.
type Handler struct {
	sys    System
	logger *slog.Logger
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "documents"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/document_center",
		Description: "Document filing, retrieval and removal",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/get_folder_dictionary", Handler: h.Folders},
			{Method: "POST", Pattern: "/read", Handler: h.Read},
			{Method: "POST", Pattern: "/delete", Handler: h.Delete},
			{Method: "POST", Pattern: "/upload", Handler: h.Upload},
		},
	}
}

func (h *Handler) Folders(w http.ResponseWriter, r *http.Request) {
	handlers.RespondResult(w, envelope.Success(h.sys.Folders()))
}

func (h *Handler) Read(w http.ResponseWriter, r *http.Request) {
	var cmd ReadCommand
	if err := decodeBody(r, &cmd, true); err != nil {
		handlers.RespondError(w, h.logger, errs.HTTPStatus(err), err)
		return
	}

	result := envelope.Capture(h.logger, "documents.read", func() (map[string][]tablestore.Row, error) {
		return h.sys.ReadAll(r.Context(), cmd.Query)
	})
	handlers.RespondResult(w, result)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	var cmd DeleteCommand
	if err := decodeBody(r, &cmd, false); err != nil {
		handlers.RespondError(w, h.logger, errs.HTTPStatus(err), err)
		return
	}

	result := envelope.Done(h.logger, "documents.delete", func() error {
		return h.sys.Delete(r.Context(), cmd.Document, cmd.ParentFolderID)
	})
	handlers.RespondResult(w, result)
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	var cmd UploadCommand
	if err := decodeBody(r, &cmd, false); err != nil {
		handlers.RespondError(w, h.logger, errs.HTTPStatus(err), err)
		return
	}

	result := envelope.Capture(h.logger, "documents.upload", func() (*Record, error) {
		return h.sys.Upload(r.Context(), cmd)
	})
	handlers.RespondResult(w, result)
}

// decodeBody reads a JSON request body. Malformed input is an invalid
// argument; an empty body is accepted only when allowEmpty is set.
func decodeBody(r *http.Request, v any, allowEmpty bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF) && allowEmpty:
		return nil
	case errors.Is(err, errs.ErrInvalidArgument):
		return err
	default:
		return fmt.Errorf("decode request: %w: %w", errs.ErrInvalidArgument, err)
	}
}
