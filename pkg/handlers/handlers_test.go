package handlers_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/document-center/pkg/envelope"
	"github.com/JaimeStill/document-center/pkg/errs"
	"github.com/JaimeStill/document-center/pkg/handlers"
)

type body struct {
	Status  string          `json:"status"`
	Content json.RawMessage `json:"content"`
}

func decode(t *testing.T, resp *http.Response) body {
	t.Helper()
	data, _ := io.ReadAll(resp.Body)
	var b body
	if err := json.Unmarshal(data, &b); err != nil {
		t.Fatalf("decode body %q: %v", data, err)
	}
	return b
}

func TestRespondJSON(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		data       any
		wantStatus int
		wantBody   string
	}{
		{
			"ok with map",
			http.StatusOK,
			map[string]string{"message": "hello"},
			http.StatusOK,
			`{"message":"hello"}`,
		},
		{
			"created with struct",
			http.StatusCreated,
			struct {
				ID   int    `json:"id"`
				Name string `json:"name"`
			}{1, "test"},
			http.StatusCreated,
			`{"id":1,"name":"test"}`,
		},
		{
			"ok with slice",
			http.StatusOK,
			[]int{1, 2, 3},
			http.StatusOK,
			`[1,2,3]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			handlers.RespondJSON(w, tt.status, tt.data)

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}

			contentType := resp.Header.Get("Content-Type")
			if contentType != "application/json" {
				t.Errorf("Content-Type = %q, want %q", contentType, "application/json")
			}

			data, _ := io.ReadAll(resp.Body)
			var got, want any
			json.Unmarshal(data, &got)
			json.Unmarshal([]byte(tt.wantBody), &want)

			gotJSON, _ := json.Marshal(got)
			wantJSON, _ := json.Marshal(want)
			if string(gotJSON) != string(wantJSON) {
				t.Errorf("body = %s, want %s", gotJSON, wantJSON)
			}
		})
	}
}

func TestRespondError(t *testing.T) {
	w := httptest.NewRecorder()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handlers.RespondError(w, logger, http.StatusBadRequest, errors.New("invalid input"))

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	b := decode(t, resp)
	if b.Status != "error" {
		t.Errorf("status field = %q, want error", b.Status)
	}
	if string(b.Content) != `"invalid input"` {
		t.Errorf("content = %s, want %q", b.Content, "invalid input")
	}
}

func TestRespondResult(t *testing.T) {
	tests := []struct {
		name        string
		result      envelope.Result[map[string]int]
		wantStatus  int
		wantField   string
		wantContent string
	}{
		{
			"success",
			envelope.Success(map[string]int{"n": 1}),
			http.StatusOK,
			"success",
			`{"n":1}`,
		},
		{
			"not found",
			envelope.Failure[map[string]int](fmt.Errorf("lookup: %w", errs.ErrNotFound)),
			http.StatusNotFound,
			"error",
			`"lookup: not found"`,
		},
		{
			"policy denied",
			envelope.Failure[map[string]int](errs.ErrPolicyDenied),
			http.StatusForbidden,
			"error",
			`"policy denied"`,
		},
		{
			"unclassified",
			envelope.Failure[map[string]int](errors.New("boom")),
			http.StatusInternalServerError,
			"error",
			`"boom"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			handlers.RespondResult(w, tt.result)

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}

			b := decode(t, resp)
			if b.Status != tt.wantField {
				t.Errorf("status field = %q, want %q", b.Status, tt.wantField)
			}
			if string(b.Content) != tt.wantContent {
				t.Errorf("content = %s, want %s", b.Content, tt.wantContent)
			}
		})
	}
}
