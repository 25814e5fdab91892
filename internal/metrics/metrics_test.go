package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/document-center/internal/metrics"
)

func TestMiddleware_RecordsRequests(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := metrics.Middleware(mux)

	req := httptest.NewRequest(http.MethodGet, "/items/42", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}

	body := scrape(t)
	want := `document_center_http_requests_total{method="GET",path="GET /items/{id}",status="418"}`
	if !strings.Contains(body, want) {
		t.Errorf("metrics output missing %s", want)
	}
}

func TestRecorders_Exposed(t *testing.T) {
	metrics.RecordCacheLookup(metrics.CacheHit)
	metrics.RecordDriveOperation("files.list", 0, true)
	metrics.RecordDocumentUpload("poa")

	body := scrape(t)
	for _, want := range []string{
		`document_center_web_cache_lookups_total{result="hit"}`,
		`document_center_drive_operations_total{operation="files.list",status="success"}`,
		`document_center_documents_uploaded_total{category="poa"}`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}

func scrape(t *testing.T) string {
	t.Helper()

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	return string(body)
}
