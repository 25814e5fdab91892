package drive_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/JaimeStill/document-center/internal/drive"
)

func TestQuery_String(t *testing.T) {
	tests := []struct {
		name  string
		query drive.Query
		want  string
	}{
		{"children", drive.Query{ParentID: "p1"}, "'p1' in parents and trashed = false"},
		{"by name", drive.Query{Name: "report", ParentID: "p1"}, "name = 'report' and 'p1' in parents and trashed = false"},
		{"escaped", drive.Query{Name: `O'Brien\notes`}, `name = 'O\'Brien\\notes' and trashed = false`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func newAPI(t *testing.T, handler http.HandlerFunc) drive.API {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := drivev3.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("NewService() failed: %v", err)
	}
	return drive.NewAPI(svc, srv.Client(), 1<<20)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func TestDriveAPI_ListFiles(t *testing.T) {
	api := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files" {
			http.NotFound(w, r)
			return
		}

		q := r.URL.Query()
		if got, want := q.Get("q"), "'root' in parents and trashed = false"; got != want {
			t.Errorf("q = %q, want %q", got, want)
		}
		if q.Get("supportsAllDrives") != "true" || q.Get("includeItemsFromAllDrives") != "true" {
			t.Errorf("shared drive flags missing: %v", q)
		}
		if q.Get("pageSize") != "50" {
			t.Errorf("pageSize = %q, want 50", q.Get("pageSize"))
		}

		if q.Get("pageToken") == "" {
			writeJSON(w, map[string]any{
				"nextPageToken": "page-2",
				"files":         []map[string]any{{"id": "1", "name": "a.csv", "mimeType": "text/csv", "size": "12"}},
			})
			return
		}
		writeJSON(w, map[string]any{"files": []map[string]any{{"id": "2", "name": "b"}}})
	})

	ctx := context.Background()
	first, next, err := api.ListFiles(ctx, drive.Query{ParentID: "root"}, "", 50)
	if err != nil {
		t.Fatalf("ListFiles() failed: %v", err)
	}
	if next != "page-2" || len(first) != 1 || first[0].Size != 12 {
		t.Fatalf("first page = %+v, next = %q", first, next)
	}

	second, next, err := api.ListFiles(ctx, drive.Query{ParentID: "root"}, next, 50)
	if err != nil {
		t.Fatalf("ListFiles() page 2 failed: %v", err)
	}
	if next != "" || len(second) != 1 || second[0].ID != "2" {
		t.Errorf("second page = %+v, next = %q", second, next)
	}
}

func TestDriveAPI_DownloadAndDelete(t *testing.T) {
	deleted := false
	api := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/files/abc" && r.URL.Query().Get("alt") == "media":
			io.WriteString(w, "file-bytes")
		case r.Method == http.MethodDelete && r.URL.Path == "/files/abc":
			deleted = true
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, `{"error":{"code":404,"message":"File not found"}}`, http.StatusNotFound)
		}
	})

	ctx := context.Background()
	body, err := api.Download(ctx, "abc")
	if err != nil {
		t.Fatalf("Download() failed: %v", err)
	}
	data, _ := io.ReadAll(body)
	body.Close()
	if string(data) != "file-bytes" {
		t.Errorf("Download() = %q, want %q", data, "file-bytes")
	}

	if err := api.DeleteFile(ctx, "abc"); err != nil {
		t.Fatalf("DeleteFile() failed: %v", err)
	}
	if !deleted {
		t.Error("DeleteFile() did not reach the server")
	}

	if _, err := api.GetFile(ctx, "missing"); err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("GetFile(missing) error = %v, want 404", err)
	}
}

func TestDriveAPI_ListDrives(t *testing.T) {
	api := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/drives" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("q"); got != "name = 'Ops'" {
			t.Errorf("q = %q", got)
		}
		if got := r.URL.Query().Get("pageSize"); got != "100" {
			t.Errorf("pageSize = %q, want capped 100", got)
		}
		writeJSON(w, map[string]any{"drives": []map[string]any{{"id": "d1", "name": "Ops"}}})
	})

	drives, next, err := api.ListDrives(context.Background(), "Ops", "", 500)
	if err != nil {
		t.Fatalf("ListDrives() failed: %v", err)
	}
	if next != "" || len(drives) != 1 || drives[0].ID != "d1" {
		t.Errorf("ListDrives() = %+v, %q", drives, next)
	}
}

// uploadServer accepts resumable sessions. partial, when set, makes the first
// chunk persist only that many bytes.
type uploadServer struct {
	mu          sync.Mutex
	uploadTypes []string
	ranges      []string
	metadata    map[string]any
	received    bytes.Buffer
	partial     int
}

func (u *uploadServer) handle(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	defer u.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/upload/drive/v3/files":
		u.uploadTypes = append(u.uploadTypes, r.URL.Query().Get("uploadType"))
		json.NewDecoder(r.Body).Decode(&u.metadata)
		w.Header().Set("Location", "http://"+r.Host+"/upload/session/1")
		w.WriteHeader(http.StatusOK)

	case r.Method == http.MethodPut && r.URL.Path == "/upload/session/1":
		cr := r.Header.Get("Content-Range")
		u.ranges = append(u.ranges, cr)
		chunk, _ := io.ReadAll(r.Body)

		if u.partial > 0 && len(u.ranges) == 1 {
			chunk = chunk[:u.partial]
		}
		u.received.Write(chunk)

		if strings.HasSuffix(cr, "/*") {
			w.Header().Set("Range", fmt.Sprintf("bytes=0-%d", u.received.Len()-1))
			w.WriteHeader(308)
			return
		}
		writeJSON(w, map[string]any{
			"id":       "up1",
			"name":     u.metadata["name"],
			"mimeType": u.metadata["mimeType"],
			"parents":  u.metadata["parents"],
			"size":     fmt.Sprint(u.received.Len()),
		})

	default:
		http.Error(w, `{"error":{"code":400,"message":"unexpected request"}}`, http.StatusBadRequest)
	}
}

func TestDriveAPI_CreateFile_Resumable(t *testing.T) {
	const mib = 1 << 20

	tests := []struct {
		name       string
		size       int
		partial    int
		wantRanges []string
	}{
		{
			name:       "single small chunk",
			size:       6,
			wantRanges: []string{"bytes 0-5/6"},
		},
		{
			name: "multiple chunks",
			size: 2*mib + mib/2,
			wantRanges: []string{
				"bytes 0-1048575/*",
				"bytes 1048576-2097151/*",
				"bytes 2097152-2621439/2621440",
			},
		},
		{
			name: "exact multiple of chunk size",
			size: 2 * mib,
			wantRanges: []string{
				"bytes 0-1048575/*",
				"bytes 1048576-2097151/*",
				"bytes */2097152",
			},
		},
		{
			name:    "resends unpersisted bytes",
			size:    mib + 10,
			partial: mib / 2,
			wantRanges: []string{
				"bytes 0-1048575/*",
				"bytes 524288-1048585/1048586",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := &uploadServer{partial: tt.partial}
			api := newAPI(t, srv.handle)

			payload := bytes.Repeat([]byte("abcdefgh"), tt.size/8+1)[:tt.size]

			entry, err := api.CreateFile(context.Background(), drive.Entry{
				Name:     "report.csv",
				MimeType: "text/csv",
				Parents:  []string{"folder1"},
			}, bytes.NewReader(payload))
			if err != nil {
				t.Fatalf("CreateFile() failed: %v", err)
			}

			if len(srv.uploadTypes) != 1 || srv.uploadTypes[0] != "resumable" {
				t.Errorf("uploadType = %v, want [resumable]", srv.uploadTypes)
			}
			if !slicesEqual(srv.ranges, tt.wantRanges) {
				t.Errorf("Content-Range = %q, want %q", srv.ranges, tt.wantRanges)
			}
			if !bytes.Equal(srv.received.Bytes(), payload) {
				t.Errorf("received %d bytes, want the %d-byte payload", srv.received.Len(), len(payload))
			}
			if entry.ID != "up1" || entry.Name != "report.csv" || entry.Size != int64(tt.size) {
				t.Errorf("CreateFile() = %+v", entry)
			}
			if entry.MimeType != "text/csv" || len(entry.Parents) != 1 || entry.Parents[0] != "folder1" {
				t.Errorf("metadata not sent with session: %+v", entry)
			}
		})
	}
}

func TestDriveAPI_CreateFile_SessionRejected(t *testing.T) {
	api := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"insufficient permissions"}}`, http.StatusForbidden)
	})

	_, err := api.CreateFile(context.Background(), drive.Entry{Name: "a.csv"}, strings.NewReader("a\n1\n"))
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Errorf("CreateFile() error = %v, want 403", err)
	}
}

func slicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
