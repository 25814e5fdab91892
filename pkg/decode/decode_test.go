package decode_test

import (
	"testing"

	"github.com/JaimeStill/document-center/pkg/decode"
)

type entry struct {
	ID   string `json:"id"`
	Size int64  `json:"size,string"`
}

type record struct {
	DocumentID string `json:"DocumentID"`
	FileInfo   entry  `json:"FileInfo"`
	PageCount  *int   `json:"PageCount,omitempty"`
}

func TestToMap(t *testing.T) {
	m, err := decode.ToMap(record{DocumentID: "20240101120000", FileInfo: entry{ID: "f1", Size: 12}})
	if err != nil {
		t.Fatalf("ToMap() error = %v", err)
	}

	if m["DocumentID"] != "20240101120000" {
		t.Errorf("DocumentID = %v", m["DocumentID"])
	}

	info, ok := m["FileInfo"].(map[string]any)
	if !ok {
		t.Fatalf("FileInfo = %T, want map", m["FileInfo"])
	}
	if info["size"] != "12" {
		t.Errorf("size = %v, want string 12", info["size"])
	}

	if _, ok := m["PageCount"]; ok {
		t.Error("omitted field present in map")
	}
}

func TestToMap_NotObject(t *testing.T) {
	if _, err := decode.ToMap([]int{1, 2}); err == nil {
		t.Error("ToMap() of slice should fail")
	}
	if _, err := decode.ToMap(func() {}); err == nil {
		t.Error("ToMap() of func should fail")
	}
}

func TestFromMap(t *testing.T) {
	tests := []struct {
		name    string
		data    map[string]any
		want    record
		wantErr bool
	}{
		{
			name: "nested",
			data: map[string]any{"DocumentID": "1", "FileInfo": map[string]any{"id": "f", "size": "3"}},
			want: record{DocumentID: "1", FileInfo: entry{ID: "f", Size: 3}},
		},
		{
			name: "missing fields",
			data: map[string]any{},
			want: record{},
		},
		{
			name:    "wrong type",
			data:    map[string]any{"DocumentID": 5},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decode.FromMap[record](tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromMap() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && (got.DocumentID != tt.want.DocumentID || got.FileInfo != tt.want.FileInfo) {
				t.Errorf("FromMap() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
