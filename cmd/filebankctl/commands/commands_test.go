package commands

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestParseMetadata(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "meta.json")
	if err := os.WriteFile(file, []byte(`{"owner":"alice","pages":3}`), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		raw     string
		sets    []string
		want    map[string]any
		wantErr bool
	}{
		{name: "empty", want: map[string]any{}},
		{
			name: "inline JSON",
			raw:  `{"owner":"alice"}`,
			want: map[string]any{"owner": "alice"},
		},
		{
			name: "file",
			raw:  "@" + file,
			want: map[string]any{"owner": "alice", "pages": float64(3)},
		},
		{
			name: "assignments decode JSON values",
			sets: []string{"count=3", "draft=true", "tags=[\"a\"]", "owner=bob"},
			want: map[string]any{"count": float64(3), "draft": true, "tags": []any{"a"}, "owner": "bob"},
		},
		{
			name: "assignment overrides JSON",
			raw:  `{"owner":"alice"}`,
			sets: []string{"owner=bob"},
			want: map[string]any{"owner": "bob"},
		},
		{name: "value with equals sign", sets: []string{"expr=a=b"}, want: map[string]any{"expr": "a=b"}},
		{name: "not an object", raw: `[1,2]`, wantErr: true},
		{name: "missing file", raw: "@" + filepath.Join(dir, "nope.json"), wantErr: true},
		{name: "missing equals", sets: []string{"owner"}, wantErr: true},
		{name: "empty key", sets: []string{"=x"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseMetadata(tt.raw, tt.sets)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseMetadata() = %v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseMetadata() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseMetadata() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeServerURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "localhost:8080", want: "http://localhost:8080"},
		{in: "https://files.example.com/", want: "https://files.example.com"},
		{in: "http://", wantErr: true},
	}

	for _, tt := range tests {
		got, err := normalizeServerURL(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("normalizeServerURL(%q) = %q, want error", tt.in, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("normalizeServerURL(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestContextNameFor(t *testing.T) {
	if got := contextNameFor("http://files.example.com:8080"); got != "files.example.com" {
		t.Errorf("contextNameFor() = %q", got)
	}
	if got := contextNameFor("::"); got != "default" {
		t.Errorf("contextNameFor() = %q, want default", got)
	}
}

func TestItemListRows(t *testing.T) {
	list := ItemList{
		{ID: "d1", Name: "docs", Type: "directory", UpdatedAt: time.Date(2025, 1, 2, 3, 4, 0, 0, time.Local)},
		{ID: "f1", Name: "a.txt", Type: "file", MimeType: "text/plain"},
	}

	rows := list.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "docs/" || rows[0][2] != "-" || rows[0][3] != "2025-01-02 03:04" {
		t.Errorf("directory row = %v", rows[0])
	}
	if rows[1][0] != "a.txt" || rows[1][2] != "text/plain" || rows[1][3] != "-" {
		t.Errorf("file row = %v", rows[1])
	}
	for _, r := range rows {
		if len(r) != len(list.Headers()) {
			t.Errorf("row %v does not match headers", r)
		}
	}
}
