package storetest

import (
	"errors"
	"testing"

	"github.com/marmos91/filebank/pkg/metadata"
)

// runFileOpsTests runs all file operation conformance tests.
func runFileOpsTests(t *testing.T, factory StoreFactory) {
	t.Run("CreateAndGet", func(t *testing.T) { testCreateAndGetFile(t, factory) })
	t.Run("DuplicateSibling", func(t *testing.T) { testDuplicateFile(t, factory) })
	t.Run("FileAndDirectoryShareName", func(t *testing.T) { testFileAndDirectorySameName(t, factory) })
	t.Run("ListInsertionOrder", func(t *testing.T) { testListFilesOrder(t, factory) })
	t.Run("Update", func(t *testing.T) { testUpdateFile(t, factory) })
	t.Run("Delete", func(t *testing.T) { testDeleteFile(t, factory) })
}

func testCreateAndGetFile(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	dir := createTestDir(t, store, nil, "img")
	file := &metadata.File{
		Name:        "cat.jpg",
		RefID:       "img/cat.jpg",
		DirectoryID: dir.ID,
		MimeType:    "image/jpeg",
		Metadata:    metadata.Attributes{"width": float64(640)},
	}
	if err := store.CreateFile(ctx, file); err != nil {
		t.Fatalf("CreateFile() failed: %v", err)
	}

	got, err := store.GetFile(ctx, file.ID)
	if err != nil {
		t.Fatalf("GetFile() failed: %v", err)
	}
	if got.MimeType != "image/jpeg" || got.DirectoryID != dir.ID || got.RefID != "img/cat.jpg" {
		t.Errorf("GetFile() = %+v", got)
	}
	if got.Metadata["width"] != float64(640) {
		t.Errorf("Metadata[width] = %v, want 640", got.Metadata["width"])
	}

	found, err := store.FindFile(ctx, dir.ID, "cat.jpg")
	if err != nil {
		t.Fatalf("FindFile() failed: %v", err)
	}
	if found.ID != file.ID {
		t.Errorf("FindFile() ID = %q, want %q", found.ID, file.ID)
	}
	if _, err := store.FindFile(ctx, "", "cat.jpg"); !errors.Is(err, metadata.ErrNotFound) {
		t.Errorf("FindFile(root) error = %v, want ErrNotFound", err)
	}
	if _, err := store.GetFile(ctx, "missing"); !errors.Is(err, metadata.ErrNotFound) {
		t.Errorf("GetFile(missing) error = %v, want ErrNotFound", err)
	}
}

func testDuplicateFile(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	first := createTestFile(t, store, nil, "a.txt")
	err := store.CreateFile(ctx, &metadata.File{Name: "a.txt", RefID: "elsewhere", MimeType: "text/plain"})
	if !errors.Is(err, metadata.ErrDuplicate) {
		t.Fatalf("CreateFile(dup) error = %v, want ErrDuplicate", err)
	}

	got, err := store.GetFile(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetFile() failed: %v", err)
	}
	if got.RefID != "a.txt" {
		t.Errorf("first RefID = %q, want a.txt", got.RefID)
	}
}

// testFileAndDirectorySameName verifies files and directories are separate
// uniqueness scopes.
func testFileAndDirectorySameName(t *testing.T, factory StoreFactory) {
	store := factory(t)

	createTestDir(t, store, nil, "both")
	createTestFile(t, store, nil, "both")
}

func testListFilesOrder(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	want := []string{"c.txt", "a.txt", "b.txt"}
	for _, name := range want {
		createTestFile(t, store, nil, name)
	}
	dir := createTestDir(t, store, nil, "sub")
	createTestFile(t, store, dir, "nested.txt")

	files, err := store.ListFiles(ctx, "")
	if err != nil {
		t.Fatalf("ListFiles() failed: %v", err)
	}
	if len(files) != len(want) {
		t.Fatalf("ListFiles() returned %d entries, want %d", len(files), len(want))
	}
	for i, f := range files {
		if f.Name != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, f.Name, want[i])
		}
	}
}

func testUpdateFile(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	dest := createTestDir(t, store, nil, "dest")
	file := createTestFile(t, store, nil, "f.txt")

	file.DirectoryID = dest.ID
	file.RefID = "dest/f.txt"
	file.Metadata = metadata.Attributes{"moved": true}
	if err := store.UpdateFile(ctx, file); err != nil {
		t.Fatalf("UpdateFile() failed: %v", err)
	}

	got, err := store.FindFile(ctx, dest.ID, "f.txt")
	if err != nil {
		t.Fatalf("FindFile() after update failed: %v", err)
	}
	if got.RefID != "dest/f.txt" || got.Metadata["moved"] != true {
		t.Errorf("updated file = %+v", got)
	}

	if err := store.UpdateFile(ctx, &metadata.File{ID: "missing", Name: "x"}); !errors.Is(err, metadata.ErrNotFound) {
		t.Errorf("UpdateFile(missing) error = %v, want ErrNotFound", err)
	}
}

func testDeleteFile(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	file := createTestFile(t, store, nil, "bye.txt")
	if err := store.DeleteFile(ctx, file.ID); err != nil {
		t.Fatalf("DeleteFile() failed: %v", err)
	}
	if _, err := store.FindFile(ctx, "", "bye.txt"); !errors.Is(err, metadata.ErrNotFound) {
		t.Errorf("FindFile() after delete error = %v, want ErrNotFound", err)
	}
	if err := store.DeleteFile(ctx, file.ID); !errors.Is(err, metadata.ErrNotFound) {
		t.Errorf("second DeleteFile() error = %v, want ErrNotFound", err)
	}
}
