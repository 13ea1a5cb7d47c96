package storetest

import (
	"testing"
)

// runRefOpsTests runs the reference rewrite conformance tests.
func runRefOpsTests(t *testing.T, factory StoreFactory) {
	t.Run("UpdateDirectoryRef", func(t *testing.T) { testUpdateDirectoryRef(t, factory) })
	t.Run("UpdateFileRef", func(t *testing.T) { testUpdateFileRef(t, factory) })
}

func testUpdateDirectoryRef(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	top := createTestDir(t, store, nil, "top")
	mid := createTestDir(t, store, top, "mid")

	n, err := store.UpdateDirectoryRef(ctx, "top/mid", "dest/top/mid")
	if err != nil {
		t.Fatalf("UpdateDirectoryRef() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("UpdateDirectoryRef() updated %d, want 1", n)
	}

	got, err := store.GetDirectory(ctx, mid.ID)
	if err != nil {
		t.Fatalf("GetDirectory() failed: %v", err)
	}
	if got.RefID != "dest/top/mid" || got.Name != "mid" || got.ParentID != top.ID {
		t.Errorf("rewritten directory = %+v", got)
	}

	// The rewritten entry keeps its listing position and is still found by
	// name.
	if _, err := store.FindDirectory(ctx, top.ID, "mid"); err != nil {
		t.Errorf("FindDirectory() after rewrite failed: %v", err)
	}

	n, err = store.UpdateDirectoryRef(ctx, "nothing/here", "x")
	if err != nil {
		t.Fatalf("UpdateDirectoryRef(no match) failed: %v", err)
	}
	if n != 0 {
		t.Errorf("UpdateDirectoryRef(no match) updated %d, want 0", n)
	}
}

func testUpdateFileRef(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	dir := createTestDir(t, store, nil, "dir")
	file := createTestFile(t, store, dir, "leaf.txt")
	other := createTestFile(t, store, nil, "leaf.txt")

	n, err := store.UpdateFileRef(ctx, "dir/leaf.txt", "moved/dir/leaf.txt")
	if err != nil {
		t.Fatalf("UpdateFileRef() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("UpdateFileRef() updated %d, want 1", n)
	}

	got, err := store.GetFile(ctx, file.ID)
	if err != nil {
		t.Fatalf("GetFile() failed: %v", err)
	}
	if got.RefID != "moved/dir/leaf.txt" {
		t.Errorf("RefID = %q, want moved/dir/leaf.txt", got.RefID)
	}

	untouched, err := store.GetFile(ctx, other.ID)
	if err != nil {
		t.Fatalf("GetFile(other) failed: %v", err)
	}
	if untouched.RefID != "leaf.txt" {
		t.Errorf("unrelated RefID = %q, want leaf.txt", untouched.RefID)
	}
}
