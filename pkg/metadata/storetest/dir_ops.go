package storetest

import (
	"errors"
	"testing"

	"github.com/marmos91/filebank/pkg/metadata"
)

// runDirOpsTests runs all directory operation conformance tests.
func runDirOpsTests(t *testing.T, factory StoreFactory) {
	t.Run("CreateAndGet", func(t *testing.T) { testCreateAndGetDirectory(t, factory) })
	t.Run("DuplicateSibling", func(t *testing.T) { testDuplicateDirectory(t, factory) })
	t.Run("SameNameDifferentParent", func(t *testing.T) { testSameNameDifferentParent(t, factory) })
	t.Run("FindScopedToParent", func(t *testing.T) { testFindDirectory(t, factory) })
	t.Run("ListInsertionOrder", func(t *testing.T) { testListDirectoriesOrder(t, factory) })
	t.Run("Update", func(t *testing.T) { testUpdateDirectory(t, factory) })
	t.Run("Delete", func(t *testing.T) { testDeleteDirectory(t, factory) })
}

// testCreateAndGetDirectory verifies a created directory round-trips with its
// metadata document.
func testCreateAndGetDirectory(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	dir := &metadata.Directory{
		Name:     "docs",
		RefID:    "docs",
		Metadata: metadata.Attributes{"owner": "alice", "tags": []any{"a", "b"}},
	}
	if err := store.CreateDirectory(ctx, dir); err != nil {
		t.Fatalf("CreateDirectory() failed: %v", err)
	}

	got, err := store.GetDirectory(ctx, dir.ID)
	if err != nil {
		t.Fatalf("GetDirectory() failed: %v", err)
	}
	if got.Name != "docs" || got.RefID != "docs" || got.ParentID != "" {
		t.Errorf("GetDirectory() = %+v", got)
	}
	if got.Metadata["owner"] != "alice" {
		t.Errorf("Metadata[owner] = %v, want alice", got.Metadata["owner"])
	}
	if tags, ok := got.Metadata["tags"].([]any); !ok || len(tags) != 2 {
		t.Errorf("Metadata[tags] = %v, want [a b]", got.Metadata["tags"])
	}

	if _, err := store.GetDirectory(ctx, "missing"); !errors.Is(err, metadata.ErrNotFound) {
		t.Errorf("GetDirectory(missing) error = %v, want ErrNotFound", err)
	}
}

// testDuplicateDirectory verifies (parent, name) uniqueness, at root and
// below, leaving the first entry untouched.
func testDuplicateDirectory(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	first := createTestDir(t, store, nil, "dup")

	err := store.CreateDirectory(ctx, &metadata.Directory{Name: "dup", RefID: "other"})
	if !errors.Is(err, metadata.ErrDuplicate) {
		t.Fatalf("CreateDirectory(root dup) error = %v, want ErrDuplicate", err)
	}

	child := createTestDir(t, store, first, "child")
	err = store.CreateDirectory(ctx, &metadata.Directory{Name: "child", RefID: "x", ParentID: first.ID})
	if !errors.Is(err, metadata.ErrDuplicate) {
		t.Fatalf("CreateDirectory(nested dup) error = %v, want ErrDuplicate", err)
	}

	got, err := store.GetDirectory(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetDirectory() failed: %v", err)
	}
	if got.RefID != "dup" {
		t.Errorf("first RefID = %q, want dup", got.RefID)
	}

	dirs, err := store.ListDirectories(ctx, "")
	if err != nil {
		t.Fatalf("ListDirectories() failed: %v", err)
	}
	if len(dirs) != 1 {
		t.Errorf("root has %d directories, want 1", len(dirs))
	}
	if _, err := store.GetDirectory(ctx, child.ID); err != nil {
		t.Errorf("child lost after rejected duplicate: %v", err)
	}
}

func testSameNameDifferentParent(t *testing.T, factory StoreFactory) {
	store := factory(t)

	a := createTestDir(t, store, nil, "a")
	b := createTestDir(t, store, nil, "b")
	createTestDir(t, store, a, "same")
	createTestDir(t, store, b, "same")
	createTestDir(t, store, nil, "same")
}

// testFindDirectory verifies lookups match exactly on parent and name.
func testFindDirectory(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	top := createTestDir(t, store, nil, "top")
	nested := createTestDir(t, store, top, "nested")

	got, err := store.FindDirectory(ctx, top.ID, "nested")
	if err != nil {
		t.Fatalf("FindDirectory() failed: %v", err)
	}
	if got.ID != nested.ID {
		t.Errorf("FindDirectory() ID = %q, want %q", got.ID, nested.ID)
	}

	got, err = store.FindDirectory(ctx, "", "top")
	if err != nil {
		t.Fatalf("FindDirectory(root) failed: %v", err)
	}
	if got.ID != top.ID {
		t.Errorf("FindDirectory(root) ID = %q, want %q", got.ID, top.ID)
	}

	if _, err := store.FindDirectory(ctx, "", "nested"); !errors.Is(err, metadata.ErrNotFound) {
		t.Errorf("FindDirectory(root, nested) error = %v, want ErrNotFound", err)
	}
	if _, err := store.FindDirectory(ctx, top.ID, "Nested"); !errors.Is(err, metadata.ErrNotFound) {
		t.Errorf("FindDirectory is not exact: error = %v", err)
	}
}

// testListDirectoriesOrder verifies listings follow insertion order, not
// name order.
func testListDirectoriesOrder(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	parent := createTestDir(t, store, nil, "parent")
	want := []string{"zeta", "alpha", "mu"}
	for _, name := range want {
		createTestDir(t, store, parent, name)
	}
	createTestDir(t, store, nil, "sibling")

	dirs, err := store.ListDirectories(ctx, parent.ID)
	if err != nil {
		t.Fatalf("ListDirectories() failed: %v", err)
	}
	if len(dirs) != len(want) {
		t.Fatalf("ListDirectories() returned %d entries, want %d", len(dirs), len(want))
	}
	for i, d := range dirs {
		if d.Name != want[i] {
			t.Errorf("dirs[%d] = %q, want %q", i, d.Name, want[i])
		}
	}

	empty, err := store.ListDirectories(ctx, dirs[0].ID)
	if err != nil {
		t.Fatalf("ListDirectories(empty) failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("ListDirectories(empty) = %d entries, want 0", len(empty))
	}
}

func testUpdateDirectory(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	a := createTestDir(t, store, nil, "a")
	b := createTestDir(t, store, nil, "b")
	moved := createTestDir(t, store, a, "moved")

	moved.Name = "renamed"
	moved.RefID = "b/renamed"
	moved.ParentID = b.ID
	moved.Metadata = metadata.Attributes{"k": "v"}
	if err := store.UpdateDirectory(ctx, moved); err != nil {
		t.Fatalf("UpdateDirectory() failed: %v", err)
	}

	got, err := store.FindDirectory(ctx, b.ID, "renamed")
	if err != nil {
		t.Fatalf("FindDirectory() after update failed: %v", err)
	}
	if got.RefID != "b/renamed" || got.Metadata["k"] != "v" {
		t.Errorf("updated directory = %+v", got)
	}
	if _, err := store.FindDirectory(ctx, a.ID, "moved"); !errors.Is(err, metadata.ErrNotFound) {
		t.Errorf("old location still resolves: %v", err)
	}

	// Updating into an occupied name is a duplicate.
	clash := createTestDir(t, store, b, "clash")
	clash.Name = "renamed"
	if err := store.UpdateDirectory(ctx, clash); !errors.Is(err, metadata.ErrDuplicate) {
		t.Errorf("UpdateDirectory(clash) error = %v, want ErrDuplicate", err)
	}

	if err := store.UpdateDirectory(ctx, &metadata.Directory{ID: "missing", Name: "x"}); !errors.Is(err, metadata.ErrNotFound) {
		t.Errorf("UpdateDirectory(missing) error = %v, want ErrNotFound", err)
	}
}

func testDeleteDirectory(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	dir := createTestDir(t, store, nil, "gone")
	if err := store.DeleteDirectory(ctx, dir.ID); err != nil {
		t.Fatalf("DeleteDirectory() failed: %v", err)
	}
	if _, err := store.GetDirectory(ctx, dir.ID); !errors.Is(err, metadata.ErrNotFound) {
		t.Errorf("GetDirectory() after delete error = %v, want ErrNotFound", err)
	}
	if err := store.DeleteDirectory(ctx, dir.ID); !errors.Is(err, metadata.ErrNotFound) {
		t.Errorf("second DeleteDirectory() error = %v, want ErrNotFound", err)
	}

	// The name is free again.
	createTestDir(t, store, nil, "gone")
}
