package storetest

import (
	"testing"

	"github.com/marmos91/filebank/pkg/metadata"
)

// StoreFactory creates a fresh Store instance for each test.
type StoreFactory func(t *testing.T) metadata.Store

// RunConformanceSuite runs the full conformance test suite against the provided
// store factory. Each test gets a fresh store instance to ensure isolation.
//
// The suite covers three categories:
//   - DirOps: directory CRUD, uniqueness, root scoping and listing order
//   - FileOps: the same contract for files
//   - RefOps: bulk reference rewrites
func RunConformanceSuite(t *testing.T, factory StoreFactory) {
	t.Helper()

	t.Run("DirOps", func(t *testing.T) {
		runDirOpsTests(t, factory)
	})

	t.Run("FileOps", func(t *testing.T) {
		runFileOpsTests(t, factory)
	})

	t.Run("RefOps", func(t *testing.T) {
		runRefOpsTests(t, factory)
	})
}

// createTestDir creates a directory whose RefID mirrors its name under the
// parent's RefID.
func createTestDir(t *testing.T, store metadata.Store, parent *metadata.Directory, name string) *metadata.Directory {
	t.Helper()

	dir := &metadata.Directory{Name: name, RefID: name}
	if parent != nil {
		dir.ParentID = parent.ID
		dir.RefID = parent.RefID + "/" + name
	}
	if err := store.CreateDirectory(t.Context(), dir); err != nil {
		t.Fatalf("CreateDirectory(%q) failed: %v", name, err)
	}
	if dir.ID == "" {
		t.Fatalf("CreateDirectory(%q) did not assign an ID", name)
	}
	return dir
}

// createTestFile creates a text file in the given directory (nil for root).
func createTestFile(t *testing.T, store metadata.Store, dir *metadata.Directory, name string) *metadata.File {
	t.Helper()

	file := &metadata.File{Name: name, RefID: name, MimeType: "text/plain"}
	if dir != nil {
		file.DirectoryID = dir.ID
		file.RefID = dir.RefID + "/" + name
	}
	if err := store.CreateFile(t.Context(), file); err != nil {
		t.Fatalf("CreateFile(%q) failed: %v", name, err)
	}
	if file.ID == "" {
		t.Fatalf("CreateFile(%q) did not assign an ID", name)
	}
	return file
}
