// Package backendtest provides a conformance suite shared by every
// content.Backend implementation.
package backendtest

import (
	"bytes"
	"errors"
	"io"
	"path"
	"sort"
	"strings"
	"testing"

	"github.com/marmos91/filebank/pkg/content"
)

// BackendFactory creates a fresh, empty Backend for each test.
// The factory receives *testing.T so it can use t.TempDir() and t.Cleanup().
type BackendFactory func(t *testing.T) content.Backend

// RunConformanceSuite runs the full conformance test suite against the
// provided backend factory. Each test gets a fresh backend.
//
// The suite covers:
//   - DirOps: mkdir, duplicate mkdir, rmdir of a populated tree, listing
//   - FileOps: create/read round trip, remove, existence checks
//   - MoveOps: file move, directory move with descendants, rename onto an
//     unmaterialized destination, nesting when the destination exists
func RunConformanceSuite(t *testing.T, factory BackendFactory) {
	t.Helper()

	t.Run("DirOps", func(t *testing.T) { runDirOpsTests(t, factory) })
	t.Run("FileOps", func(t *testing.T) { runFileOpsTests(t, factory) })
	t.Run("MoveOps", func(t *testing.T) { runMoveOpsTests(t, factory) })
}

// trimRef normalizes a reference for comparison across backends
// (object-store directory refs carry a trailing slash).
func trimRef(ref string) string {
	return strings.TrimSuffix(ref, "/")
}

func mkdir(t *testing.T, b content.Backend, parentRef, name string) content.Item {
	t.Helper()
	item, err := b.Mkdir(t.Context(), parentRef, name)
	if err != nil {
		t.Fatalf("Mkdir(%q, %q) failed: %v", parentRef, name, err)
	}
	return item
}

func createFile(t *testing.T, b content.Backend, dirRef, name string, data []byte) content.Item {
	t.Helper()
	item, err := b.CreateFile(t.Context(), dirRef, name, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("CreateFile(%q, %q) failed: %v", dirRef, name, err)
	}
	return item
}

func readAll(t *testing.T, b content.Backend, ref string) []byte {
	t.Helper()
	rc, err := b.GetContent(t.Context(), ref)
	if err != nil {
		t.Fatalf("GetContent(%q) failed: %v", ref, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll(%q) failed: %v", ref, err)
	}
	return data
}

func assertExists(t *testing.T, b content.Backend, ref string, want bool) {
	t.Helper()
	ok, err := b.Exists(t.Context(), ref)
	if err != nil {
		t.Fatalf("Exists(%q) failed: %v", ref, err)
	}
	if ok != want {
		t.Errorf("Exists(%q) = %v, want %v", ref, ok, want)
	}
}

// ============================================================================
// Directory operations
// ============================================================================

func runDirOpsTests(t *testing.T, factory BackendFactory) {
	t.Run("Mkdir", func(t *testing.T) { testMkdir(t, factory) })
	t.Run("MkdirNested", func(t *testing.T) { testMkdirNested(t, factory) })
	t.Run("MkdirDuplicate", func(t *testing.T) { testMkdirDuplicate(t, factory) })
	t.Run("RmdirRemovesTree", func(t *testing.T) { testRmdirRemovesTree(t, factory) })
	t.Run("List", func(t *testing.T) { testList(t, factory) })
}

func testMkdir(t *testing.T, factory BackendFactory) {
	b := factory(t)

	item := mkdir(t, b, "", "subdir")
	if item.Name != "subdir" {
		t.Errorf("Name = %q, want %q", item.Name, "subdir")
	}
	if item.Type != content.TypeDirectory {
		t.Errorf("Type = %q, want %q", item.Type, content.TypeDirectory)
	}
	if trimRef(item.RefID) != "subdir" {
		t.Errorf("RefID = %q, want subdir", item.RefID)
	}
	assertExists(t, b, item.RefID, true)
}

func testMkdirNested(t *testing.T, factory BackendFactory) {
	b := factory(t)

	parent := mkdir(t, b, "", "subdir")
	child := mkdir(t, b, parent.RefID, "temp")

	if trimRef(child.RefID) != "subdir/temp" {
		t.Errorf("RefID = %q, want subdir/temp", child.RefID)
	}
	assertExists(t, b, child.RefID, true)
}

func testMkdirDuplicate(t *testing.T, factory BackendFactory) {
	b := factory(t)

	first := mkdir(t, b, "", "dup")
	_, err := b.Mkdir(t.Context(), "", "dup")
	if !errors.Is(err, content.ErrAlreadyExists) {
		t.Fatalf("second Mkdir error = %v, want ErrAlreadyExists", err)
	}
	assertExists(t, b, first.RefID, true)
}

func testRmdirRemovesTree(t *testing.T, factory BackendFactory) {
	b := factory(t)

	dir := mkdir(t, b, "", "gone")
	sub := mkdir(t, b, dir.RefID, "inner")
	file := createFile(t, b, sub.RefID, "f.txt", []byte("x"))

	if err := b.Rmdir(t.Context(), dir.RefID); err != nil {
		t.Fatalf("Rmdir() failed: %v", err)
	}

	assertExists(t, b, dir.RefID, false)
	assertExists(t, b, sub.RefID, false)
	assertExists(t, b, file.RefID, false)
}

func testList(t *testing.T, factory BackendFactory) {
	b := factory(t)

	dir := mkdir(t, b, "", "listme")
	mkdir(t, b, dir.RefID, "child")
	createFile(t, b, dir.RefID, "a.txt", []byte("a"))
	createFile(t, b, dir.RefID, "b.txt", []byte("b"))

	items, err := b.List(t.Context(), dir.RefID)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}

	var names []string
	types := map[string]content.ItemType{}
	for _, it := range items {
		names = append(names, it.Name)
		types[it.Name] = it.Type
	}
	sort.Strings(names)

	want := []string{"a.txt", "b.txt", "child"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("List() names = %v, want %v", names, want)
	}
	if types["child"] != content.TypeDirectory || types["a.txt"] != content.TypeFile {
		t.Errorf("List() types = %v", types)
	}
}

// ============================================================================
// File operations
// ============================================================================

func runFileOpsTests(t *testing.T, factory BackendFactory) {
	t.Run("RoundTrip", func(t *testing.T) { testRoundTrip(t, factory) })
	t.Run("CreateAtRoot", func(t *testing.T) { testCreateAtRoot(t, factory) })
	t.Run("RemoveFile", func(t *testing.T) { testRemoveFile(t, factory) })
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, factory) })
}

func testRoundTrip(t *testing.T, factory BackendFactory) {
	b := factory(t)

	dir := mkdir(t, b, "", "subdir2")
	data := bytes.Repeat([]byte("filebank\x00\xff"), 4096)
	file := createFile(t, b, dir.RefID, "test.txt", data)

	if file.RefID != "subdir2/test.txt" {
		t.Errorf("RefID = %q, want subdir2/test.txt", file.RefID)
	}
	if file.Type != content.TypeFile {
		t.Errorf("Type = %q, want file", file.Type)
	}
	if got := readAll(t, b, file.RefID); !bytes.Equal(got, data) {
		t.Errorf("content mismatch: got %d bytes, want %d", len(got), len(data))
	}
}

func testCreateAtRoot(t *testing.T, factory BackendFactory) {
	b := factory(t)

	createFile(t, b, "", "root.txt", []byte("root"))
	assertExists(t, b, "root.txt", true)
}

func testRemoveFile(t *testing.T, factory BackendFactory) {
	b := factory(t)

	file := createFile(t, b, "", "bye.txt", []byte("bye"))
	if err := b.RemoveFile(t.Context(), file.RefID); err != nil {
		t.Fatalf("RemoveFile() failed: %v", err)
	}
	assertExists(t, b, file.RefID, false)
}

func testGetMissing(t *testing.T, factory BackendFactory) {
	b := factory(t)

	_, err := b.GetContent(t.Context(), "nope.txt")
	if !errors.Is(err, content.ErrNotFound) {
		t.Errorf("GetContent() error = %v, want ErrNotFound", err)
	}
}

// ============================================================================
// Move operations
// ============================================================================

func runMoveOpsTests(t *testing.T, factory BackendFactory) {
	t.Run("MoveFile", func(t *testing.T) { testMoveFile(t, factory) })
	t.Run("MoveDirectory", func(t *testing.T) { testMoveDirectory(t, factory) })
	t.Run("RenameDirectory", func(t *testing.T) { testRenameDirectory(t, factory) })
}

func testMoveFile(t *testing.T, factory BackendFactory) {
	b := factory(t)

	data := []byte("\x89PNG fake image")
	file := createFile(t, b, "", "moveme.jpg", data)
	dest := mkdir(t, b, "", "movehere")

	moved, err := b.MoveFile(t.Context(), file, dest)
	if err != nil {
		t.Fatalf("MoveFile() failed: %v", err)
	}

	if want := path.Join(dest.RefID, "moveme.jpg"); moved.RefID != want {
		t.Errorf("RefID = %q, want %q", moved.RefID, want)
	}
	if moved.Name != "moveme.jpg" || moved.Type != content.TypeFile {
		t.Errorf("moved = %+v", moved)
	}

	assertExists(t, b, file.RefID, false)
	assertExists(t, b, moved.RefID, true)
	if got := readAll(t, b, moved.RefID); !bytes.Equal(got, data) {
		t.Error("content changed during move")
	}
}

func testMoveDirectory(t *testing.T, factory BackendFactory) {
	b := factory(t)

	src := mkdir(t, b, "", "movethisdir")
	file := createFile(t, b, src.RefID, "moveme.jpg", []byte("jpg"))
	dest := mkdir(t, b, "", "moveheredir")

	res, err := b.MoveDirectory(t.Context(), src, dest)
	if err != nil {
		t.Fatalf("MoveDirectory() failed: %v", err)
	}

	if got := trimRef(res.Directory.RefID); got != "moveheredir/movethisdir" {
		t.Errorf("Directory.RefID = %q, want moveheredir/movethisdir", res.Directory.RefID)
	}
	if res.Directory.Name != "movethisdir" {
		t.Errorf("Directory.Name = %q, want movethisdir", res.Directory.Name)
	}

	var fileChange *content.Change
	for i := range res.Items {
		if res.Items[i].Old.RefID == file.RefID {
			fileChange = &res.Items[i]
		}
	}
	if fileChange == nil {
		t.Fatalf("no change reported for %q in %+v", file.RefID, res.Items)
	}
	if fileChange.New.RefID != "moveheredir/movethisdir/moveme.jpg" {
		t.Errorf("file new ref = %q, want moveheredir/movethisdir/moveme.jpg", fileChange.New.RefID)
	}

	assertExists(t, b, src.RefID, false)
	assertExists(t, b, file.RefID, false)
	assertExists(t, b, res.Directory.RefID, true)
	assertExists(t, b, fileChange.New.RefID, true)
}

func testRenameDirectory(t *testing.T, factory BackendFactory) {
	b := factory(t)

	src := mkdir(t, b, "", "oldname")
	createFile(t, b, src.RefID, "keep.txt", []byte("keep"))

	res, err := b.MoveDirectory(t.Context(), src, content.Item{Name: "newname", Type: content.TypeDirectory})
	if err != nil {
		t.Fatalf("MoveDirectory() failed: %v", err)
	}

	if got := trimRef(res.Directory.RefID); got != "newname" {
		t.Errorf("Directory.RefID = %q, want newname", res.Directory.RefID)
	}
	if res.Directory.Name != "newname" {
		t.Errorf("Directory.Name = %q, want newname", res.Directory.Name)
	}
	assertExists(t, b, src.RefID, false)
	if got := readAll(t, b, "newname/keep.txt"); string(got) != "keep" {
		t.Errorf("renamed content = %q", got)
	}
}
