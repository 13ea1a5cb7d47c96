package fs

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/marmos91/filebank/pkg/content"
	"github.com/marmos91/filebank/pkg/content/backendtest"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()

	b, err := NewWithRoot(t.TempDir())
	if err != nil {
		t.Fatalf("NewWithRoot failed: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })

	return b
}

func TestConformance(t *testing.T) {
	backendtest.RunConformanceSuite(t, func(t *testing.T) content.Backend {
		return newTestBackend(t)
	})
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("New() with empty root should fail")
	}

	file := filepath.Join(t.TempDir(), "plain")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(Config{RootDir: file}); err == nil {
		t.Error("New() with a file as root should fail")
	}
}

func TestMirrorsTreeOnDisk(t *testing.T) {
	ctx := t.Context()
	b := newTestBackend(t)

	dir, err := b.Mkdir(ctx, "", "subdir")
	if err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}
	if _, err := b.CreateFile(ctx, dir.RefID, "test.txt", bytes.NewReader([]byte("hi"))); err != nil {
		t.Fatalf("CreateFile failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(b.RootDir(), "subdir", "test.txt"))
	if err != nil {
		t.Fatalf("file not mirrored on disk: %v", err)
	}
	if string(data) != "hi" {
		t.Errorf("disk content = %q, want hi", data)
	}
}

func TestMoveToNonexistentDestination(t *testing.T) {
	ctx := t.Context()
	b := newTestBackend(t)

	src, err := b.Mkdir(ctx, "", "stay")
	if err != nil {
		t.Fatal(err)
	}
	file, err := b.CreateFile(ctx, "", "stay.txt", bytes.NewReader([]byte("x")))
	if err != nil {
		t.Fatal(err)
	}
	missing := content.Item{RefID: "does/not/exist", Name: "exist", Type: content.TypeDirectory}

	if _, err := b.MoveDirectory(ctx, src, missing); !errors.Is(err, content.ErrNotFound) {
		t.Errorf("MoveDirectory() error = %v, want ErrNotFound", err)
	}
	if _, err := b.MoveFile(ctx, file, missing); !errors.Is(err, content.ErrNotFound) {
		t.Errorf("MoveFile() error = %v, want ErrNotFound", err)
	}

	for _, ref := range []string{src.RefID, file.RefID} {
		ok, err := b.Exists(ctx, ref)
		if err != nil || !ok {
			t.Errorf("Exists(%q) = %v, %v; source must be left in place", ref, ok, err)
		}
	}
}

func TestMoveDirectoryTargetOccupied(t *testing.T) {
	ctx := t.Context()
	b := newTestBackend(t)

	src, _ := b.Mkdir(ctx, "", "a")
	dest, _ := b.Mkdir(ctx, "", "b")
	if _, err := b.Mkdir(ctx, dest.RefID, "a"); err != nil {
		t.Fatal(err)
	}

	_, err := b.MoveDirectory(ctx, src, dest)
	if !errors.Is(err, content.ErrAlreadyExists) {
		t.Errorf("MoveDirectory() error = %v, want ErrAlreadyExists", err)
	}
}

func TestMoveDirectoryIntoItself(t *testing.T) {
	ctx := t.Context()
	b := newTestBackend(t)

	src, _ := b.Mkdir(ctx, "", "loop")
	child, _ := b.Mkdir(ctx, src.RefID, "inner")

	_, err := b.MoveDirectory(ctx, src, child)
	if !errors.Is(err, content.ErrInvalidRef) {
		t.Errorf("MoveDirectory() error = %v, want ErrInvalidRef", err)
	}
}

func TestMoveDirectoryDescendants(t *testing.T) {
	ctx := t.Context()
	b := newTestBackend(t)

	src, _ := b.Mkdir(ctx, "", "tree")
	mid, _ := b.Mkdir(ctx, src.RefID, "mid")
	if _, err := b.CreateFile(ctx, mid.RefID, "leaf.txt", bytes.NewReader([]byte("leaf"))); err != nil {
		t.Fatal(err)
	}
	dest, _ := b.Mkdir(ctx, "", "dest")

	res, err := b.MoveDirectory(ctx, src, dest)
	if err != nil {
		t.Fatalf("MoveDirectory failed: %v", err)
	}

	want := []content.Change{
		{
			Old: content.Item{RefID: "tree/mid", Name: "mid", Type: content.TypeDirectory},
			New: content.Item{RefID: "dest/tree/mid", Name: "mid", Type: content.TypeDirectory},
		},
		{
			Old: content.Item{RefID: "tree/mid/leaf.txt", Name: "leaf.txt", Type: content.TypeFile},
			New: content.Item{RefID: "dest/tree/mid/leaf.txt", Name: "leaf.txt", Type: content.TypeFile},
		},
	}
	if len(res.Items) != len(want) {
		t.Fatalf("Items = %+v, want %+v", res.Items, want)
	}
	for i := range want {
		if res.Items[i] != want[i] {
			t.Errorf("Items[%d] = %+v, want %+v", i, res.Items[i], want[i])
		}
	}
}

func TestInvalidRefs(t *testing.T) {
	ctx := t.Context()
	b := newTestBackend(t)

	for _, ref := range []string{"../escape", "a/../../b", "a//b", `a\b`} {
		if _, err := b.Exists(ctx, ref); !errors.Is(err, content.ErrInvalidRef) {
			t.Errorf("Exists(%q) error = %v, want ErrInvalidRef", ref, err)
		}
	}
	if _, err := b.Mkdir(ctx, "", ".."); !errors.Is(err, content.ErrInvalidRef) {
		t.Errorf("Mkdir(..) error = %v, want ErrInvalidRef", err)
	}
	if err := b.Rmdir(ctx, ""); !errors.Is(err, content.ErrInvalidRef) {
		t.Errorf("Rmdir(root) error = %v, want ErrInvalidRef", err)
	}
}

func TestCreateFileDoesNotOverwrite(t *testing.T) {
	ctx := t.Context()
	b := newTestBackend(t)

	if _, err := b.CreateFile(ctx, "", "once.txt", bytes.NewReader([]byte("first"))); err != nil {
		t.Fatal(err)
	}
	_, err := b.CreateFile(ctx, "", "once.txt", bytes.NewReader([]byte("second")))
	if !errors.Is(err, content.ErrAlreadyExists) {
		t.Fatalf("CreateFile() error = %v, want ErrAlreadyExists", err)
	}

	items, err := b.List(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Errorf("List() = %+v, temp files must not leak", items)
	}
}

func TestClosed(t *testing.T) {
	b := newTestBackend(t)
	_ = b.Close()

	if err := b.Healthcheck(t.Context()); !errors.Is(err, content.ErrBackendClosed) {
		t.Errorf("Healthcheck() error = %v, want ErrBackendClosed", err)
	}
}
