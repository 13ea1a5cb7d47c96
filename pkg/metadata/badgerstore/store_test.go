package badgerstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/filebank/pkg/metadata"
	"github.com/marmos91/filebank/pkg/metadata/storetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := New(t.Context(), Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestConformance(t *testing.T) {
	storetest.RunConformanceSuite(t, func(t *testing.T) metadata.Store {
		return newTestStore(t)
	})
}

func TestConfigValidate(t *testing.T) {
	assert.Error(t, (&Config{}).Validate())
	assert.NoError(t, (&Config{InMemory: true}).Validate())
	assert.NoError(t, (&Config{Path: "/var/lib/filebank"}).Validate())
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := t.Context()
	path := filepath.Join(t.TempDir(), "badger")

	store, err := New(ctx, Config{Path: path})
	require.NoError(t, err)

	dir := &metadata.Directory{Name: "keep", RefID: "keep", Metadata: metadata.Attributes{"a": "b"}}
	require.NoError(t, store.CreateDirectory(ctx, dir))
	file := &metadata.File{Name: "f.txt", RefID: "keep/f.txt", DirectoryID: dir.ID, MimeType: "text/plain"}
	require.NoError(t, store.CreateFile(ctx, file))
	require.NoError(t, store.Close())

	reopened, err := New(ctx, Config{Path: path})
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.FindDirectory(ctx, "", "keep")
	require.NoError(t, err)
	assert.Equal(t, dir.ID, got.ID)
	assert.Equal(t, dir.Seq, got.Seq)
	assert.Equal(t, "b", got.Metadata["a"])

	listed, err := reopened.ListFiles(ctx, dir.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "text/plain", listed[0].MimeType)
}

func TestIndexesFollowUpdates(t *testing.T) {
	ctx := t.Context()
	store := newTestStore(t)

	a := &metadata.Directory{Name: "a", RefID: "a"}
	require.NoError(t, store.CreateDirectory(ctx, a))
	b := &metadata.Directory{Name: "b", RefID: "b"}
	require.NoError(t, store.CreateDirectory(ctx, b))
	child := &metadata.Directory{Name: "child", RefID: "a/child", ParentID: a.ID}
	require.NoError(t, store.CreateDirectory(ctx, child))

	child.ParentID = b.ID
	child.RefID = "b/child"
	require.NoError(t, store.UpdateDirectory(ctx, child))

	underA, err := store.ListDirectories(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, underA)

	underB, err := store.ListDirectories(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, underB, 1)
	assert.Equal(t, child.ID, underB[0].ID)

	// The old reference index entry is gone with the update.
	n, err := store.UpdateDirectoryRef(ctx, "a/child", "x")
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = store.UpdateDirectoryRef(ctx, "b/child", "x")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestClosed(t *testing.T) {
	store, err := New(t.Context(), Config{InMemory: true})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	assert.ErrorIs(t, store.Healthcheck(t.Context()), metadata.ErrStoreClosed)
	assert.ErrorIs(t, store.Close(), metadata.ErrStoreClosed)
	_, err = store.GetDirectory(t.Context(), "x")
	assert.ErrorIs(t, err, metadata.ErrStoreClosed)
}

func TestKeyLayout(t *testing.T) {
	assert.Equal(t, []byte("d:abc"), nsDirectory.record("abc"))
	assert.Equal(t, []byte("fn:\x00name"), nsFile.name("", "name"))
	assert.Equal(t, append([]byte("do:p\x00"), 0, 0, 0, 0, 0, 0, 1, 0), nsDirectory.order("p", 256))
	assert.Equal(t, []byte("fr:a/b\x00id"), nsFile.ref("a/b", "id"))
}
