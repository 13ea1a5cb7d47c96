package apiclient

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/filebank/pkg/api"
	contentfs "github.com/marmos91/filebank/pkg/content/fs"
	"github.com/marmos91/filebank/pkg/metadata/badgerstore"
	"github.com/marmos91/filebank/pkg/vfs"
)

func newLiveClient(t *testing.T) *Client {
	t.Helper()

	store, err := badgerstore.New(t.Context(), badgerstore.Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	backend, err := contentfs.NewWithRoot(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	svc := vfs.NewService(store, backend, nil, vfs.Options{})
	srv := httptest.NewServer(api.NewRouter(svc, api.Config{}))
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func TestClientAgainstServer(t *testing.T) {
	c := newLiveClient(t)
	ctx := t.Context()

	dir, err := c.Mkdir(ctx, "/", &MkdirRequest{Name: "my docs", Metadata: map[string]any{"owner": "alice"}})
	require.NoError(t, err)
	assert.True(t, dir.IsDir())
	assert.Equal(t, "alice", dir.Metadata["owner"])

	file, err := c.Upload(ctx, "/my docs", &UploadRequest{
		Filename: "notes.txt",
		Body:     strings.NewReader("remember the milk"),
	})
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", file.Name)
	assert.Equal(t, dir.ID, file.Directory)

	items, err := c.List(ctx, "/my docs")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "notes.txt", items[0].Name)

	var buf bytes.Buffer
	ct, err := c.Download(ctx, "/my docs/notes.txt", &buf)
	require.NoError(t, err)
	assert.Equal(t, "remember the milk", buf.String())
	assert.Equal(t, file.MimeType, ct)

	updated, err := c.SetMetadata(ctx, file.ID, "", map[string]any{"tag": "todo"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"tag": "todo"}, updated.Metadata)

	moved, err := c.Move(ctx, "/my docs", "/archive")
	require.NoError(t, err)
	assert.Equal(t, "archive", moved.Name)

	_, err = c.List(ctx, "/my docs")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())

	require.NoError(t, c.Delete(ctx, "/archive"))
	items, err = c.List(ctx, "/")
	require.NoError(t, err)
	assert.Empty(t, items)

	health, err := c.Ready(ctx)
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
}

func TestMkdirConflict(t *testing.T) {
	c := newLiveClient(t)

	_, err := c.Mkdir(t.Context(), "/", &MkdirRequest{Name: "a"})
	require.NoError(t, err)
	_, err = c.Mkdir(t.Context(), "/", &MkdirRequest{Name: "a"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsConflict())
}
