package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/marmos91/filebank/pkg/bufpool"
)

// Item is a directory or file as returned by the API.
type Item struct {
	ID        string         `json:"id"`
	RefID     string         `json:"refId"`
	Name      string         `json:"name"`
	Type      string         `json:"type"`
	Parent    string         `json:"parent,omitempty"`
	Directory string         `json:"directory,omitempty"`
	MimeType  string         `json:"mimetype,omitempty"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// IsDir reports whether the item is a directory.
func (i *Item) IsDir() bool { return i.Type == "directory" }

// MkdirRequest is the body of a directory creation.
type MkdirRequest struct {
	Name     string         `json:"name"`
	Type     string         `json:"type,omitempty"`
	Schema   string         `json:"schema,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// UploadRequest describes a file upload. An empty MimeType lets the server
// detect it; an empty Name uses Filename.
type UploadRequest struct {
	Name     string
	Filename string
	MimeType string
	Schema   string
	Metadata map[string]any
	Body     io.Reader
}

// List returns the children of the directory at path.
func (c *Client) List(ctx context.Context, path string) ([]Item, error) {
	items, err := listResources[Item](ctx, c, fsPath(path))
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Download writes the content of the file at path to w and returns its
// content type.
func (c *Client) Download(ctx context.Context, path string, w io.Writer) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fsPath(path), "", nil)
	if err != nil {
		return "", err
	}
	resp, err := c.send(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if _, err := bufpool.Copy(w, resp.Body); err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}
	return resp.Header.Get("Content-Type"), nil
}

// Mkdir creates a directory under parent.
func (c *Client) Mkdir(ctx context.Context, parent string, req *MkdirRequest) (*Item, error) {
	return createResource[Item](ctx, c, fsPath(parent), req)
}

// Upload streams a file into the directory at parent as a multipart body.
func (c *Client) Upload(ctx context.Context, parent string, up *UploadRequest) (*Item, error) {
	var meta string
	if up.Metadata != nil {
		raw, err := json.Marshal(up.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		meta = string(raw)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeUpload(mw, up, meta))
	}()

	req, err := c.newRequest(ctx, http.MethodPost, fsPath(parent), mw.FormDataContentType(), pr)
	if err != nil {
		_ = pr.Close()
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.send(req)
	_ = pr.Close()
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var item Item
	if err := decodeBody(resp, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func writeUpload(mw *multipart.Writer, up *UploadRequest, meta string) error {
	fields := [][2]string{
		{"name", up.Name},
		{"mimetype", up.MimeType},
		{"schema", up.Schema},
		{"metadata", meta},
	}
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return err
		}
	}

	filename := up.Filename
	if filename == "" {
		filename = up.Name
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := bufpool.Copy(part, up.Body); err != nil {
		return err
	}
	return mw.Close()
}

// Move relocates the item at path to target.
func (c *Client) Move(ctx context.Context, path, target string) (*Item, error) {
	return updateResource[Item](ctx, c, fsPath(path), map[string]string{"target": target})
}

// Delete removes the item at path, recursively for a directory.
func (c *Client) Delete(ctx context.Context, path string) error {
	return deleteResource(ctx, c, fsPath(path))
}

// SetMetadata replaces the metadata of the item with the given ID. schema
// names the schema to validate against; it is not stored.
func (c *Client) SetMetadata(ctx context.Context, id, schema string, meta map[string]any) (*Item, error) {
	body := make(map[string]any, len(meta)+1)
	for k, v := range meta {
		body[k] = v
	}
	if schema != "" {
		body["schema"] = schema
	}
	return updateResource[Item](ctx, c, "/api/v1/meta/"+url.PathEscape(id), body)
}

// HealthStatus is the envelope of the health endpoints.
type HealthStatus struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Ready calls the readiness probe.
func (c *Client) Ready(ctx context.Context) (*HealthStatus, error) {
	return getResource[HealthStatus](ctx, c, "/health/ready")
}
