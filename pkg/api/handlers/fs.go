package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"

	"github.com/gabriel-vasile/mimetype"

	"github.com/marmos91/filebank/internal/logger"
	"github.com/marmos91/filebank/pkg/bufpool"
	"github.com/marmos91/filebank/pkg/content"
	"github.com/marmos91/filebank/pkg/metadata"
	"github.com/marmos91/filebank/pkg/vfs"
	vfserrors "github.com/marmos91/filebank/pkg/vfs/errors"
)

// multipartMemory is the part of a multipart upload kept in memory; the
// rest spills to temporary files.
const multipartMemory = 32 << 20

// FSHandler serves the item routes under /api/v1/fs.
type FSHandler struct {
	svc           *vfs.Service
	maxUploadSize int64
}

// NewFSHandler creates the item handler. maxUploadSize <= 0 disables the
// request body limit.
func NewFSHandler(svc *vfs.Service, maxUploadSize int64) *FSHandler {
	return &FSHandler{svc: svc, maxUploadSize: maxUploadSize}
}

// CreateRequest is the JSON body of a directory creation.
type CreateRequest struct {
	Name     string              `json:"name"`
	Type     string              `json:"type,omitempty"`
	Schema   string              `json:"schema,omitempty"`
	Metadata metadata.Attributes `json:"metadata,omitempty"`
}

// MoveRequest is the JSON body of a move.
type MoveRequest struct {
	Target string `json:"target"`
}

// Get handles GET /api/v1/fs/*: a directory is listed, a file is streamed.
func (h *FSHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := virtualPath(r)

	path, err := h.svc.Resolve(ctx, p)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	if file := path.File(); file != nil {
		h.stream(w, r, file)
		return
	}

	entries, err := h.svc.List(ctx, path.Directory())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if entries == nil {
		entries = []metadata.Entry{}
	}
	WriteJSONOK(w, entries)
}

func (h *FSHandler) stream(w http.ResponseWriter, r *http.Request, file *metadata.File) {
	rc, err := h.svc.Open(r.Context(), file)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	defer func() { _ = rc.Close() }()

	w.Header().Set("Content-Type", file.MimeType)
	if f, ok := rc.(interface{ Stat() (os.FileInfo, error) }); ok {
		if info, err := f.Stat(); err == nil {
			w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
		}
	}
	w.WriteHeader(http.StatusOK)

	if _, err := bufpool.Copy(w, rc); err != nil {
		logger.WarnCtx(r.Context(), "Content stream interrupted",
			logger.KeyRefID, file.RefID, logger.KeyError, err)
	}
}

// Create handles POST /api/v1/fs/*. A multipart body uploads a file, any
// other body creates a directory. The request path is the parent.
func (h *FSHandler) Create(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		h.upload(w, r)
		return
	}

	var req CreateRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	switch req.Type {
	case "", string(content.TypeDirectory):
	case string(content.TypeFile):
		WriteError(w, r, vfserrors.NewInvalidInputError("File content is required.",
			vfserrors.FieldError{Field: "file", Message: "multipart file part is missing"}))
		return
	default:
		WriteError(w, r, vfserrors.NewInvalidInputError(fmt.Sprintf("Invalid item type: %s", req.Type),
			vfserrors.FieldError{Field: "type", Message: "must be directory or file"}))
		return
	}

	dir, err := h.svc.Mkdir(r.Context(), virtualPath(r), vfs.MkdirRequest{
		Name:     req.Name,
		Schema:   req.Schema,
		Metadata: req.Metadata,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSONCreated(w, dir)
}

func (h *FSHandler) upload(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RequestEntityTooLarge(w, fmt.Sprintf("Upload exceeds %d bytes.", tooLarge.Limit))
			return
		}
		BadRequest(w, "Invalid multipart body")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	part, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, r, vfserrors.NewInvalidInputError("File content is required.",
			vfserrors.FieldError{Field: "file", Message: "multipart file part is missing"}))
		return
	}
	defer func() { _ = part.Close() }()

	if t := r.FormValue("type"); t != "" && t != string(content.TypeFile) {
		WriteError(w, r, vfserrors.NewInvalidInputError(fmt.Sprintf("Invalid item type: %s", t),
			vfserrors.FieldError{Field: "type", Message: "a multipart body creates a file"}))
		return
	}

	meta, err := parseMetadataField(r.FormValue("metadata"))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	mimeType, err := detectMimeType(r.FormValue("mimetype"), header, part)
	if err != nil {
		WriteError(w, r, vfserrors.NewBackendFailure("detect mimetype", err))
		return
	}

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}

	file, err := h.svc.Upload(r.Context(), virtualPath(r), vfs.UploadRequest{
		Name:     name,
		MimeType: mimeType,
		Schema:   r.FormValue("schema"),
		Metadata: meta,
		Body:     part,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSONCreated(w, file)
}

// parseMetadataField decodes the "metadata" form value, which must be a JSON
// object when present.
func parseMetadataField(raw string) (metadata.Attributes, error) {
	if raw == "" {
		return nil, nil
	}
	var meta metadata.Attributes
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, vfserrors.NewInvalidInputError("Invalid metadata.",
			vfserrors.FieldError{Field: "/metadata", Message: "must be a JSON object"})
	}
	return meta, nil
}

// detectMimeType prefers the explicit form value, then the part header, and
// finally sniffs the content. The part is rewound after sniffing.
func detectMimeType(explicit string, header *multipart.FileHeader, part multipart.File) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if ct := header.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct, nil
	}

	detected, err := mimetype.DetectReader(part)
	if err != nil {
		return "", err
	}
	if _, err := part.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return detected.String(), nil
}

// Move handles PUT /api/v1/fs/* with a {"target": "/path"} body.
func (h *FSHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if r.ContentLength != 0 {
		if !decodeJSONBody(w, r, &req) {
			return
		}
	}
	if req.Target == "" {
		WriteError(w, r, vfserrors.NewInvalidInputError("Missing target parameter.",
			vfserrors.FieldError{Field: "target", Message: "is required"}))
		return
	}

	entry, err := h.svc.Move(r.Context(), virtualPath(r), req.Target)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSONOK(w, entry)
}

// Delete handles DELETE /api/v1/fs/*.
func (h *FSHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), virtualPath(r)); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteNoContent(w)
}
