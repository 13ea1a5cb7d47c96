package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/filebank/pkg/metadata"
	"github.com/marmos91/filebank/pkg/vfs"
	vfserrors "github.com/marmos91/filebank/pkg/vfs/errors"
)

// MetaHandler serves PUT /api/v1/meta/{id}.
type MetaHandler struct {
	svc *vfs.Service
}

// NewMetaHandler creates the metadata handler.
func NewMetaHandler(svc *vfs.Service) *MetaHandler {
	return &MetaHandler{svc: svc}
}

// Update replaces the metadata of the directory or file with the given ID.
// The body is the new metadata object; its "schema" member names the schema
// to validate against and is not stored.
func (h *MetaHandler) Update(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if !decodeJSONBody(w, r, &body) {
		return
	}

	var schema string
	if raw, ok := body["schema"]; ok {
		s, isString := raw.(string)
		if !isString {
			WriteError(w, r, vfserrors.NewInvalidInputError("Invalid schema parameter.",
				vfserrors.FieldError{Field: "schema", Message: "must be a string"}))
			return
		}
		schema = s
		delete(body, "schema")
	}

	entry, err := h.svc.UpdateMetadata(r.Context(), chi.URLParam(r, "id"), schema, metadata.Attributes(body))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSONOK(w, entry)
}
