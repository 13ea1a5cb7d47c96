package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/marmos91/filebank/pkg/content"
	"github.com/marmos91/filebank/pkg/metadata"
)

// HealthHandler handles health check endpoints.
//
// Health endpoints are unauthenticated:
//   - Liveness probe: Is the server process running?
//   - Readiness probe: Are the metadata store and content backend usable?
type HealthHandler struct {
	store   metadata.Store
	backend content.Backend
}

// NewHealthHandler creates a new health handler. Either dependency may be
// nil, in which case readiness reports unhealthy.
func NewHealthHandler(store metadata.Store, backend content.Backend) *HealthHandler {
	return &HealthHandler{store: store, backend: backend}
}

// ComponentHealth is the health of a single dependency.
type ComponentHealth struct {
	Type    string `json:"type"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// ReadinessResponse is the payload of GET /health/ready.
type ReadinessResponse struct {
	MetadataStore  ComponentHealth `json:"metadata_store"`
	ContentBackend ComponentHealth `json:"content_backend"`
}

// Liveness handles GET /health.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, healthyResponse(map[string]string{
		"service": "filebank",
	}))
}

// Readiness handles GET /health/ready. Returns 503 when either the store or
// the backend fails its health check.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.store == nil || h.backend == nil {
		WriteJSON(w, http.StatusServiceUnavailable, unhealthyResponse("storage not initialized"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := ReadinessResponse{
		MetadataStore:  check(ctx, h.store.Type(), h.store.Healthcheck),
		ContentBackend: check(ctx, h.backend.Type(), h.backend.Healthcheck),
	}

	if response.MetadataStore.Status == "healthy" && response.ContentBackend.Status == "healthy" {
		WriteJSON(w, http.StatusOK, healthyResponse(response))
	} else {
		WriteJSON(w, http.StatusServiceUnavailable, unhealthyResponseWithData(response))
	}
}

func check(ctx context.Context, typ string, fn func(context.Context) error) ComponentHealth {
	start := time.Now()
	err := fn(ctx)
	health := ComponentHealth{Type: typ, Latency: time.Since(start).String(), Status: "healthy"}
	if err != nil {
		health.Status = "unhealthy"
		health.Error = err.Error()
	}
	return health
}
