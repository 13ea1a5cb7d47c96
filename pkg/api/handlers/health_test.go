package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/marmos91/filebank/pkg/content"
	contentfs "github.com/marmos91/filebank/pkg/content/fs"
	"github.com/marmos91/filebank/pkg/metadata/badgerstore"
)

// failingBackend reports an unhealthy content backend.
type failingBackend struct {
	content.Backend
}

func (failingBackend) Type() string                        { return "broken" }
func (failingBackend) Healthcheck(ctx context.Context) error { return errors.New("unreachable") }

func newDeps(t *testing.T) (*badgerstore.Store, *contentfs.Backend) {
	t.Helper()
	store, err := badgerstore.New(t.Context(), badgerstore.Config{InMemory: true})
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	backend, err := contentfs.NewWithRoot(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open backend: %v", err)
	}
	t.Cleanup(func() { _ = backend.Close() })
	return store, backend
}

func TestLiveness_ReturnsOK(t *testing.T) {
	handler := NewHealthHandler(nil, nil)
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	handler.Liveness(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Status != "healthy" {
		t.Errorf("Expected status 'healthy', got '%s'", resp.Status)
	}

	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected Data to be a map, got %T", resp.Data)
	}

	if data["service"] != "filebank" {
		t.Errorf("Expected service 'filebank', got '%s'", data["service"])
	}
}

func TestReadiness_NotInitialized_Returns503(t *testing.T) {
	handler := NewHealthHandler(nil, nil)
	req := httptest.NewRequest("GET", "/health/ready", nil)
	w := httptest.NewRecorder()

	handler.Readiness(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}

	var resp Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Error != "storage not initialized" {
		t.Errorf("Expected error 'storage not initialized', got '%s'", resp.Error)
	}
}

func TestReadiness_Healthy(t *testing.T) {
	store, backend := newDeps(t)
	handler := NewHealthHandler(store, backend)
	req := httptest.NewRequest("GET", "/health/ready", nil)
	w := httptest.NewRecorder()

	handler.Readiness(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var resp struct {
		Status string            `json:"status"`
		Data   ReadinessResponse `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Data.MetadataStore.Type != "badger" {
		t.Errorf("Expected metadata store type 'badger', got '%s'", resp.Data.MetadataStore.Type)
	}
	if resp.Data.ContentBackend.Status != "healthy" {
		t.Errorf("Expected healthy backend, got '%s'", resp.Data.ContentBackend.Status)
	}
}

func TestReadiness_UnhealthyBackend_Returns503(t *testing.T) {
	store, _ := newDeps(t)
	handler := NewHealthHandler(store, failingBackend{})
	req := httptest.NewRequest("GET", "/health/ready", nil)
	w := httptest.NewRecorder()

	handler.Readiness(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}

	var resp struct {
		Status string            `json:"status"`
		Data   ReadinessResponse `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Data.ContentBackend.Error != "unreachable" {
		t.Errorf("Expected backend error 'unreachable', got '%s'", resp.Data.ContentBackend.Error)
	}
	if resp.Data.MetadataStore.Status != "healthy" {
		t.Errorf("Expected healthy store, got '%s'", resp.Data.MetadataStore.Status)
	}
}
