package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"storeplan/internal/domain"
	"storeplan/internal/service"
)

// LayoutRenderer rasterizes a layout for the PNG export
type LayoutRenderer interface {
	RenderLayout(w io.Writer, layout *domain.Layout) error
}

// LayoutHandler handles layout API requests
type LayoutHandler struct {
	svc      *service.LayoutService
	renderer LayoutRenderer
}

// NewLayoutHandler creates a new layout handler
func NewLayoutHandler(svc *service.LayoutService) *LayoutHandler {
	return &LayoutHandler{svc: svc}
}

// SetRenderer enables the PNG export
func (h *LayoutHandler) SetRenderer(r LayoutRenderer) {
	h.renderer = r
}

// Register adds the layout routes to mux
func (h *LayoutHandler) Register(mux *http.ServeMux) {
	// Layout endpoints
	mux.HandleFunc("GET /api/layout", h.GetLayout)
	mux.HandleFunc("DELETE /api/layout", h.ClearLayout)

	// Entity endpoints
	mux.HandleFunc("GET /api/entities", h.ListEntities)
	mux.HandleFunc("POST /api/entities", h.CreateEntity)
	mux.HandleFunc("GET /api/entities/{id}", h.GetEntity)
	mux.HandleFunc("PUT /api/entities/{id}", h.UpdateEntity)
	mux.HandleFunc("DELETE /api/entities/{id}", h.DeleteEntity)

	// Graphic element endpoints
	mux.HandleFunc("GET /api/elements", h.ListElements)
	mux.HandleFunc("POST /api/elements", h.CreateElement)
	mux.HandleFunc("PUT /api/elements/{id}", h.UpdateElement)
	mux.HandleFunc("DELETE /api/elements/{id}", h.DeleteElement)

	// Framed view endpoints
	mux.HandleFunc("GET /api/framed-view", h.GetFramedView)
	mux.HandleFunc("PUT /api/framed-view", h.SetFramedView)
	mux.HandleFunc("DELETE /api/framed-view", h.ClearFramedView)

	// Import/export endpoints
	mux.HandleFunc("POST /api/import/yaml", h.ImportYAML)
	mux.HandleFunc("POST /api/import/json", h.ImportJSON)
	mux.HandleFunc("GET /api/export/yaml", h.ExportYAML)
	mux.HandleFunc("GET /api/export/json", h.ExportJSON)
	mux.HandleFunc("GET /api/export/png", h.ExportPNG)
}

// Error response structure
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// GetLayout returns the complete layout
func (h *LayoutHandler) GetLayout(w http.ResponseWriter, r *http.Request) {
	layout, err := h.svc.GetLayout(r.Context())
	if err != nil {
		log.Printf("Failed to get layout: %v", err)
		h.writeError(w, "Failed to get layout", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, layout, http.StatusOK)
}

// ClearLayout removes every entity, element and the framed view
func (h *LayoutHandler) ClearLayout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearLayout(r.Context()); err != nil {
		log.Printf("Failed to clear layout: %v", err)
		h.writeError(w, "Failed to clear layout", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]string{"status": "cleared"}, http.StatusOK)
}

// ListEntities returns all entities
func (h *LayoutHandler) ListEntities(w http.ResponseWriter, r *http.Request) {
	entities, err := h.svc.ListEntities(r.Context())
	if err != nil {
		log.Printf("Failed to list entities: %v", err)
		h.writeError(w, "Failed to list entities", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, entities, http.StatusOK)
}

// GetEntity returns a single entity
func (h *LayoutHandler) GetEntity(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "/api/entities/")
	if id == "" {
		h.writeError(w, "Invalid entity ID", "Entity ID is required", http.StatusBadRequest)
		return
	}

	entity, err := h.svc.GetEntity(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "Failed to get entity", err, http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, entity, http.StatusOK)
}

// CreateEntity creates a new entity. The ID may be omitted.
func (h *LayoutHandler) CreateEntity(w http.ResponseWriter, r *http.Request) {
	var entity domain.Entity
	if err := json.NewDecoder(r.Body).Decode(&entity); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.CreateEntity(r.Context(), &entity); err != nil {
		log.Printf("Failed to create entity: %v", err)
		h.writeError(w, "Failed to create entity", err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, entity, http.StatusCreated)
}

// UpdateEntity replaces an existing entity
func (h *LayoutHandler) UpdateEntity(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "/api/entities/")
	if id == "" {
		h.writeError(w, "Invalid entity ID", "Entity ID is required", http.StatusBadRequest)
		return
	}

	var entity domain.Entity
	if err := json.NewDecoder(r.Body).Decode(&entity); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.UpdateEntity(r.Context(), id, &entity); err != nil {
		h.writeServiceError(w, "Failed to update entity", err, http.StatusBadRequest)
		return
	}

	h.writeJSON(w, entity, http.StatusOK)
}

// DeleteEntity removes an entity
func (h *LayoutHandler) DeleteEntity(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "/api/entities/")
	if id == "" {
		h.writeError(w, "Invalid entity ID", "Entity ID is required", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteEntity(r.Context(), id); err != nil {
		h.writeServiceError(w, "Failed to delete entity", err, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListElements returns all graphic elements
func (h *LayoutHandler) ListElements(w http.ResponseWriter, r *http.Request) {
	elements, err := h.svc.ListElements(r.Context())
	if err != nil {
		log.Printf("Failed to list elements: %v", err)
		h.writeError(w, "Failed to list elements", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, elements, http.StatusOK)
}

// CreateElement creates a new graphic element
func (h *LayoutHandler) CreateElement(w http.ResponseWriter, r *http.Request) {
	el := domain.NewGraphicElement("", "", domain.Point{})
	if err := json.NewDecoder(r.Body).Decode(el); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.CreateElement(r.Context(), el); err != nil {
		log.Printf("Failed to create element: %v", err)
		h.writeError(w, "Failed to create element", err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, el, http.StatusCreated)
}

// UpdateElement replaces an existing graphic element
func (h *LayoutHandler) UpdateElement(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "/api/elements/")
	if id == "" {
		h.writeError(w, "Invalid element ID", "Element ID is required", http.StatusBadRequest)
		return
	}

	el := domain.NewGraphicElement("", "", domain.Point{})
	if err := json.NewDecoder(r.Body).Decode(el); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.UpdateElement(r.Context(), id, el); err != nil {
		h.writeServiceError(w, "Failed to update element", err, http.StatusBadRequest)
		return
	}

	h.writeJSON(w, el, http.StatusOK)
}

// DeleteElement removes a graphic element
func (h *LayoutHandler) DeleteElement(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "/api/elements/")
	if id == "" {
		h.writeError(w, "Invalid element ID", "Element ID is required", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteElement(r.Context(), id); err != nil {
		h.writeServiceError(w, "Failed to delete element", err, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetFramedView returns the framed view, or 404 when none is set
func (h *LayoutHandler) GetFramedView(w http.ResponseWriter, r *http.Request) {
	rect, err := h.svc.GetFramedView(r.Context())
	if err != nil {
		log.Printf("Failed to get framed view: %v", err)
		h.writeError(w, "Failed to get framed view", err.Error(), http.StatusInternalServerError)
		return
	}
	if rect == nil {
		h.writeError(w, "Not found", "no framed view is set", http.StatusNotFound)
		return
	}

	h.writeJSON(w, rect, http.StatusOK)
}

// SetFramedView stores the framed view
func (h *LayoutHandler) SetFramedView(w http.ResponseWriter, r *http.Request) {
	var rect domain.Rect
	if err := json.NewDecoder(r.Body).Decode(&rect); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	stored, err := h.svc.SetFramedView(r.Context(), rect)
	if err != nil {
		log.Printf("Failed to set framed view: %v", err)
		h.writeError(w, "Failed to set framed view", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, stored, http.StatusOK)
}

// ClearFramedView removes the framed view
func (h *LayoutHandler) ClearFramedView(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearFramedView(r.Context()); err != nil {
		log.Printf("Failed to clear framed view: %v", err)
		h.writeError(w, "Failed to clear framed view", err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ImportYAML replaces the layout with a YAML document
func (h *LayoutHandler) ImportYAML(w http.ResponseWriter, r *http.Request) {
	h.importLayout(w, r, h.svc.ImportYAML, "YAML")
}

// ImportJSON replaces the layout with a JSON document
func (h *LayoutHandler) ImportJSON(w http.ResponseWriter, r *http.Request) {
	h.importLayout(w, r, h.svc.ImportJSON, "JSON")
}

type importFunc func(ctx context.Context, data []byte) (*service.ImportResult, error)

func (h *LayoutHandler) importLayout(w http.ResponseWriter, r *http.Request, fn importFunc, format string) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, "Failed to read request body", err.Error(), http.StatusBadRequest)
		return
	}

	result, err := fn(r.Context(), data)
	if err != nil {
		log.Printf("Failed to import %s: %v", format, err)
		h.writeError(w, "Failed to import "+format, err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, result, http.StatusOK)
}

// ExportYAML exports the layout as YAML
func (h *LayoutHandler) ExportYAML(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.ExportYAML(r.Context())
	if err != nil {
		log.Printf("Failed to export YAML: %v", err)
		h.writeError(w, "Failed to export YAML", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/x-yaml")
	w.Header().Set("Content-Disposition", "attachment; filename=layout.yaml")
	w.Write(data)
}

// ExportJSON exports the layout as JSON
func (h *LayoutHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.ExportJSON(r.Context())
	if err != nil {
		log.Printf("Failed to export JSON: %v", err)
		h.writeError(w, "Failed to export JSON", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=layout.json")
	w.Write(data)
}

// ExportPNG renders the layout, or its framed view, as a PNG image
func (h *LayoutHandler) ExportPNG(w http.ResponseWriter, r *http.Request) {
	if h.renderer == nil {
		h.writeError(w, "PNG export unavailable", "", http.StatusNotImplemented)
		return
	}

	layout, err := h.svc.GetLayout(r.Context())
	if err != nil {
		log.Printf("Failed to get layout: %v", err)
		h.writeError(w, "Failed to get layout", err.Error(), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.RenderLayout(&buf, layout); err != nil {
		log.Printf("Failed to render PNG: %v", err)
		h.writeError(w, "Failed to render PNG", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func (h *LayoutHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	writeJSON(w, data, statusCode)
}

func (h *LayoutHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	writeJSON(w, ErrorResponse{Error: error, Details: details}, statusCode)
}

// writeServiceError maps "not found" errors to 404 and everything else to fallback
func (h *LayoutHandler) writeServiceError(w http.ResponseWriter, msg string, err error, fallback int) {
	if strings.Contains(err.Error(), "not found") {
		h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
		return
	}
	log.Printf("%s: %v", msg, err)
	h.writeError(w, msg, err.Error(), fallback)
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

// pathID returns the {id} wildcard, falling back to trimming prefix off the path
func pathID(r *http.Request, prefix string) string {
	if id := r.PathValue("id"); id != "" {
		return id
	}
	return extractPathParam(r.URL.Path, prefix)
}

func extractPathParam(path, prefix string) string {
	if strings.HasPrefix(path, prefix) {
		return strings.TrimPrefix(path, prefix)
	}
	return ""
}
