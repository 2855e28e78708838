package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storeplan/internal/domain"
	"storeplan/internal/repository/sqlite"
	"storeplan/internal/service"
)

type stubRenderer struct {
	err error
}

func (s stubRenderer) RenderLayout(w io.Writer, layout *domain.Layout) error {
	if s.err != nil {
		return s.err
	}
	_, err := w.Write([]byte("png:" + layout.Entities[0].ID))
	return err
}

func newTestServer(t *testing.T) (*LayoutHandler, http.Handler) {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	h := NewLayoutHandler(service.NewLayoutService(repo, service.NewEventBus()))
	mux := http.NewServeMux()
	h.Register(mux)
	return h, Chain(mux, Recover, CORS)
}

func do(t *testing.T, srv http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestEntityLifecycle(t *testing.T) {
	_, srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/entities", `{"kind": "endcap", "rect": {"x": 10, "y": 10, "width": 60, "height": 40}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, body = %s", rec.Code, rec.Body)
	}
	var created domain.Entity
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.ID != "c1" || created.Status != domain.EntityStatusAvailable {
		t.Errorf("created = %+v", created)
	}

	rec = do(t, srv, http.MethodPut, "/api/entities/c1", `{"kind": "endcap", "status": "occupied", "rect": {"x": 20, "y": 10, "width": 60, "height": 40}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, body = %s", rec.Code, rec.Body)
	}

	rec = do(t, srv, http.MethodGet, "/api/entities/c1", "")
	var got domain.Entity
	json.NewDecoder(rec.Body).Decode(&got)
	if got.Rect.X != 20 || got.Status != domain.EntityStatusOccupied {
		t.Errorf("GET = %+v", got)
	}

	rec = do(t, srv, http.MethodDelete, "/api/entities/c1", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("DELETE status = %d", rec.Code)
	}
	rec = do(t, srv, http.MethodGet, "/api/entities/c1", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET after delete status = %d, want 404", rec.Code)
	}
}

func TestErrorStatuses(t *testing.T) {
	_, srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"missing entity", http.MethodGet, "/api/entities/g9", "", http.StatusNotFound},
		{"bad body", http.MethodPost, "/api/entities", "{", http.StatusBadRequest},
		{"too small", http.MethodPost, "/api/entities", `{"id": "g1", "rect": {"width": 5, "height": 5}}`, http.StatusBadRequest},
		{"update missing element", http.MethodPut, "/api/elements/e9", `{"variant": "circle"}`, http.StatusNotFound},
		{"no framed view", http.MethodGet, "/api/framed-view", "", http.StatusNotFound},
		{"bad import", http.MethodPost, "/api/import/yaml", "entities: [", http.StatusBadRequest},
		{"png without renderer", http.MethodGet, "/api/export/png", "", http.StatusNotImplemented},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body)
			}
			var resp ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil || resp.Error == "" {
				t.Errorf("expected JSON error body, got %v", err)
			}
		})
	}
}

func TestElementDefaults(t *testing.T) {
	_, srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/elements", `{"id": "t1", "variant": "text", "position": {"x": 5, "y": 5}, "text": "Exit"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, body = %s", rec.Code, rec.Body)
	}
	var el domain.GraphicElement
	json.NewDecoder(rec.Body).Decode(&el)
	if !el.Visible || el.Opacity != 1 {
		t.Errorf("element should default to visible and opaque: %+v", el)
	}
}

func TestFramedViewRoundTrip(t *testing.T) {
	_, srv := newTestServer(t)

	rec := do(t, srv, http.MethodPut, "/api/framed-view", `{"x": 10, "y": 10, "width": 50, "height": 300}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d", rec.Code)
	}
	var r domain.Rect
	json.NewDecoder(rec.Body).Decode(&r)
	if r.Width != 100 || r.Height != 300 {
		t.Errorf("stored = %+v, want width raised to 100", r)
	}

	if rec := do(t, srv, http.MethodDelete, "/api/framed-view", ""); rec.Code != http.StatusNoContent {
		t.Errorf("DELETE status = %d", rec.Code)
	}
	if rec := do(t, srv, http.MethodGet, "/api/framed-view", ""); rec.Code != http.StatusNotFound {
		t.Errorf("GET after delete status = %d", rec.Code)
	}
}

func TestImportExport(t *testing.T) {
	h, srv := newTestServer(t)

	doc := "entities:\n  - id: g1\n    kind: gondola\n    rect: {x: 1, y: 2, width: 140, height: 60}\n"
	rec := do(t, srv, http.MethodPost, "/api/import/yaml", doc)
	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d, body = %s", rec.Code, rec.Body)
	}

	rec = do(t, srv, http.MethodGet, "/api/export/json", "")
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var layout domain.Layout
	if err := json.NewDecoder(rec.Body).Decode(&layout); err != nil {
		t.Fatal(err)
	}
	if len(layout.Entities) != 1 || layout.Entities[0].Rect.Y != 2 {
		t.Errorf("exported = %+v", layout)
	}

	h.SetRenderer(stubRenderer{})
	rec = do(t, srv, http.MethodGet, "/api/export/png", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "png:g1" {
		t.Errorf("png export = %d %q", rec.Code, rec.Body)
	}

	h.SetRenderer(stubRenderer{err: errors.New("boom")})
	rec = do(t, srv, http.MethodGet, "/api/export/png", "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("failing render status = %d", rec.Code)
	}

	rec = do(t, srv, http.MethodDelete, "/api/layout", "")
	if rec.Code != http.StatusOK {
		t.Errorf("clear status = %d", rec.Code)
	}
	rec = do(t, srv, http.MethodGet, "/api/entities", "")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("entities after clear = %s", rec.Body)
	}
}

func TestRecover(t *testing.T) {
	panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	rec := httptest.NewRecorder()
	Chain(panicky, Recover, Logger).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestAllowOrigins(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := AllowOrigins([]string{"http://plan.local"})(ok)

	tests := []struct {
		origin string
		want   string
	}{
		{"http://plan.local", "http://plan.local"},
		{"http://evil.example", ""},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", tt.origin)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
			t.Errorf("origin %s: allow = %q, want %q", tt.origin, got, tt.want)
		}
	}

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d", rec.Code)
	}
}
