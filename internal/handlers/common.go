package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/iiif-gallery/internal/gallery"
	"github.com/lehigh-university-libraries/iiif-gallery/internal/storage"
)

// maxUploadBytes caps imported collection files.
const maxUploadBytes = 32 << 20

type Handler struct {
	sessionStore *storage.SessionStore
	fetcher      gallery.Fetcher
	staticDir    string
}

// New creates a handler serving sessions from store and fetching manifests
// with fetcher. staticDir holds the browser front end.
func New(store *storage.SessionStore, fetcher gallery.Fetcher, staticDir string) *Handler {
	if staticDir == "" {
		staticDir = "static"
	}
	return &Handler{
		sessionStore: store,
		fetcher:      fetcher,
		staticDir:    staticDir,
	}
}

// Routes returns the API and static file routes.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/sessions", h.HandleListSessions)
	mux.HandleFunc("POST /api/sessions", h.HandleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", h.HandleGetSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.HandleDeleteSession)
	mux.HandleFunc("POST /api/sessions/{id}/manifests", h.HandleAddManifests)
	mux.HandleFunc("DELETE /api/sessions/{id}/items/{itemID}", h.HandleRemoveItem)
	mux.HandleFunc("PUT /api/sessions/{id}/order", h.HandleReorder)
	mux.HandleFunc("GET /api/sessions/{id}/export", h.HandleExport)
	mux.HandleFunc("POST /api/sessions/{id}/import", h.HandleImport)
	mux.HandleFunc("GET /api/pages", h.HandlePages)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
	mux.HandleFunc("/", h.HandleStatic)
	return mux
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data any) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message, "status", code)
	http.Error(w, message, code)
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, r *http.Request) (*gallery.Session, bool) {
	session, exists := h.sessionStore.Get(r.PathValue("id"))
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}
