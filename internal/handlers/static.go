package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
)

func (h *Handler) HandleStatic(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/static/")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		path = "index.html"
	}

	// Check if a manifest URL parameter is provided
	manifestURL := r.URL.Query().Get("manifest")
	if manifestURL != "" {
		session := h.sessionStore.Create()
		_, failures := session.AddFromURLs(r.Context(), h.fetcher, []string{manifestURL}, nil)
		if len(failures) > 0 {
			slog.Error("Failed to create session from manifest", "url", manifestURL, "error", failures[0].Error)
			h.sessionStore.Delete(session.ID)
			http.Error(w, "Error loading manifest from "+manifestURL+": "+failures[0].Error, failureStatus(failures))
			return
		}

		// Redirect to the homepage
		http.Redirect(w, r, "/?session="+url.QueryEscape(session.ID), http.StatusFound)
		return
	}

	// Prevent directory traversal attacks
	if strings.Contains(path, "..") {
		http.Error(w, "Invalid file path", http.StatusBadRequest)
		return
	}

	// Set appropriate content type based on file extension
	switch {
	case strings.HasSuffix(path, ".css"):
		w.Header().Set("Content-Type", "text/css")
	case strings.HasSuffix(path, ".js"):
		w.Header().Set("Content-Type", "application/javascript")
	case strings.HasSuffix(path, ".html"):
		w.Header().Set("Content-Type", "text/html")
	}

	http.ServeFile(w, r, filepath.Join(h.staticDir, filepath.FromSlash(path)))
}
