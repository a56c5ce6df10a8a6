package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/iiif-gallery/internal/gallery"
	"github.com/lehigh-university-libraries/iiif-gallery/internal/iiif"
)

func (h *Handler) HandleAddManifests(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	var request struct {
		URLs  []string `json:"urls"`
		Pages []int    `json:"pages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	urls := splitURLs(request.URLs)
	if len(urls) == 0 {
		h.writeError(w, "urls is required", http.StatusBadRequest)
		return
	}
	if len(request.Pages) > 0 && len(urls) > 1 {
		h.writeError(w, "pages can only be selected from a single manifest", http.StatusBadRequest)
		return
	}

	added, failures := session.AddFromURLs(r.Context(), h.fetcher, urls, request.Pages)
	if added == nil {
		added = []gallery.Item{}
	}
	if failures == nil {
		failures = []gallery.AddFailure{}
	}

	code := http.StatusOK
	if len(added) == 0 && len(failures) > 0 {
		code = failureStatus(failures)
	}
	h.writeJSONStatus(w, code, map[string]any{
		"items":    added,
		"failures": failures,
	})
}

// failureStatus is 422 when every manifest loaded but had nothing to show,
// and 502 when any fetch failed.
func failureStatus(failures []gallery.AddFailure) int {
	for _, f := range failures {
		if !errors.Is(f.Err, gallery.ErrNoCanvases) {
			return http.StatusBadGateway
		}
	}
	return http.StatusUnprocessableEntity
}

// HandlePages lists the canvases of a manifest so a subset can be picked.
func (h *Handler) HandlePages(w http.ResponseWriter, r *http.Request) {
	manifestURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if manifestURL == "" {
		h.writeError(w, "url is required", http.StatusBadRequest)
		return
	}

	m, err := h.fetcher.Fetch(r.Context(), manifestURL)
	if err != nil {
		h.writeError(w, "Error loading manifest from "+manifestURL+": "+err.Error(), http.StatusBadGateway)
		return
	}
	if len(m.Canvases) == 0 {
		h.writeError(w, gallery.ErrNoCanvases.Error(), http.StatusUnprocessableEntity)
		return
	}

	h.writeJSON(w, struct {
		URL     string       `json:"url"`
		Title   string       `json:"title"`
		Version iiif.Version `json:"version"`
		Pages   []iiif.Page  `json:"pages"`
	}{
		URL:     manifestURL,
		Title:   m.Title(),
		Version: m.Version(),
		Pages:   m.Pages(),
	})
}

// splitURLs accepts both separate entries and comma-separated lists.
func splitURLs(entries []string) []string {
	var urls []string
	for _, entry := range entries {
		for _, u := range strings.Split(entry, ",") {
			if u = strings.TrimSpace(u); u != "" {
				urls = append(urls, u)
			}
		}
	}
	return urls
}
