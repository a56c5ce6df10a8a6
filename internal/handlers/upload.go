package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/lehigh-university-libraries/iiif-gallery/internal/iiif"
)

// HandleImport replaces a session's gallery with an uploaded collection or
// manifest. The file comes as multipart form field "file" (or "files"), or as
// the raw request body.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	var data []byte
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		data, err = h.readFormFile(r)
	} else {
		data, err = readLimited(r.Body)
	}
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	items, err := session.Import(data)
	if err != nil {
		h.writeError(w, "Failed to parse JSON file: "+err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, map[string]any{
		"session_id": session.ID,
		"message":    fmt.Sprintf("Imported %d items", len(items)),
		"items":      len(items),
	})
}

func (h *Handler) readFormFile(r *http.Request) ([]byte, error) {
	file, _, err := r.FormFile("files")
	if err != nil {
		file, _, err = r.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
	}
	defer file.Close()

	return readLimited(file)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file contents: %w", err)
	}
	if len(data) > maxUploadBytes {
		return nil, fmt.Errorf("file too large (max %dMB)", maxUploadBytes>>20)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("please select a JSON file to upload")
	}
	return data, nil
}

// HandleExport downloads the session as a Collection document.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	collection := session.Export(r.URL.Query().Get("name"))

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(collection.Name())))
	if err := collection.Encode(w); err != nil {
		slog.Error("Unable to write export", "session_id", session.ID, "err", err)
	}
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func exportFilename(name string) string {
	name = strings.Trim(unsafeFilename.ReplaceAllString(name, "-"), "-.")
	if name == "" {
		name = iiif.DefaultCollectionName
	}
	return name + ".json"
}
