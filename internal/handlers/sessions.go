package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lehigh-university-libraries/iiif-gallery/internal/gallery"
)

func (h *Handler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.sessionStore.List()
	sessionList := make([]gallery.Snapshot, 0, len(sessions))
	for _, session := range sessions {
		sessionList = append(sessionList, session.Snapshot())
	}
	h.writeJSON(w, sessionList)
}

func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	session := h.sessionStore.Create()
	h.writeJSONStatus(w, http.StatusCreated, session.Snapshot())
}

func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, session.Snapshot())
}

func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !h.sessionStore.Delete(r.PathValue("id")) {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	if err := session.Remove(r.PathValue("itemID")); err != nil {
		if errors.Is(err, gallery.ErrItemNotFound) {
			h.writeError(w, err.Error(), http.StatusNotFound)
			return
		}
		h.writeError(w, "Failed to remove item: "+err.Error(), http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, session.Snapshot())
}

func (h *Handler) HandleReorder(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	var request struct {
		ItemIDs []string `json:"item_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := session.Reorder(request.ItemIDs); err != nil {
		if errors.Is(err, gallery.ErrInvalidOrder) {
			h.writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.writeError(w, "Failed to reorder: "+err.Error(), http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, session.Snapshot())
}
