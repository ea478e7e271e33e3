package http

import (
	"net/http"

	"giftplan/internal/core"
	"giftplan/internal/storage"
)

type RecipientHandler struct {
	recipients *storage.RecipientRepo
}

// List handles GET /api/recipients
func (h *RecipientHandler) List(w http.ResponseWriter, r *http.Request) {
	recipients, err := h.recipients.List(r.Context())
	if err != nil {
		respondStoreError(w, r, err, "recipients")
		return
	}
	writeJSON(w, http.StatusOK, recipients)
}

// Get handles GET /api/recipients/{id}
func (h *RecipientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid recipient ID")
		return
	}

	recipient, err := h.recipients.Get(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err, "recipient")
		return
	}
	writeJSON(w, http.StatusOK, recipient)
}

// Create handles POST /api/recipients
func (h *RecipientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req core.NewRecipient
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	recipient, err := h.recipients.Create(r.Context(), req)
	if err != nil {
		respondStoreError(w, r, err, "recipient")
		return
	}
	writeJSON(w, http.StatusCreated, recipient)
}

// Update handles PUT /api/recipients/{id}
func (h *RecipientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid recipient ID")
		return
	}

	var patch core.RecipientPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := patch.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	recipient, err := h.recipients.Update(r.Context(), id, patch)
	if err != nil {
		respondStoreError(w, r, err, "recipient")
		return
	}
	writeJSON(w, http.StatusOK, recipient)
}

// Delete handles DELETE /api/recipients/{id}
func (h *RecipientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid recipient ID")
		return
	}

	deleted, err := h.recipients.Delete(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err, "recipient")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "recipient not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
