package http

import (
	"net/http"
	"strconv"
	"strings"

	"giftplan/internal/core"
	"giftplan/internal/storage"
)

type GiftItemHandler struct {
	items *storage.GiftItemRepo
}

// List handles GET /api/items, optionally filtered by ?recipient_id=
func (h *GiftItemHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		items []core.GiftItem
		err   error
	)
	if v := strings.TrimSpace(r.URL.Query().Get("recipient_id")); v != "" {
		recipientID, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "invalid recipient_id")
			return
		}
		items, err = h.items.ListByRecipient(r.Context(), recipientID)
	} else {
		items, err = h.items.List(r.Context())
	}
	if err != nil {
		respondStoreError(w, r, err, "gift items")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Get handles GET /api/items/{id}
func (h *GiftItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item ID")
		return
	}

	item, err := h.items.Get(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err, "gift item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Create handles POST /api/items
func (h *GiftItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req core.NewGiftItem
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.items.Create(r.Context(), req)
	if err != nil {
		respondStoreError(w, r, err, "gift item")
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// Update handles PUT /api/items/{id}
func (h *GiftItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item ID")
		return
	}

	var patch core.GiftItemPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := patch.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.items.Update(r.Context(), id, patch)
	if err != nil {
		respondStoreError(w, r, err, "gift item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// SetStatus handles PUT /api/items/{id}/status, the manual override that
// bypasses the purchase linkage.
func (h *GiftItemHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item ID")
		return
	}

	var req struct {
		Status core.Status `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	item, err := h.items.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		respondStoreError(w, r, err, "gift item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}
func (h *GiftItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item ID")
		return
	}

	deleted, err := h.items.Delete(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err, "gift item")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "gift item not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
