package http

import (
	"net/http"

	"giftplan/internal/core"
	"giftplan/internal/services"
)

type PurchaseHandler struct {
	purchases *services.PurchaseService
}

// List handles GET /api/purchases
func (h *PurchaseHandler) List(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.purchases.List(r.Context())
	if err != nil {
		respondStoreError(w, r, err, "purchases")
		return
	}
	writeJSON(w, http.StatusOK, purchases)
}

// Get handles GET /api/purchases/{id}
func (h *PurchaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid purchase ID")
		return
	}

	purchase, err := h.purchases.Get(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err, "purchase")
		return
	}
	writeJSON(w, http.StatusOK, purchase)
}

// GetByItem handles GET /api/purchases/item/{itemID}
func (h *PurchaseHandler) GetByItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "itemID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item ID")
		return
	}

	purchase, err := h.purchases.GetByItem(r.Context(), itemID)
	if err != nil {
		respondStoreError(w, r, err, "purchase")
		return
	}
	writeJSON(w, http.StatusOK, purchase)
}

// Create handles POST /api/purchases. A successful create marks the
// linked item as purchased in the same transaction.
func (h *PurchaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req core.NewPurchase
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	purchase, err := h.purchases.Create(r.Context(), req)
	if err != nil {
		respondStoreError(w, r, err, "purchase")
		return
	}
	writeJSON(w, http.StatusCreated, purchase)
}

// Update handles PUT /api/purchases/{id}
func (h *PurchaseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid purchase ID")
		return
	}

	var patch core.PurchasePatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := patch.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	purchase, err := h.purchases.Update(r.Context(), id, patch)
	if err != nil {
		respondStoreError(w, r, err, "purchase")
		return
	}
	writeJSON(w, http.StatusOK, purchase)
}

// Delete handles DELETE /api/purchases/{id} and resets the linked item
// back to ready_to_buy.
func (h *PurchaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid purchase ID")
		return
	}

	deleted, err := h.purchases.Delete(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err, "purchase")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "purchase not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
