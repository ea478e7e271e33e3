package http

import (
	"net/http"

	"giftplan/internal/core"
	"giftplan/internal/storage"
)

type BudgetHandler struct {
	budgets *storage.BudgetRepo
}

// Get handles GET /api/budget?year=
func (h *BudgetHandler) Get(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}

	budget, err := h.budgets.ByYear(r.Context(), year)
	if err != nil {
		respondStoreError(w, r, err, "budget")
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

// Create handles POST /api/budget
func (h *BudgetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req core.NewBudget
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	budget, err := h.budgets.Create(r.Context(), req)
	if err != nil {
		respondStoreError(w, r, err, "budget")
		return
	}
	writeJSON(w, http.StatusCreated, budget)
}

// Upsert handles PUT /api/budget/{year}
func (h *BudgetHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	year, err := pathID(r, "year")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}

	var req struct {
		TotalBudget core.Money `json:"total_budget"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.TotalBudget.Cents < 0 {
		writeError(w, http.StatusBadRequest, core.ErrInvalidAmount.Error())
		return
	}

	budget, err := h.budgets.Upsert(r.Context(), int(year), req.TotalBudget)
	if err != nil {
		respondStoreError(w, r, err, "budget")
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

// Analytics handles GET /api/budget/analytics?year=
func (h *BudgetHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}

	analytics, err := h.budgets.Analytics(r.Context(), year)
	if err != nil {
		respondStoreError(w, r, err, "budget")
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}
