package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"giftplan/internal/core"
	"giftplan/internal/services"
	"giftplan/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *storage.Store) {
	t.Helper()

	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	purchases := services.NewPurchaseService(store.Purchases, nil)
	return NewServer(":0", store, purchases), store
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doJSON(t, srv, http.MethodGet, "/api/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Fatalf("body = %s", rr.Body.String())
	}
}

func TestRecipientLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	// Create
	rr := doJSON(t, srv, http.MethodPost, "/api/recipients", map[string]any{
		"name":              "Alice",
		"relationship":      "sister",
		"budget_allocation": 100,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rr.Code, rr.Body.String())
	}
	created := decodeBody[core.Recipient](t, rr)
	if created.Name != "Alice" || created.BudgetAllocation.Cents != 10000 {
		t.Fatalf("created = %+v", created)
	}

	// Get
	rr = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/recipients/%d", created.ID), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d", rr.Code)
	}

	// Update one field
	rr = doJSON(t, srv, http.MethodPut, fmt.Sprintf("/api/recipients/%d", created.ID), map[string]any{
		"notes": "prefers hardcovers",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rr.Code, rr.Body.String())
	}
	updated := decodeBody[core.Recipient](t, rr)
	if updated.Notes != "prefers hardcovers" || updated.Name != "Alice" {
		t.Fatalf("updated = %+v", updated)
	}

	// List
	rr = doJSON(t, srv, http.MethodGet, "/api/recipients", nil)
	list := decodeBody[[]core.Recipient](t, rr)
	if len(list) != 1 {
		t.Fatalf("list len = %d", len(list))
	}

	// Delete, then 404 thereafter
	rr = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/recipients/%d", created.ID), nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/recipients/%d", created.ID), nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/recipients/%d", created.ID), nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", rr.Code)
	}
}

func TestRecipientValidationErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/api/recipients", map[string]any{"name": ""})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("empty name status = %d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/recipients/abc", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/recipients", strings.NewReader("{not json"))
	rr2 := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr2, req)
	if rr2.Code != http.StatusBadRequest {
		t.Fatalf("malformed body status = %d", rr2.Code)
	}
}

func TestItemRoutes(t *testing.T) {
	srv, _ := newTestServer(t)

	alice := decodeBody[core.Recipient](t, doJSON(t, srv, http.MethodPost, "/api/recipients", map[string]any{"name": "Alice"}))
	bob := decodeBody[core.Recipient](t, doJSON(t, srv, http.MethodPost, "/api/recipients", map[string]any{"name": "Bob"}))

	rr := doJSON(t, srv, http.MethodPost, "/api/items", map[string]any{
		"recipient_id": alice.ID,
		"name":         "Novel",
		"priority":     5,
		"target_price": 25,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create item status = %d, body %s", rr.Code, rr.Body.String())
	}
	novel := decodeBody[core.GiftItem](t, rr)
	if novel.Status != core.StatusNeeded {
		t.Fatalf("default status = %q", novel.Status)
	}

	doJSON(t, srv, http.MethodPost, "/api/items", map[string]any{
		"recipient_id": bob.ID,
		"name":         "Mug",
	})

	// An explicit zero priority is invalid, not a request for the default.
	rr = doJSON(t, srv, http.MethodPost, "/api/items", map[string]any{
		"recipient_id": alice.ID,
		"name":         "Socks",
		"priority":     0,
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("zero priority status = %d, body %s", rr.Code, rr.Body.String())
	}

	// Filtered list
	rr = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/items?recipient_id=%d", alice.ID), nil)
	filtered := decodeBody[[]core.GiftItem](t, rr)
	if len(filtered) != 1 || filtered[0].Name != "Novel" {
		t.Fatalf("filtered = %+v", filtered)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/items?recipient_id=abc", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad filter status = %d", rr.Code)
	}

	// Status sub-resource
	rr = doJSON(t, srv, http.MethodPut, fmt.Sprintf("/api/items/%d/status", novel.ID), map[string]any{
		"status": "ready_to_buy",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("set status = %d, body %s", rr.Code, rr.Body.String())
	}
	moved := decodeBody[core.GiftItem](t, rr)
	if moved.Status != core.StatusReadyToBuy {
		t.Fatalf("status = %q", moved.Status)
	}

	rr = doJSON(t, srv, http.MethodPut, fmt.Sprintf("/api/items/%d/status", novel.ID), map[string]any{
		"status": "bought",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid status = %d", rr.Code)
	}
}

func TestPurchaseRoutes(t *testing.T) {
	srv, store := newTestServer(t)

	alice := decodeBody[core.Recipient](t, doJSON(t, srv, http.MethodPost, "/api/recipients", map[string]any{"name": "Alice"}))
	item := decodeBody[core.GiftItem](t, doJSON(t, srv, http.MethodPost, "/api/items", map[string]any{
		"recipient_id": alice.ID,
		"name":         "Novel",
	}))

	rr := doJSON(t, srv, http.MethodPost, "/api/purchases", map[string]any{
		"item_id":        item.ID,
		"store_name":     "Bookshop",
		"purchase_price": 22.99,
		"purchase_date":  "2025-12-20",
		"was_on_sale":    true,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create purchase status = %d, body %s", rr.Code, rr.Body.String())
	}
	purchase := decodeBody[core.Purchase](t, rr)
	if purchase.PurchasePrice.Cents != 2299 {
		t.Fatalf("price = %d", purchase.PurchasePrice.Cents)
	}

	// The linked item flipped to purchased.
	rr = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/items/%d", item.ID), nil)
	if got := decodeBody[core.GiftItem](t, rr); got.Status != core.StatusPurchased {
		t.Fatalf("item status = %q", got.Status)
	}

	// Lookup by item
	rr = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/purchases/item/%d", item.ID), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get by item status = %d", rr.Code)
	}
	if got := decodeBody[core.Purchase](t, rr); got.ID != purchase.ID {
		t.Fatalf("get by item = %d, want %d", got.ID, purchase.ID)
	}

	// Missing date is a client error.
	rr = doJSON(t, srv, http.MethodPost, "/api/purchases", map[string]any{
		"item_id":        item.ID,
		"purchase_price": 5,
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("missing date status = %d", rr.Code)
	}

	// Delete resets the item and returns 204; a second delete is 404.
	rr = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/purchases/%d", purchase.ID), nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/purchases/%d", purchase.ID), nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d", rr.Code)
	}

	got, err := store.Items.Get(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if got.Status != core.StatusReadyToBuy {
		t.Fatalf("item status = %q after delete", got.Status)
	}
}

func TestBudgetRoutes(t *testing.T) {
	srv, _ := newTestServer(t)

	// No budget yet: analytics and lookup are 404.
	rr := doJSON(t, srv, http.MethodGet, "/api/budget?year=2025", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("missing budget status = %d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodGet, "/api/budget/analytics?year=2025", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("missing analytics status = %d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/budget?year=abc", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad year status = %d", rr.Code)
	}

	// Create
	rr = doJSON(t, srv, http.MethodPost, "/api/budget", map[string]any{
		"total_budget": 1000,
		"year":         2025,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create budget status = %d, body %s", rr.Code, rr.Body.String())
	}

	// Upsert overwrites
	rr = doJSON(t, srv, http.MethodPut, "/api/budget/2025", map[string]any{
		"total_budget": 1200,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("upsert status = %d, body %s", rr.Code, rr.Body.String())
	}
	budget := decodeBody[core.Budget](t, rr)
	if budget.TotalBudget.Cents != 120000 {
		t.Fatalf("TotalBudget = %d", budget.TotalBudget.Cents)
	}

	// Full analytics flow
	alice := decodeBody[core.Recipient](t, doJSON(t, srv, http.MethodPost, "/api/recipients", map[string]any{
		"name":              "Alice",
		"budget_allocation": 100,
	}))
	item := decodeBody[core.GiftItem](t, doJSON(t, srv, http.MethodPost, "/api/items", map[string]any{
		"recipient_id": alice.ID,
		"name":         "Novel",
	}))
	doJSON(t, srv, http.MethodPost, "/api/purchases", map[string]any{
		"item_id":        item.ID,
		"purchase_price": 22.99,
		"purchase_date":  "2025-12-20",
	})

	rr = doJSON(t, srv, http.MethodGet, "/api/budget/analytics?year=2025", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("analytics status = %d, body %s", rr.Code, rr.Body.String())
	}
	analytics := decodeBody[core.BudgetAnalytics](t, rr)
	if analytics.TotalSpent.Cents != 2299 {
		t.Fatalf("TotalSpent = %d", analytics.TotalSpent.Cents)
	}
	if analytics.RemainingBudget.Cents != 117701 {
		t.Fatalf("RemainingBudget = %d", analytics.RemainingBudget.Cents)
	}
	if len(analytics.RecipientsBreakdown) != 1 || analytics.RecipientsBreakdown[0].Remaining.Cents != 7701 {
		t.Fatalf("breakdown = %+v", analytics.RecipientsBreakdown)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/recipients", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("preflight status = %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allow origin = %q", got)
	}
}
