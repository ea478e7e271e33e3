// Package http exposes the repositories and the analytics aggregator over
// a JSON REST API. Routing uses the stdlib mux with method patterns; every
// route maps onto exactly one repository operation.
package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	applog "giftplan/internal/log"
	"giftplan/internal/services"
	"giftplan/internal/storage"
)

type Server struct {
	http.Server
}

// NewServer wires the route table and returns a ready-to-run server.
func NewServer(addr string, store *storage.Store, purchases *services.PurchaseService) *Server {
	mux := http.NewServeMux()

	recipients := &RecipientHandler{recipients: store.Recipients}
	items := &GiftItemHandler{items: store.Items}
	purchaseH := &PurchaseHandler{purchases: purchases}
	budget := &BudgetHandler{budgets: store.Budgets}

	mux.HandleFunc("GET /api/health", handleHealth)

	mux.HandleFunc("GET /api/recipients", withRequestLog(recipients.List))
	mux.HandleFunc("POST /api/recipients", withRequestLog(recipients.Create))
	mux.HandleFunc("GET /api/recipients/{id}", withRequestLog(recipients.Get))
	mux.HandleFunc("PUT /api/recipients/{id}", withRequestLog(recipients.Update))
	mux.HandleFunc("DELETE /api/recipients/{id}", withRequestLog(recipients.Delete))

	mux.HandleFunc("GET /api/items", withRequestLog(items.List))
	mux.HandleFunc("POST /api/items", withRequestLog(items.Create))
	mux.HandleFunc("GET /api/items/{id}", withRequestLog(items.Get))
	mux.HandleFunc("PUT /api/items/{id}", withRequestLog(items.Update))
	mux.HandleFunc("PUT /api/items/{id}/status", withRequestLog(items.SetStatus))
	mux.HandleFunc("DELETE /api/items/{id}", withRequestLog(items.Delete))

	mux.HandleFunc("GET /api/purchases", withRequestLog(purchaseH.List))
	mux.HandleFunc("POST /api/purchases", withRequestLog(purchaseH.Create))
	mux.HandleFunc("GET /api/purchases/item/{itemID}", withRequestLog(purchaseH.GetByItem))
	mux.HandleFunc("GET /api/purchases/{id}", withRequestLog(purchaseH.Get))
	mux.HandleFunc("PUT /api/purchases/{id}", withRequestLog(purchaseH.Update))
	mux.HandleFunc("DELETE /api/purchases/{id}", withRequestLog(purchaseH.Delete))

	mux.HandleFunc("GET /api/budget", withRequestLog(budget.Get))
	mux.HandleFunc("POST /api/budget", withRequestLog(budget.Create))
	mux.HandleFunc("PUT /api/budget/{year}", withRequestLog(budget.Upsert))
	mux.HandleFunc("GET /api/budget/analytics", withRequestLog(budget.Analytics))

	return &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: withCORS(mux),
		},
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// withRequestLog adds a request id and start/finish logging around a
// handler.
func withRequestLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := generateRequestID()

		slog.InfoContext(r.Context(), "request started",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, r.RemoteAddr)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(r.Context(), "request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, time.Since(start).Milliseconds())
	}
}

// withCORS allows the browser client to call the API cross-origin.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
