package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"giftplan/internal/core"
	applog "giftplan/internal/log"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", applog.FieldError, err)
	}
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorResponse{Error: message})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// pathID parses the named integer path segment.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

// queryYear extracts the ?year= parameter, defaulting to the current
// calendar year when absent. A non-integer value is a client error.
func queryYear(r *http.Request) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("year"))
	if v == "" {
		return time.Now().Year(), nil
	}
	return strconv.Atoi(v)
}

// respondStoreError maps a repository error onto the HTTP taxonomy:
// absence becomes 404, anything else a generic 500.
func respondStoreError(w http.ResponseWriter, r *http.Request, err error, what string) {
	if errors.Is(err, core.ErrNotFound) {
		writeError(w, http.StatusNotFound, what+" not found")
		return
	}
	slog.ErrorContext(r.Context(), "store error",
		applog.FieldError, err, applog.FieldMethod, r.Method, applog.FieldPath, r.URL.Path)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
