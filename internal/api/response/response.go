// Package response provides utilities for HTTP response handling.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/aqipro/aqipro/internal/api/middleware"
	"github.com/aqipro/aqipro/internal/api/models"
)

// JSON writes a JSON response with the given status code, echoing
// X-Request-Id for correlation.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	if requestID := middleware.GetRequestID(r.Context()); requestID != "" {
		w.Header().Set("X-Request-Id", requestID)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Raw writes a pre-encoded JSON body verbatim, used when forwarding an
// upstream response unchanged.
func Raw(w http.ResponseWriter, r *http.Request, status int, body []byte) {
	if requestID := middleware.GetRequestID(r.Context()); requestID != "" {
		w.Header().Set("X-Request-Id", requestID)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// Error writes a Problem+JSON error response.
func Error(w http.ResponseWriter, r *http.Request, problem *models.Problem) {
	problem.Instance = r.URL.Path
	problem.Write(w)
}

// BadRequest writes a 400 Bad Request error response.
func BadRequest(w http.ResponseWriter, r *http.Request, detail string) {
	requestID := middleware.GetRequestID(r.Context())
	Error(w, r, models.NewBadRequest(requestID, detail))
}

// NotFound writes a 404 Not Found error response.
func NotFound(w http.ResponseWriter, r *http.Request, detail string) {
	requestID := middleware.GetRequestID(r.Context())
	Error(w, r, models.NewNotFound(requestID, detail))
}

// InternalError writes a 500 Internal Server Error response.
func InternalError(w http.ResponseWriter, r *http.Request, detail string) {
	requestID := middleware.GetRequestID(r.Context())
	Error(w, r, models.NewInternalError(requestID, detail))
}

// ServiceUnavailable writes a 503 Service Unavailable error response.
func ServiceUnavailable(w http.ResponseWriter, r *http.Request, detail string) {
	requestID := middleware.GetRequestID(r.Context())
	Error(w, r, models.NewServiceUnavailable(requestID, detail))
}

// UpstreamError writes a 502 with a provider-shaped error envelope.
// Clients parse one envelope format for both forwarded provider errors
// and proxy-detected transport failures.
func UpstreamError(w http.ResponseWriter, r *http.Request, detail string) {
	Raw(w, r, http.StatusBadGateway,
		mustMarshal(map[string]string{"status": "error", "data": detail}))
}

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
