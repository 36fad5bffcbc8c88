// Package server exposes the HTTP trigger surface of the agent: a health
// endpoint and a bearer-token-protected endpoint that kicks off one scan
// batch. Registered with the Functions Framework so the agent can also run
// as a request-triggered function instead of a polling daemon.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// BatchRunner runs a single fetch-and-process cycle.
type BatchRunner interface {
	RunBatch(ctx context.Context) error
}

// Handler serves the trigger endpoints.
type Handler struct {
	runner      BatchRunner
	bearerToken string
	log         *zap.Logger

	// runAsync decouples the HTTP response from the batch. Swapped in tests.
	runAsync func(func())
}

// NewHandler creates a trigger handler.
func NewHandler(runner BatchRunner, bearerToken string, log *zap.Logger) *Handler {
	return &Handler{
		runner:      runner,
		bearerToken: bearerToken,
		log:         log,
		runAsync:    func(fn func()) { go fn() },
	}
}

// ServeHTTP handles health checks on GET and scan triggers on POST.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"message": "Service is running",
		})
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.validBearerToken(r) {
		h.log.Warn("scan trigger rejected, invalid bearer token")
		http.Error(w, "Invalid bearer token", http.StatusUnauthorized)
		return
	}

	h.runAsync(func() {
		if err := h.runner.RunBatch(context.Background()); err != nil {
			h.log.Error("triggered batch failed", zap.Error(err))
		}
	})

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "scan started"})
}

// validBearerToken compares the Authorization header in constant time.
func (h *Handler) validBearerToken(r *http.Request) bool {
	if h.bearerToken == "" {
		return false
	}
	expected := "Bearer " + h.bearerToken
	provided := r.Header.Get("Authorization")
	return subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) == 1
}

func writeJSON(w http.ResponseWriter, status int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
