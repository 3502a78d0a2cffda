// Package api provides HTTP handlers for the fulfillment service.
package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rihemtrigui/Customer-Support-Bot/internal/dialog"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// maxEventBytes caps the request body read for one turn event.
const maxEventBytes = 1 << 20

// FulfillmentHandler handles turn events from the conversational front-end.
type FulfillmentHandler struct {
	engine *dialog.Engine
}

// NewFulfillmentHandler creates a new fulfillment handler.
func NewFulfillmentHandler(engine *dialog.Engine) *FulfillmentHandler {
	return &FulfillmentHandler{engine: engine}
}

// RegisterRoutes registers fulfillment routes.
func (h *FulfillmentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/fulfillment", h.Fulfill)
}

// Fulfill processes one dialog turn. The front-end expects a well-formed
// turn response on every call, so decode failures are answered with the
// engine's generic failure close rather than an HTTP error status.
func (h *FulfillmentHandler) Fulfill(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBytes))
	if err != nil {
		slog.Error("Failed to read turn event body", "error", err)
		JSON(w, http.StatusOK, h.engine.HandleTurn(r.Context(), nil))
		return
	}

	var event dialog.TurnEvent
	if err := json.Unmarshal(body, &event); err != nil {
		slog.Warn("Malformed turn event", "error", err)
		JSON(w, http.StatusOK, h.engine.HandleTurn(r.Context(), nil))
		return
	}
	// Keep the original body so FAQ turns can be forwarded verbatim.
	event.Raw = body

	JSON(w, http.StatusOK, h.engine.HandleTurn(r.Context(), &event))
}
