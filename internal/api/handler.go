// Package api provides the HTTP handlers for the battle plan form.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/battleplan/internal/coach"
	"github.com/ashureev/battleplan/web"
)

// Submitter turns a struggle into a coach result.
type Submitter interface {
	SubmitStruggle(ctx context.Context, req coach.StrategyRequest) coach.Result
	MaxStruggleLength() int
}

const (
	defaultMaxFormBytes = 64 << 10

	bodyTooLargeMessage = "Request body too large."
	invalidFormMessage  = "Could not read the submitted form."
	rateLimitedMessage  = "Too many requests, please slow down and try again."
)

// Handler serves the form and strategy routes.
type Handler struct {
	coach        Submitter
	renderer     *web.Renderer
	maxFormBytes int64
}

// NewHandler creates a new Handler. A non-positive maxFormBytes selects 64 KiB.
func NewHandler(submitter Submitter, renderer *web.Renderer, maxFormBytes int64) *Handler {
	if maxFormBytes <= 0 {
		maxFormBytes = defaultMaxFormBytes
	}
	return &Handler{
		coach:        submitter,
		renderer:     renderer,
		maxFormBytes: maxFormBytes,
	}
}

// RegisterRoutes registers the form routes. Middleware in strategyMW applies
// only to the strategy submission.
func (h *Handler) RegisterRoutes(r chi.Router, strategyMW ...func(http.Handler) http.Handler) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api", http.StatusFound)
	})
	r.Get("/api", h.GetForm)
	r.With(strategyMW...).Post("/api/Strategy", h.PostStrategy)
}

// GetForm handles GET /api.
func (h *Handler) GetForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderForm(w, http.StatusOK, h.view())
}

// RateLimited renders the form with a throttling message. It is meant to be
// passed to middleware.RateLimiter.Middleware.
func (h *Handler) RateLimited(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		Error(w, http.StatusTooManyRequests, rateLimitedMessage)
		return
	}
	v := h.view()
	v.Error = rateLimitedMessage
	h.renderer.RenderForm(w, http.StatusTooManyRequests, v)
}

func (h *Handler) view() web.View {
	return web.View{MaxLength: h.coach.MaxStruggleLength()}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("api: failed to encode response", "error", err)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
