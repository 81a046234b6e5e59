package api

import (
	"errors"
	"log/slog"
	"net/http"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ashureev/battleplan/internal/coach"
)

// strategyResponse is the JSON form of a coach.Result.
type strategyResponse struct {
	BattlePlan string `json:"battle_plan,omitempty"`
	Error      string `json:"error,omitempty"`
	Kind       string `json:"kind,omitempty"`
}

// PostStrategy handles POST /api/Strategy.
func (h *Handler) PostStrategy(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFormBytes)
	if err := r.ParseMultipartForm(h.maxFormBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		status, msg := http.StatusBadRequest, invalidFormMessage
		if isBodyTooLarge(err) {
			status, msg = http.StatusRequestEntityTooLarge, bodyTooLargeMessage
		}
		slog.DebugContext(r.Context(), "failed to parse strategy form",
			"request_id", chiMiddleware.GetReqID(r.Context()),
			"error", err,
		)
		h.writeFailure(w, r, status, msg, "")
		return
	}

	res := h.coach.SubmitStruggle(r.Context(), coach.StrategyRequest{
		Struggle: r.PostFormValue(coach.FormField),
	})

	if res.Failure != nil {
		slog.InfoContext(r.Context(), "strategy request failed",
			"request_id", chiMiddleware.GetReqID(r.Context()),
			"kind", res.Failure.Kind,
		)
		h.writeFailure(w, r, http.StatusOK, res.Failure.Message, string(res.Failure.Kind))
		return
	}

	if wantsJSON(r) {
		JSON(w, http.StatusOK, strategyResponse{BattlePlan: res.BattlePlan})
		return
	}
	v := h.view()
	v.BattlePlan = res.BattlePlan
	h.renderer.RenderForm(w, http.StatusOK, v)
}

func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, status int, msg, kind string) {
	if wantsJSON(r) {
		JSON(w, status, strategyResponse{Error: msg, Kind: kind})
		return
	}
	v := h.view()
	v.Error = msg
	h.renderer.RenderForm(w, status, v)
}
