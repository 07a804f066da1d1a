package handlers

import (
	"errors"
	"net/http"

	apiErrors "orgchart/internal/pkg/errors"
	"orgchart/internal/refresh"
)

type RefreshHandler struct {
	refresher *refresh.Service
}

func NewRefreshHandler(refresher *refresh.Service) *RefreshHandler {
	return &RefreshHandler{refresher: refresher}
}

// Trigger starts a background refresh cycle. Answers 202 once the cycle is
// accepted and 409 when one is already running.
func (h *RefreshHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	if err := h.refresher.Trigger(); err != nil {
		if errors.Is(err, refresh.ErrRefreshInFlight) {
			apiErrors.WriteError(w, http.StatusConflict, apiErrors.ErrCodeConflict, "A refresh cycle is already running", nil)
			return
		}
		apiErrors.WriteError(w, http.StatusInternalServerError, apiErrors.ErrCodeInternal, "Failed to start refresh", nil)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (h *RefreshHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.refresher.Status())
}
