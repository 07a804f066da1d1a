package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
	"orgchart/internal/pkg/errors"
	"orgchart/internal/platform/settings"
	"orgchart/internal/scheduler"
)

type SettingsHandler struct {
	store     *settings.Store
	scheduler *scheduler.Scheduler
}

func NewSettingsHandler(store *settings.Store, sched *scheduler.Scheduler) *SettingsHandler {
	return &SettingsHandler{store: store, scheduler: sched}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.store.Load())
}

// Update merges the request body over the current settings, so callers may
// send only the keys they change. A successful save restarts the scheduler
// to pick up a new update time or auto-update toggle.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	merged := h.store.Load()
	if err := json.NewDecoder(r.Body).Decode(&merged); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if merged.NewEmployeeMonths <= 0 {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "newEmployeeMonths must be positive", nil)
		return
	}
	if !settings.ValidUpdateTime(merged.UpdateTime) {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "updateTime must be HH:MM", nil)
		return
	}

	if err := h.store.Save(merged); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to save settings", nil)
		return
	}

	if err := h.scheduler.Restart(); err != nil {
		log.Error().Err(err).Msg("failed to restart scheduler after settings update")
	}

	writeJSON(w, merged)
}
