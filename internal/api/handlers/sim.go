package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/onnwee/forcemap/internal/apierr"
	"github.com/onnwee/forcemap/internal/logger"
)

type simStatus struct {
	Enabled bool  `json:"enabled"`
	Tick    int64 `json:"tick"`
	Bodies  int   `json:"bodies"`
	Springs int   `json:"springs"`
	Frozen  int64 `json:"frozen"`
}

// GetStatus reports the simulation's current shape and progress.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	snap := h.sim.Snapshot()
	status := simStatus{
		Enabled: h.sim.Enabled(),
		Tick:    h.sim.Ticks(),
		Bodies:  len(snap.Bodies),
		Springs: len(snap.Springs),
		Frozen:  h.sim.FrozenCount(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(status)
}

type enabledRequest struct {
	Enabled *bool `json:"enabled"`
}

// SetEnabled toggles the background ticker.
func (h *Handler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	var req enabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(apierr.ErrValidationInvalidJSON, "request body must be JSON").Write(r.Context(), w)
		return
	}
	if req.Enabled == nil {
		apierr.BadRequest(apierr.ErrValidationMissingField, "enabled is required").Write(r.Context(), w)
		return
	}
	h.sim.Enable(*req.Enabled)
	logger.FromContext(r.Context()).Info("Simulation toggled", "enabled", *req.Enabled)
	w.WriteHeader(http.StatusNoContent)
}
