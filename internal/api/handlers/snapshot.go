package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/onnwee/forcemap/internal/logger"
	"github.com/onnwee/forcemap/internal/metrics"
)

// snapshotBody is the wire form of one body.
type snapshotBody struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	VX    float64 `json:"vx"`
	VY    float64 `json:"vy"`
	Mass  float64 `json:"mass"`
	Fixed bool    `json:"fixed"`
}

// snapshotSpring is the wire form of one spring.
type snapshotSpring struct {
	A int `json:"a"`
	B int `json:"b"`
}

type snapshotResponse struct {
	Tick    int64            `json:"tick"`
	Bodies  []snapshotBody   `json:"bodies"`
	Springs []snapshotSpring `json:"springs"`
}

// GetSnapshot returns the full body and spring state. Responses are
// cached keyed by tick and body count, since polling renderers
// outpace the ticker once the layout settles.
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	tick := h.sim.Ticks()
	key := fmt.Sprintf("snapshot:%d:%d", tick, h.sim.Store().Len())

	if h.cache != nil {
		if data, ok := h.cache.Get(key); ok {
			metrics.SnapshotCacheHits.Inc()
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(data)
			return
		}
		metrics.SnapshotCacheMisses.Inc()
	}

	snap := h.sim.Snapshot()
	resp := snapshotResponse{
		Tick:    tick,
		Bodies:  make([]snapshotBody, len(snap.Bodies)),
		Springs: make([]snapshotSpring, len(snap.Springs)),
	}
	for i, b := range snap.Bodies {
		resp.Bodies[i] = snapshotBody{
			X: b.Pos.X, Y: b.Pos.Y,
			VX: b.Vel.X, VY: b.Vel.Y,
			Mass:  b.Mass,
			Fixed: b.Fixed,
		}
	}
	for i, sp := range snap.Springs {
		resp.Springs[i] = snapshotSpring{A: sp.A, B: sp.B}
	}

	data, err := json.Marshal(resp)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to encode snapshot", "error", err)
		http.Error(w, "encoding failed", http.StatusInternalServerError)
		return
	}
	if h.cache != nil {
		h.cache.Set(key, data, h.cacheTTL)
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}
