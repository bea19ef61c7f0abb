// Package handlers implements the HTTP surface over a running layout
// simulation: snapshot reads, body mutations, the enable toggle, and
// the WebSocket position stream.
package handlers

import (
	"time"

	"github.com/onnwee/forcemap/internal/cache"
	"github.com/onnwee/forcemap/internal/sim"
)

// Handler bundles the simulator with the response cache shared by the
// snapshot endpoints.
type Handler struct {
	sim      *sim.Simulator
	cache    cache.Cache
	cacheTTL time.Duration
}

// New creates a Handler. cache may be nil to disable response caching.
func New(s *sim.Simulator, c cache.Cache, cacheTTL time.Duration) *Handler {
	return &Handler{sim: s, cache: c, cacheTTL: cacheTTL}
}
