package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/onnwee/forcemap/internal/api/handlers"
	"github.com/onnwee/forcemap/internal/middleware"
)

// NewRouter assembles the layout service's routes. All routes carry
// request IDs, panic recovery, and CORS; the snapshot route is
// compressed (the payload is large JSON) and the mutation routes sit
// behind the rate limiter.
func NewRouter(h *handlers.Handler, hub *handlers.Hub, rl *middleware.RateLimiter) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RecoverWithSentry)
	r.Use(middleware.Metrics)
	r.Use(mux.MiddlewareFunc(middleware.CORS(nil)))

	// Lightweight healthcheck: GET /health -> {"status":"ok"}
	r.HandleFunc("/health", handlers.Health).Methods("GET")

	// Prometheus scrape endpoint; promhttp negotiates its own encoding
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Live position frames for renderers
	r.HandleFunc("/ws", hub.ServeWS)

	api := r.PathPrefix("/api").Subrouter()

	// Full state read for rendering/inspection
	api.Handle("/snapshot", middleware.Compress(http.HandlerFunc(h.GetSnapshot))).Methods("GET")

	// Simulation status and ticker toggle
	api.HandleFunc("/sim", h.GetStatus).Methods("GET")
	api.HandleFunc("/sim/enabled", h.SetEnabled).Methods("POST")

	// Body queries and mutations
	api.HandleFunc("/bodies/closest", h.GetClosest).Methods("GET")
	api.Handle("/bodies", rl.Limit(http.HandlerFunc(h.InsertBody))).Methods("POST")
	api.Handle("/bodies/{index:[0-9]+}/position", rl.Limit(http.HandlerFunc(h.SetBodyPosition))).Methods("PUT")

	return r
}
