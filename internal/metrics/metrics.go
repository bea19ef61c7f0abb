package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Simulation metrics
	SimTicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sim_ticks_total",
			Help: "Total number of simulation ticks executed",
		},
	)

	SimTickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sim_tick_duration_seconds",
			Help:    "Duration of a full simulation tick",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	SimTreeBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sim_tree_build_duration_seconds",
			Help:    "Duration of the per-tick quadtree build",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	SimTreeNodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sim_tree_arena_entries",
			Help: "Arena entries in the most recent quadtree build",
		},
	)

	SimTreeDeadLeaves = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sim_tree_dead_leaves",
			Help: "Arena entries orphaned by epsilon-merges in the most recent build",
		},
	)

	SimBodies = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sim_bodies",
			Help: "Number of bodies in the simulation",
		},
	)

	SimSprings = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sim_springs",
			Help: "Number of springs in the simulation",
		},
	)

	SimFrozenBodies = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sim_frozen_bodies",
			Help: "Number of bodies pinned by the freeze rule",
		},
	)

	// HTTP API metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests served by the layout API",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	SnapshotCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "snapshot_cache_hits_total",
			Help: "Snapshot responses served from the byte cache",
		},
	)

	SnapshotCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "snapshot_cache_misses_total",
			Help: "Snapshot responses that had to be re-encoded",
		},
	)

	// WebSocket metrics
	WSClientsConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_clients_connected",
			Help: "Currently connected WebSocket clients",
		},
	)

	WSFramesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ws_frames_sent_total",
			Help: "Position frames broadcast to WebSocket clients",
		},
	)

	// Rate limiting
	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"scope"}, // scope: global, ip
	)
)
