package config

import (
	"os"
	"strings"
	"time"

	"github.com/onnwee/forcemap/internal/utils"
)

// Config holds application configuration derived from environment variables.
type Config struct {
	Addr     string
	LogLevel string

	// Simulation tuning
	SimDeltaTime       float64
	SimTheta           float64
	SimDamping         float64
	SimSpringStiffness float64
	SimSpringNeutral   float64
	SimGravityForce    float64
	SimRepelForce      float64
	SimFreezeThreshold float64
	SimMaxThreads      int
	SimEdgeBasedMass   bool
	TickInterval       time.Duration

	// Demo graph the server generates at startup
	DemoNodes       int
	DemoEdgesPerNew int
	DemoSeed        int

	// Snapshot cache
	SnapshotCacheMB  int
	SnapshotCacheTTL time.Duration

	// WebSocket streaming
	WSFrameInterval time.Duration

	// Rate limiting for mutation routes
	RateLimitGlobal      float64
	RateLimitGlobalBurst int
	RateLimitIP          float64
	RateLimitIPBurst     int

	// Observability
	SentryEnvironment string
	SentryRelease     string
	OTELEnabled       bool
	OTELEndpoint      string
	OTELSampleRate    float64
}

var cached *Config

// Load reads env vars once and caches them.
func Load() *Config {
	if cached != nil {
		return cached
	}
	addr := strings.TrimSpace(os.Getenv("LAYOUT_ADDR"))
	if addr == "" {
		addr = ":8000"
	}
	cached = &Config{
		Addr:     addr,
		LogLevel: os.Getenv("LOG_LEVEL"),

		SimDeltaTime:       utils.GetEnvAsFloat("SIM_DELTA_TIME", 0.005),
		SimTheta:           utils.GetEnvAsFloat("SIM_QUADTREE_THETA", 0.75),
		SimDamping:         utils.GetEnvAsFloat("SIM_DAMPING", 0.9),
		SimSpringStiffness: utils.GetEnvAsFloat("SIM_SPRING_STIFFNESS", 100.0),
		SimSpringNeutral:   utils.GetEnvAsFloat("SIM_SPRING_NEUTRAL_LENGTH", 2.0),
		SimGravityForce:    utils.GetEnvAsFloat("SIM_GRAVITY_FORCE", 1.0),
		SimRepelForce:      utils.GetEnvAsFloat("SIM_REPEL_FORCE", 100.0),
		SimFreezeThreshold: utils.GetEnvAsFloat("SIM_FREEZE_THRESHOLD", 1e-2),
		SimMaxThreads:      utils.GetEnvAsInt("SIM_MAX_THREADS", 16),
		SimEdgeBasedMass:   utils.GetEnvAsBool("SIM_EDGE_BASED_MASS", true),
		TickInterval:       utils.GetEnvAsDuration("SIM_TICK_INTERVAL", 0),

		DemoNodes:       utils.GetEnvAsInt("DEMO_NODES", 1000),
		DemoEdgesPerNew: utils.GetEnvAsInt("DEMO_EDGES_PER_NODE", 2),
		DemoSeed:        utils.GetEnvAsInt("DEMO_SEED", 1),

		SnapshotCacheMB:  utils.GetEnvAsInt("SNAPSHOT_CACHE_MB", 32),
		SnapshotCacheTTL: utils.GetEnvAsDuration("SNAPSHOT_CACHE_TTL", 100*time.Millisecond),

		WSFrameInterval: utils.GetEnvAsDuration("WS_FRAME_INTERVAL", 50*time.Millisecond),

		RateLimitGlobal:      utils.GetEnvAsFloat("RATE_LIMIT_GLOBAL_RPS", 100),
		RateLimitGlobalBurst: utils.GetEnvAsInt("RATE_LIMIT_GLOBAL_BURST", 200),
		RateLimitIP:          utils.GetEnvAsFloat("RATE_LIMIT_IP_RPS", 10),
		RateLimitIPBurst:     utils.GetEnvAsInt("RATE_LIMIT_IP_BURST", 20),

		SentryEnvironment: envOr("SENTRY_ENVIRONMENT", "development"),
		SentryRelease:     envOr("SENTRY_RELEASE", "dev"),
		OTELEnabled:       utils.GetEnvAsBool("OTEL_ENABLED", false),
		OTELEndpoint:      envOr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		OTELSampleRate:    utils.GetEnvAsFloat("OTEL_TRACE_SAMPLE_RATE", 0.1),
	}
	return cached
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// ResetForTest clears cached config; for use in tests only.
func ResetForTest() { cached = nil }
