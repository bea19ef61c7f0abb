package server

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"

	"github.com/onnwee/forcemap/internal/api"
	"github.com/onnwee/forcemap/internal/api/handlers"
	"github.com/onnwee/forcemap/internal/cache"
	"github.com/onnwee/forcemap/internal/config"
	"github.com/onnwee/forcemap/internal/graphio"
	"github.com/onnwee/forcemap/internal/logger"
	"github.com/onnwee/forcemap/internal/middleware"
	"github.com/onnwee/forcemap/internal/sim"
	"github.com/onnwee/forcemap/internal/tracing"
)

// Server owns the simulator, the background ticker, and the HTTP
// surface over them.
type Server struct {
	cfg    *config.Config
	sim    *sim.Simulator
	hub    *handlers.Hub
	router *mux.Router
}

// New builds a server from configuration around a generated
// preferential-attachment demo graph, so the service is immediately
// explorable. There is no option to load a different graph.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	ctx, span := tracing.StartSpan(ctx, "server.New")
	defer span.End()

	g, err := graphio.NewPreferentialAttachment(cfg.DemoNodes, cfg.DemoEdgesPerNew, uint64(cfg.DemoSeed))
	if err != nil {
		return nil, fmt.Errorf("generate demo graph: %w", err)
	}
	span.SetAttributes(attribute.Int("demo_nodes", cfg.DemoNodes))

	simulator := sim.NewBuilder().
		DeltaTime(cfg.SimDeltaTime).
		QuadtreeTheta(cfg.SimTheta).
		Damping(cfg.SimDamping).
		SpringStiffness(cfg.SimSpringStiffness).
		SpringNeutralLength(cfg.SimSpringNeutral).
		GravityForce(cfg.SimGravityForce).
		RepelForce(cfg.SimRepelForce).
		FreezeThreshold(cfg.SimFreezeThreshold).
		MaxThreads(cfg.SimMaxThreads).
		EdgeBasedMass(cfg.SimEdgeBasedMass).
		Seed(uint64(cfg.DemoSeed)).
		Build(g)

	snapCache, err := cache.NewLRU(int64(cfg.SnapshotCacheMB), cfg.SnapshotCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("create snapshot cache: %w", err)
	}

	h := handlers.New(simulator, snapCache, cfg.SnapshotCacheTTL)
	hub := handlers.NewHub(simulator, cfg.WSFrameInterval)
	rl := middleware.NewRateLimiter(cfg.RateLimitGlobal, cfg.RateLimitGlobalBurst, cfg.RateLimitIP, cfg.RateLimitIPBurst)

	return &Server{
		cfg:    cfg,
		sim:    simulator,
		hub:    hub,
		router: api.NewRouter(h, hub, rl),
	}, nil
}

// Sim exposes the simulator, mostly for tests.
func (s *Server) Sim() *sim.Simulator { return s.sim }

// Router returns the HTTP handler for the service.
func (s *Server) Router() *mux.Router { return s.router }

// Start launches the background ticker and the WebSocket hub. Both
// exit when ctx is canceled; a tick already in flight completes first.
func (s *Server) Start(ctx context.Context) {
	go s.hub.Run(ctx)
	go s.runTicker(ctx)
}

// runTicker drives the simulation whenever it is enabled. A disabled
// simulator is polled gently instead of spinning.
func (s *Server) runTicker(ctx context.Context) {
	log := logger.WithComponent("ticker")
	log.Info("Simulation ticker started",
		"tick_interval", s.cfg.TickInterval,
		"bodies", s.sim.Store().Len(),
	)
	progress := logger.NewProgress(log, "simulation ticks", 1000)
	for {
		select {
		case <-ctx.Done():
			progress.Done("frozen", s.sim.FrozenCount())
			return
		default:
		}

		if !s.sim.Enabled() {
			time.Sleep(50 * time.Millisecond)
			continue
		}

		s.sim.Step()
		progress.Inc("frozen", s.sim.FrozenCount())
		if s.cfg.TickInterval > 0 {
			time.Sleep(s.cfg.TickInterval)
		}
	}
}
