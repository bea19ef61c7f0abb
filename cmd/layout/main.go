// Command layout runs the simulation headless: it builds a graph,
// ticks until every body freezes or an iteration cap is reached, and
// writes the final positions as JSON to stdout.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gonum.org/v1/gonum/graph"

	"github.com/onnwee/forcemap/internal/graphio"
	"github.com/onnwee/forcemap/internal/logger"
	"github.com/onnwee/forcemap/internal/sim"
)

type output struct {
	Ticks     int64        `json:"ticks"`
	Frozen    int64        `json:"frozen"`
	Positions [][2]float64 `json:"positions"`
}

func main() {
	_ = godotenv.Load()

	var (
		input    = flag.String("input", "", "path to a JSON edge list; when empty a demo graph is generated")
		nodes    = flag.Int("nodes", 1000, "demo graph node count")
		degree   = flag.Int("degree", 2, "demo graph edges per new node")
		seed     = flag.Uint64("seed", 0, "RNG seed for graph generation and initial positions")
		maxTicks = flag.Int("max-ticks", 10000, "tick cap when the layout does not freeze")
		dt       = flag.Float64("dt", 0.01, "simulated time per tick")
		theta    = flag.Float64("theta", 0.75, "Barnes-Hut opening parameter")
		threads  = flag.Int("threads", 16, "worker pool size")
	)
	flag.Parse()

	logger.Init(os.Getenv("LOG_LEVEL"))

	var (
		g   graph.Graph
		err error
	)
	if *input != "" {
		f, err := os.Open(*input)
		if err != nil {
			log.Fatalf("open input: %v", err)
		}
		g, err = graphio.ReadEdgeList(f)
		f.Close()
		if err != nil {
			log.Fatalf("read edge list: %v", err)
		}
	} else {
		g, err = graphio.NewPreferentialAttachment(*nodes, *degree, *seed)
		if err != nil {
			log.Fatalf("generate graph: %v", err)
		}
	}

	s := sim.NewBuilder().
		DeltaTime(*dt).
		QuadtreeTheta(*theta).
		MaxThreads(*threads).
		Seed(*seed).
		Build(g)

	progress := logger.NewProgress(logger.WithComponent("layout"), "ticks", 1000)
	n := int64(s.Store().Len())
	ticks := 0
	for ; ticks < *maxTicks; ticks++ {
		s.Step()
		progress.Inc("frozen", s.FrozenCount())
		if s.FrozenCount() == n {
			break
		}
	}
	progress.Done("frozen", s.FrozenCount(), "bodies", n)

	snap := s.Snapshot()
	out := output{
		Ticks:     s.Ticks(),
		Frozen:    s.FrozenCount(),
		Positions: make([][2]float64, len(snap.Bodies)),
	}
	for i, b := range snap.Bodies {
		out.Positions[i] = [2]float64{b.Pos.X, b.Pos.Y}
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("encode output: %v", err)
	}
}
