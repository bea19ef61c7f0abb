package sim

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"gonum.org/v1/gonum/graph"

	"github.com/onnwee/forcemap/internal/geom"
	"github.com/onnwee/forcemap/internal/logger"
)

// initialSpread is the half-extent of the random box node positions
// are seeded into at graph ingestion.
const initialSpread = 60.0

// Builder configures and constructs a Simulator. All setters return
// the builder for chaining; Build may be called once.
type Builder struct {
	p             params
	edgeBasedMass bool
	seed          uint64
	seeded        bool
}

// NewBuilder returns a builder with the default tuning.
func NewBuilder() *Builder {
	return &Builder{
		p: params{
			repel:               true,
			spring:              true,
			gravity:             true,
			springStiffness:     100.0,
			springNeutralLength: 2.0,
			gravityForce:        1.0,
			repelForceConst:     100.0,
			damping:             0.9,
			deltaTime:           0.005,
			theta:               0.75,
			freezeThreshold:     1e-2,
			maxThreads:          16,
		},
		edgeBasedMass: true,
	}
}

// Repel toggles body-body repulsion.
func (b *Builder) Repel(v bool) *Builder { b.p.repel = v; return b }

// Spring toggles edge spring forces.
func (b *Builder) Spring(v bool) *Builder { b.p.spring = v; return b }

// Gravity toggles the center-seeking pull.
func (b *Builder) Gravity(v bool) *Builder { b.p.gravity = v; return b }

// SpringStiffness sets the Hookean constant for every spring.
func (b *Builder) SpringStiffness(v float64) *Builder { b.p.springStiffness = v; return b }

// SpringNeutralLength sets the rest length of every spring. Set it to
// zero if edges should always pull together.
func (b *Builder) SpringNeutralLength(v float64) *Builder { b.p.springNeutralLength = v; return b }

// GravityForce sets how strongly bodies are pulled to the origin.
func (b *Builder) GravityForce(v float64) *Builder { b.p.gravityForce = v; return b }

// RepelForce sets the repulsion constant.
func (b *Builder) RepelForce(v float64) *Builder { b.p.repelForceConst = v; return b }

// Damping scales velocity each tick: 1 means no damping, 0 no
// movement.
func (b *Builder) Damping(v float64) *Builder { b.p.damping = v; return b }

// DeltaTime sets the simulated time per tick. Panics when zero or
// negative.
func (b *Builder) DeltaTime(v float64) *Builder {
	if v <= 0 {
		panic(fmt.Sprintf("sim: delta time must be positive, got %v", v))
	}
	b.p.deltaTime = v
	return b
}

// QuadtreeTheta sets the Barnes-Hut opening parameter in [0, 1]: 0
// degenerates to brute force, larger values approximate more
// aggressively.
func (b *Builder) QuadtreeTheta(v float64) *Builder { b.p.theta = v; return b }

// FreezeThreshold pins bodies whose speed drops below the threshold.
// A negative value disables freezing.
func (b *Builder) FreezeThreshold(v float64) *Builder { b.p.freezeThreshold = v; return b }

// MaxThreads bounds the per-tick worker pool. Panics when zero.
func (b *Builder) MaxThreads(n int) *Builder {
	if n <= 0 {
		panic(fmt.Sprintf("sim: max threads must be positive, got %d", n))
	}
	b.p.maxThreads = n
	return b
}

// EdgeBasedMass adds one unit of mass to each endpoint per incident
// edge before simulation begins.
func (b *Builder) EdgeBasedMass(v bool) *Builder { b.edgeBasedMass = v; return b }

// Seed fixes the RNG used for initial positions, making layouts
// reproducible. Unseeded builders derive a seed from the clock.
func (b *Builder) Seed(seed uint64) *Builder {
	b.seed = seed
	b.seeded = true
	return b
}

// Build ingests a graph into a Simulator: one body per node seeded
// uniformly in a bounded box around the origin, one symmetric spring
// per edge. Node IDs are mapped to dense body indices in sorted-ID
// order so the same graph and seed always yield the same layout.
func (b *Builder) Build(g graph.Graph) *Simulator {
	seed := b.seed
	if !b.seeded {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed))

	ids := make([]int64, 0)
	nodes := g.Nodes()
	for nodes.Next() {
		ids = append(ids, nodes.Node().ID())
	}
	slices.Sort(ids)
	index := make(map[int64]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	bodies := make([]Body, len(ids))
	for i := range bodies {
		pos := geom.V(
			rng.Float64()*2*initialSpread-initialSpread,
			rng.Float64()*2*initialSpread-initialSpread,
		)
		bodies[i] = NewBody(pos, 1.0)
	}

	springs := b.collectSprings(g, index)
	if b.edgeBasedMass {
		for _, sp := range springs {
			bodies[sp.A].Mass++
			bodies[sp.B].Mass++
		}
	}

	logger.WithComponent("sim").Info("Graph ingested",
		"bodies", len(bodies),
		"springs", len(springs),
		"edge_based_mass", b.edgeBasedMass,
	)
	return newSimulator(NewBodyStore(bodies, springs), b.p)
}

// BuildFromParts constructs a Simulator over pre-assembled bodies and
// springs, bypassing graph ingestion. Used by tests and by callers
// that already hold dense-indexed state.
func (b *Builder) BuildFromParts(bodies []Body, springs []Spring) *Simulator {
	return newSimulator(NewBodyStore(bodies, springs), b.p)
}

// collectSprings walks g's edges once each, regardless of whether the
// graph is directed: the force layer treats every edge as a symmetric
// spring. Springs are sorted by endpoint pair so the serial spring
// pass accumulates in a platform-stable order.
func (b *Builder) collectSprings(g graph.Graph, index map[int64]int) []Spring {
	springs := make([]Spring, 0)
	add := func(uid, vid int64) {
		a, b2 := index[uid], index[vid]
		springs = append(springs, Spring{
			A:             a,
			B:             b2,
			Stiffness:     b.p.springStiffness,
			NeutralLength: b.p.springNeutralLength,
		})
	}

	if eg, ok := g.(interface{ Edges() graph.Edges }); ok {
		edges := eg.Edges()
		for edges.Next() {
			e := edges.Edge()
			add(e.From().ID(), e.To().ID())
		}
	} else {
		type pair struct{ a, b int }
		seen := make(map[pair]struct{})
		for uid, a := range index {
			from := g.From(uid)
			for from.Next() {
				vid := from.Node().ID()
				bIdx := index[vid]
				key := pair{a, bIdx}
				if key.a > key.b {
					key.a, key.b = key.b, key.a
				}
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				add(uid, vid)
			}
		}
	}

	slices.SortFunc(springs, func(x, y Spring) int {
		if x.A != y.A {
			return x.A - y.A
		}
		return x.B - y.B
	})
	return springs
}
