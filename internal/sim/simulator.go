// Package sim implements the force-directed layout simulation: the
// body/spring store, the force kernel, and the tick orchestration that
// drives them. One tick rebuilds the Barnes-Hut tree, fans repulsion
// and gravity out over a bounded worker pool, applies spring forces
// serially, then integrates under damping and the freeze rule.
package sim

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/onnwee/forcemap/internal/geom"
	"github.com/onnwee/forcemap/internal/metrics"
	"github.com/onnwee/forcemap/internal/quadtree"
)

// params carries the immutable tuning knobs a Simulator is built with.
type params struct {
	repel   bool
	spring  bool
	gravity bool

	springStiffness     float64
	springNeutralLength float64
	gravityForce        float64
	repelForceConst     float64
	damping             float64
	deltaTime           float64
	theta               float64
	freezeThreshold     float64
	maxThreads          int
}

// Simulator owns a BodyStore and advances it one tick at a time.
// Mutations and ticks linearize on the step lock; readers that skip it
// (snapshots, closest-node queries) may see a torn half-tick.
type Simulator struct {
	store *BodyStore
	p     params

	stepMu  sync.Mutex
	enabled atomic.Bool
	ticks   atomic.Int64
	frozen  atomic.Int64
}

func newSimulator(store *BodyStore, p params) *Simulator {
	s := &Simulator{store: store, p: p}
	s.enabled.Store(true)
	metrics.SimBodies.Set(float64(store.Len()))
	store.ReadView(func(_ []Body, springs []Spring) {
		metrics.SimSprings.Set(float64(len(springs)))
	})
	return s
}

// Store exposes the underlying BodyStore for read-only consumers.
func (s *Simulator) Store() *BodyStore { return s.store }

// Enable turns ticking on or off. A tick already in flight completes;
// the flag is observed before the next one begins.
func (s *Simulator) Enable(v bool) { s.enabled.Store(v) }

// Enabled reports whether ticks currently run.
func (s *Simulator) Enabled() bool { return s.enabled.Load() }

// Ticks returns the number of completed ticks.
func (s *Simulator) Ticks() int64 { return s.ticks.Load() }

// FrozenCount returns how many bodies the freeze rule has pinned, as of
// the last completed tick.
func (s *Simulator) FrozenCount() int64 { return s.frozen.Load() }

// Snapshot returns a consistent copy of body and spring state.
func (s *Simulator) Snapshot() Snapshot { return s.store.Snapshot() }

// InsertBody adds a body at pos under the step lock and returns its
// index.
func (s *Simulator) InsertBody(pos geom.Vec2) int {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()
	i := s.store.InsertBody(pos)
	metrics.SimBodies.Set(float64(s.store.Len()))
	return i
}

// SetBodyPosition relocates a body under the step lock. It reports
// false for an out-of-range index.
func (s *Simulator) SetBodyPosition(i int, pos geom.Vec2) bool {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()
	return s.store.SetBodyPosition(i, pos)
}

// ClosestIndex returns the body nearest p, or false when empty.
func (s *Simulator) ClosestIndex(p geom.Vec2) (int, bool) {
	return s.store.ClosestIndex(p)
}

// MaxMass returns the largest body mass.
func (s *Simulator) MaxMass() float64 { return s.store.MaxMass() }

// AveragePosition returns the mean body position.
func (s *Simulator) AveragePosition() geom.Vec2 { return s.store.AveragePosition() }

// Step advances the simulation by one tick. While the simulator is
// disabled it is a no-op. Step never returns an error: invariant
// violations panic, and degenerate numerics are absorbed by the force
// kernel's clamping and safe normalization.
func (s *Simulator) Step() {
	if !s.enabled.Load() {
		return
	}
	s.stepMu.Lock()
	defer s.stepMu.Unlock()

	start := time.Now()
	n := s.store.Len()
	if n == 0 {
		return
	}
	s.store.beginTick(n)

	if s.p.repel || s.p.gravity {
		tree := s.buildTree()
		s.repelGravityPass(tree, n)
	}
	if s.p.spring {
		s.springPass()
	}
	s.applyForces()
	s.integrate()

	s.ticks.Add(1)
	metrics.SimTicksTotal.Inc()
	metrics.SimTickDuration.Observe(time.Since(start).Seconds())
}

// buildTree constructs the per-tick quadtree over every body, fixed
// ones included: a pinned body still repels its neighbors. The root
// box is the padded, squared-up bounding box of all positions so the
// traversal's depth-halved size criterion stays exact.
func (s *Simulator) buildTree() *quadtree.Tree {
	start := time.Now()
	var tree *quadtree.Tree
	s.store.ReadView(func(bodies []Body, _ []Spring) {
		minP := geom.V(math.Inf(1), math.Inf(1))
		maxP := geom.V(math.Inf(-1), math.Inf(-1))
		for i := range bodies {
			p := bodies[i].Pos
			minP.X = math.Min(minP.X, p.X)
			minP.Y = math.Min(minP.Y, p.Y)
			maxP.X = math.Max(maxP.X, p.X)
			maxP.Y = math.Max(maxP.Y, p.Y)
		}
		side := math.Max(maxP.X-minP.X, maxP.Y-minP.Y)
		side += math.Max(side*0.1, 1e-6)
		center := geom.V((minP.X+maxP.X)/2, (minP.Y+maxP.Y)/2)
		tree = quadtree.New(geom.NewBoundingBox(center, side, side), len(bodies))
		for i := range bodies {
			tree.Insert(bodies[i].Pos, bodies[i].Mass)
		}
	})
	metrics.SimTreeBuildDuration.Observe(time.Since(start).Seconds())
	metrics.SimTreeNodes.Set(float64(tree.ArenaLen()))
	metrics.SimTreeDeadLeaves.Set(float64(tree.DeadLeaves()))
	return tree
}

// repelGravityPass fans the repulsion and gravity evaluation out over
// min(n, maxThreads) workers, each owning a contiguous index slice and
// a private force accumulator merged into the shared buffer when the
// worker finishes. The tree is shared read-only.
func (s *Simulator) repelGravityPass(tree *quadtree.Tree, n int) {
	workers := s.p.maxThreads
	if n < workers {
		workers = n
	}
	perWorker := n / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * perWorker
		end := start + perWorker
		if w == workers-1 {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			private := make([]geom.Vec2, n)
			var scratch quadtree.Scratch
			s.store.ReadView(func(bodies []Body, _ []Spring) {
				for i := start; i < end; i++ {
					rb := bodies[i]
					if rb.Fixed {
						continue
					}
					if s.p.repel {
						for _, sum := range tree.Stack(rb.Pos, s.p.theta, &scratch) {
							approx := Body{Pos: sum.Pos, Mass: sum.Mass}
							private[i] = private[i].Add(RepelForce(s.p.repelForceConst, rb, approx))
						}
					}
					if s.p.gravity {
						private[i] = private[i].Add(CenterGravity(s.p.gravityForce, rb))
					}
				}
			})
			s.store.addForces(private)
		}(start, end)
	}
	wg.Wait()
}

// springPass accumulates spring forces serially: edges touch arbitrary
// body pairs, so slicing them across workers would race on the
// accumulator slots.
func (s *Simulator) springPass() {
	s.store.ReadView(func(bodies []Body, springs []Spring) {
		s.store.withForces(func(forces []geom.Vec2) {
			for _, sp := range springs {
				f := SpringForce(sp.Stiffness, sp.NeutralLength, bodies[sp.A], bodies[sp.B])
				forces[sp.A] = forces[sp.A].Sub(f)
				forces[sp.B] = forces[sp.B].Add(f)
			}
		})
	})
}

// applyForces folds the accumulated forces into velocities.
func (s *Simulator) applyForces() {
	s.store.WriteStep(func(bodies []Body) {
		s.store.withForces(func(forces []geom.Vec2) {
			for i := range bodies {
				bodies[i].Vel = bodies[i].Vel.Add(forces[i].Scale(s.p.deltaTime / bodies[i].Mass))
			}
		})
	})
}

// integrate advances positions under damping and applies the freeze
// rule. Fixed bodies have their velocity clamped to zero and are left
// where they are.
func (s *Simulator) integrate() {
	frozen := int64(0)
	s.store.WriteStep(func(bodies []Body) {
		for i := range bodies {
			rb := &bodies[i]
			if rb.Fixed {
				rb.Vel = geom.Zero
				frozen++
				continue
			}
			rb.Vel = rb.Vel.Scale(s.p.damping)
			rb.Pos = rb.Pos.Add(rb.Vel.Scale(s.p.deltaTime))
			if s.p.freezeThreshold >= 0 && rb.Vel.Length() < s.p.freezeThreshold {
				rb.Fixed = true
				frozen++
			}
		}
	})
	s.frozen.Store(frozen)
	metrics.SimFrozenBodies.Set(float64(frozen))
}
