package sim

import (
	"fmt"
	"sync"

	"github.com/onnwee/forcemap/internal/geom"
)

// insertedBodyMass is the mass assigned to bodies added through the
// mutation API after graph ingestion.
const insertedBodyMass = 5.0

// BodyStore is the single source of truth for simulation state: flat
// slices of bodies and springs plus the per-tick force accumulator.
// A readers-writer lock covers the body and spring slices; a separate
// mutex covers the force buffer. Renderers that read without the step
// lock may observe a torn half-tick, which is accepted for frame-rate
// reasons.
type BodyStore struct {
	mu      sync.RWMutex
	bodies  []Body
	springs []Spring

	forceMu sync.Mutex
	forces  []geom.Vec2
}

// NewBodyStore validates the spring endpoints and returns a store.
// Out-of-range spring indices are a bug in graph ingestion and panic.
func NewBodyStore(bodies []Body, springs []Spring) *BodyStore {
	for _, sp := range springs {
		if sp.A < 0 || sp.A >= len(bodies) || sp.B < 0 || sp.B >= len(bodies) {
			panic(fmt.Sprintf("sim: spring endpoints (%d,%d) out of range for %d bodies", sp.A, sp.B, len(bodies)))
		}
	}
	return &BodyStore{bodies: bodies, springs: springs}
}

// Len returns the current body count.
func (s *BodyStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bodies)
}

// ReadView runs fn with shared-read access to the body and spring
// slices. fn must not retain or mutate them.
func (s *BodyStore) ReadView(fn func(bodies []Body, springs []Spring)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.bodies, s.springs)
}

// WriteStep runs fn with exclusive access to the body slice. The
// simulator's force-application and integrate phases use it; the
// mutation methods take the same lock directly.
func (s *BodyStore) WriteStep(fn func(bodies []Body)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.bodies)
}

// InsertBody appends a body with the standard inserted mass and
// returns its index.
func (s *BodyStore) InsertBody(pos geom.Vec2) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies = append(s.bodies, NewBody(pos, insertedBodyMass))
	return len(s.bodies) - 1
}

// SetBodyPosition relocates a body. It reports false when the index is
// out of range.
func (s *BodyStore) SetBodyPosition(i int, pos geom.Vec2) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.bodies) {
		return false
	}
	s.bodies[i].Pos = pos
	return true
}

// MaxMass returns the largest body mass, or zero for an empty store.
func (s *BodyStore) MaxMass() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	max := 0.0
	for i := range s.bodies {
		if s.bodies[i].Mass > max {
			max = s.bodies[i].Mass
		}
	}
	return max
}

// AveragePosition returns the mean body position, or the zero vector
// for an empty store.
func (s *BodyStore) AveragePosition() geom.Vec2 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.bodies) == 0 {
		return geom.Zero
	}
	var avg geom.Vec2
	for i := range s.bodies {
		avg = avg.Add(s.bodies[i].Pos)
	}
	return avg.Scale(1 / float64(len(s.bodies)))
}

// ClosestIndex returns the index of the body nearest p, or false when
// the store is empty.
func (s *BodyStore) ClosestIndex(p geom.Vec2) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	best, found := 0, false
	bestDist := 0.0
	for i := range s.bodies {
		d := s.bodies[i].Pos.Distance(p)
		if !found || d < bestDist {
			best, bestDist, found = i, d, true
		}
	}
	return best, found
}

// Snapshot is a consistent copy of body state handed to renderers and
// the HTTP layer. Springs are immutable after ingestion, so the slice
// is shared rather than copied.
type Snapshot struct {
	Bodies  []Body
	Springs []Spring
}

// Snapshot copies the body slice under the read lock.
func (s *BodyStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bodies := make([]Body, len(s.bodies))
	copy(bodies, s.bodies)
	return Snapshot{Bodies: bodies, Springs: s.springs}
}

// beginTick sizes the force accumulator to n and zeroes it.
func (s *BodyStore) beginTick(n int) {
	s.forceMu.Lock()
	defer s.forceMu.Unlock()
	if cap(s.forces) < n {
		s.forces = make([]geom.Vec2, n)
		return
	}
	s.forces = s.forces[:n]
	for i := range s.forces {
		s.forces[i] = geom.Zero
	}
}

// addForces merges a worker's private accumulator into the shared one.
func (s *BodyStore) addForces(private []geom.Vec2) {
	s.forceMu.Lock()
	defer s.forceMu.Unlock()
	for i, f := range private {
		s.forces[i] = s.forces[i].Add(f)
	}
}

// withForces runs fn with the force buffer locked.
func (s *BodyStore) withForces(fn func(forces []geom.Vec2)) {
	s.forceMu.Lock()
	defer s.forceMu.Unlock()
	fn(s.forces)
}
