package sim

import "github.com/onnwee/forcemap/internal/geom"

// Body is a point mass driven by the simulation. One body corresponds
// to one graph node. While Fixed is set its velocity is held at zero
// and integration skips it, but it still acts as a mass source in the
// spatial index.
type Body struct {
	Pos   geom.Vec2
	Vel   geom.Vec2
	Mass  float64
	Fixed bool
}

// NewBody returns an unfixed body at rest.
func NewBody(pos geom.Vec2, mass float64) Body {
	return Body{Pos: pos, Mass: mass}
}

// Spring connects two bodies by store index and behaves as a symmetric
// Hookean spring with the given neutral length and stiffness. Springs
// are immutable after graph ingestion.
type Spring struct {
	A, B          int
	Stiffness     float64
	NeutralLength float64
}
