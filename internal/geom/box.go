package geom

// BoundingBox is an axis-aligned rectangle described by its center and
// full extents. Width and height must be positive for quadrant
// operations to be meaningful. The quadtree does not check its root
// box; the simulator pads the root box it builds to a positive side.
type BoundingBox struct {
	Center Vec2
	Width  float64
	Height float64
}

// NewBoundingBox constructs a box from its center and extents.
func NewBoundingBox(center Vec2, width, height float64) BoundingBox {
	return BoundingBox{Center: center, Width: width, Height: height}
}

// Quadrant encoding: bit 0 set iff the point lies right of the center,
// bit 1 set iff it lies above. A point exactly on a dividing axis falls
// into the lower-coordinate quadrant.
//
//	2 | 3
//	--+--
//	0 | 1
func (b BoundingBox) Classify(p Vec2) int {
	q := 0
	if p.X > b.Center.X {
		q |= 1
	}
	if p.Y > b.Center.Y {
		q |= 2
	}
	return q
}

// SubQuadrant returns the child box for quadrant q: half the extents,
// center shifted by a quarter extent along each axis.
func (b BoundingBox) SubQuadrant(q int) BoundingBox {
	cx := b.Center.X - 0.25*b.Width
	if q&1 != 0 {
		cx = b.Center.X + 0.25*b.Width
	}
	cy := b.Center.Y - 0.25*b.Height
	if q&2 != 0 {
		cy = b.Center.Y + 0.25*b.Height
	}
	return BoundingBox{Center: Vec2{cx, cy}, Width: 0.5 * b.Width, Height: 0.5 * b.Height}
}

// Contains reports whether p lies inside the box. All four edges are
// inclusive: Classify sends a point on a dividing axis to the
// lower-coordinate quadrant, where it lies on that child's upper or
// right edge.
func (b BoundingBox) Contains(p Vec2) bool {
	hw, hh := 0.5*b.Width, 0.5*b.Height
	return p.X >= b.Center.X-hw && p.X <= b.Center.X+hw &&
		p.Y >= b.Center.Y-hh && p.Y <= b.Center.Y+hh
}
