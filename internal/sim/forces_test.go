package sim

import (
	"math"
	"testing"

	"github.com/onnwee/forcemap/internal/geom"
)

func TestRepelForceSymmetry(t *testing.T) {
	a := NewBody(geom.V(0, 0), 1)
	b := NewBody(geom.V(1, 0), 1)

	fa := RepelForce(100, a, b)
	fb := RepelForce(100, b, a)

	// A is pushed along -x with magnitude 100, B along +x.
	if math.Abs(fa.X+100) > 1e-9 || math.Abs(fa.Y) > 1e-9 {
		t.Errorf("force on A = %v, want (-100,0)", fa)
	}
	if math.Abs(fb.X-100) > 1e-9 || math.Abs(fb.Y) > 1e-9 {
		t.Errorf("force on B = %v, want (100,0)", fb)
	}
}

func TestRepelForceScalesWithMassAndDistance(t *testing.T) {
	a := NewBody(geom.V(0, 0), 2)
	b := NewBody(geom.V(2, 0), 3)

	f := RepelForce(10, a, b)
	// |F| = k*m1*m2/r^2 = 10*6/4 = 15, along -x.
	if math.Abs(f.X+15) > 1e-9 {
		t.Errorf("force = %v, want (-15,0)", f)
	}
}

func TestRepelForceCoincidentIsZero(t *testing.T) {
	a := NewBody(geom.V(3, 3), 1)
	b := NewBody(geom.V(3, 3), 1)
	if f := RepelForce(100, a, b); f != geom.Zero {
		t.Errorf("coincident bodies produced force %v", f)
	}
}

func TestRepelForceClamped(t *testing.T) {
	a := NewBody(geom.V(0, 0), 1000)
	b := NewBody(geom.V(1e-6, 0), 1000)
	f := RepelForce(100, a, b)
	if math.Abs(f.X) > forceClamp || math.Abs(f.Y) > forceClamp {
		t.Errorf("force %v exceeds clamp window", f)
	}
	if f.X != -forceClamp {
		t.Errorf("force X = %v, want clamped to %v", f.X, -forceClamp)
	}
}

func TestSpringForceEquilibrium(t *testing.T) {
	a := NewBody(geom.V(0, 0), 1)
	b := NewBody(geom.V(2, 0), 1)
	if f := SpringForce(100, 2, a, b); f.Length() > 1e-12 {
		t.Errorf("spring at neutral length produced force %v", f)
	}
}

func TestSpringForceAntisymmetry(t *testing.T) {
	a := NewBody(geom.V(-1, 2), 1)
	b := NewBody(geom.V(4, -3), 1)

	fab := SpringForce(100, 2, a, b)
	fba := SpringForce(100, 2, b, a)
	if diff := fab.Add(fba); diff.Length() > 1e-9 {
		t.Errorf("spring forces not antisymmetric: %v vs %v", fab, fba)
	}
}

func TestSpringForcePullsWhenStretched(t *testing.T) {
	a := NewBody(geom.V(0, 0), 1)
	b := NewBody(geom.V(10, 0), 1)

	// The tick subtracts the returned force from A: stretched springs
	// must move A toward B.
	f := SpringForce(100, 2, a, b)
	applied := geom.Zero.Sub(f)
	if applied.X <= 0 {
		t.Errorf("stretched spring pushes A away: applied force %v", applied)
	}

	// Compressed springs push apart.
	b.Pos = geom.V(1, 0)
	f = SpringForce(100, 2, a, b)
	applied = geom.Zero.Sub(f)
	if applied.X >= 0 {
		t.Errorf("compressed spring pulls A closer: applied force %v", applied)
	}
}

func TestSpringForceZeroLengthEdge(t *testing.T) {
	a := NewBody(geom.V(1, 1), 1)
	b := NewBody(geom.V(1, 1), 1)
	if f := SpringForce(100, 2, a, b); f != geom.Zero {
		t.Errorf("zero-length edge produced force %v", f)
	}
}

func TestCenterGravityPullsTowardOrigin(t *testing.T) {
	b := NewBody(geom.V(3, -4), 2)
	f := CenterGravity(0.5, b)
	// F = -k*m*p = -(0.5*2)*(3,-4) = (-3,4)
	if math.Abs(f.X+3) > 1e-12 || math.Abs(f.Y-4) > 1e-12 {
		t.Errorf("gravity = %v, want (-3,4)", f)
	}
}
