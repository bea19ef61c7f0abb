package geom

import (
	"math"
	"testing"
)

func TestNormalizedZeroLength(t *testing.T) {
	if got := Zero.Normalized(); got != Zero {
		t.Errorf("Normalized of zero vector = %v, want zero", got)
	}
}

func TestNormalizedUnitLength(t *testing.T) {
	v := V(3, 4).Normalized()
	if math.Abs(v.Length()-1) > 1e-12 {
		t.Errorf("normalized length = %v, want 1", v.Length())
	}
	if math.Abs(v.X-0.6) > 1e-12 || math.Abs(v.Y-0.8) > 1e-12 {
		t.Errorf("normalized = %v, want (0.6,0.8)", v)
	}
}

func TestClampComponentWise(t *testing.T) {
	v := V(2e6, -5).Clamp(1e5)
	if v.X != 1e5 {
		t.Errorf("X = %v, want clamped to 1e5", v.X)
	}
	if v.Y != -5 {
		t.Errorf("Y = %v, want untouched", v.Y)
	}
	v = V(0, -2e6).Clamp(1e5)
	if v.Y != -1e5 {
		t.Errorf("Y = %v, want clamped to -1e5", v.Y)
	}
}

func TestIsFinite(t *testing.T) {
	if !V(1, 2).IsFinite() {
		t.Error("finite vector reported non-finite")
	}
	if V(math.NaN(), 0).IsFinite() || V(0, math.Inf(1)).IsFinite() {
		t.Error("non-finite vector reported finite")
	}
}
