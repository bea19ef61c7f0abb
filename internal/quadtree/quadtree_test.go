package quadtree

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/onnwee/forcemap/internal/geom"
)

func TestInsertTwoBodySubQuadrantSplit(t *testing.T) {
	tree := New(geom.NewBoundingBox(geom.V(0, 0), 10, 10), 2)
	tree.Insert(geom.V(-1, -1), 5)
	tree.Insert(geom.V(1, 1), 30)

	root := tree.entries[tree.root]
	if root.kind != internalNode {
		t.Fatal("root should be internal after the second insert")
	}
	if root.mass != 35 {
		t.Errorf("root mass = %v, want 35", root.mass)
	}

	// Lower-left body in quadrant 0, upper-right in quadrant 3.
	ll := root.children[0]
	ur := root.children[3]
	if ll == none || ur == none {
		t.Fatalf("expected children in quadrants 0 and 3, got %v", root.children)
	}
	if e := tree.entries[ll]; e.kind != leafNode || e.pos != geom.V(-1, -1) || e.mass != 5 {
		t.Errorf("quadrant 0 leaf = %+v, want pos (-1,-1) mass 5", e)
	}
	if e := tree.entries[ur]; e.kind != leafNode || e.pos != geom.V(1, 1) || e.mass != 30 {
		t.Errorf("quadrant 3 leaf = %+v, want pos (1,1) mass 30", e)
	}
	if root.children[1] != none || root.children[2] != none {
		t.Errorf("quadrants 1 and 2 should be empty, got %v", root.children)
	}
}

func TestInsertCoincidentMerge(t *testing.T) {
	tree := New(geom.NewBoundingBox(geom.V(0, 0), 10, 10), 2)
	tree.Insert(geom.V(1, 1), 30)
	tree.Insert(geom.V(1, 1), 60)

	root := tree.entries[tree.root]
	if root.kind != leafNode {
		t.Fatal("merge should not create an internal node")
	}
	if root.mass != 90 {
		t.Errorf("merged mass = %v, want 90", root.mass)
	}
	if root.pos != geom.V(1, 1) {
		t.Errorf("merged position = %v, want (1,1)", root.pos)
	}
	if tree.DeadLeaves() != 1 {
		t.Errorf("dead leaves = %d, want 1", tree.DeadLeaves())
	}
}

func TestInsertEpsilonMergeDeeperInTree(t *testing.T) {
	tree := New(geom.NewBoundingBox(geom.V(0, 0), 10, 10), 4)
	tree.Insert(geom.V(-2, -2), 1)
	tree.Insert(geom.V(2, 2), 1)
	tree.Insert(geom.V(2+1e-4, 2), 3)

	// The third body merges into the second leaf; total mass is still
	// accounted at the root.
	root := tree.entries[tree.root]
	if root.kind != internalNode || root.mass != 5 {
		t.Fatalf("root mass = %v, want 5", root.mass)
	}
	if tree.DeadLeaves() != 1 {
		t.Errorf("dead leaves = %d, want 1", tree.DeadLeaves())
	}
}

func TestInsertSameQuadrantChainsInternals(t *testing.T) {
	tree := New(geom.NewBoundingBox(geom.V(0, 0), 16, 16), 2)
	// Both in quadrant 3, and again in the same sub-quadrant one level
	// down, forcing at least two chained internals.
	tree.Insert(geom.V(1, 1), 1)
	tree.Insert(geom.V(2, 2), 1)

	root := tree.entries[tree.root]
	if root.kind != internalNode {
		t.Fatal("root should be internal")
	}
	if root.mass != 2 {
		t.Errorf("root mass = %v, want 2", root.mass)
	}
	assertSubtreeInvariants(t, tree, tree.root, tree.box)
}

func TestInsertPanicsOnNonPositiveMass(t *testing.T) {
	for _, mass := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Insert with mass %v should panic", mass)
				}
			}()
			tree := New(geom.NewBoundingBox(geom.V(0, 0), 10, 10), 1)
			tree.Insert(geom.V(1, 1), mass)
		}()
	}
}

// assertSubtreeInvariants checks mass conservation, centroid
// correctness, and leaf containment for the subtree rooted at idx, and
// returns the exact leaf mass and weighted position sums beneath it.
func assertSubtreeInvariants(t *testing.T, tree *Tree, idx int32, box geom.BoundingBox) (mass float64, weighted geom.Vec2) {
	t.Helper()
	e := tree.entries[idx]
	if e.kind == leafNode {
		if !box.Contains(e.pos) {
			t.Errorf("leaf at %v outside its path box %+v", e.pos, box)
		}
		return e.mass, e.pos.Scale(e.mass)
	}

	for q, c := range e.children {
		if c == none {
			continue
		}
		m, w := assertSubtreeInvariants(t, tree, c, box.SubQuadrant(q))
		mass += m
		weighted = weighted.Add(w)
	}

	relTol := 1e-9 * float64(tree.Len())
	if relErr(e.mass, mass) > relTol {
		t.Errorf("internal %d mass = %v, leaves sum to %v", idx, e.mass, mass)
	}
	if relErr(e.pos.X, weighted.X) > relTol || relErr(e.pos.Y, weighted.Y) > relTol {
		t.Errorf("internal %d position sum = %v, leaves sum to %v", idx, e.pos, weighted)
	}
	return mass, weighted
}

func relErr(a, b float64) float64 {
	d := math.Abs(a - b)
	if m := math.Max(math.Abs(a), math.Abs(b)); m > 1 {
		return d / m
	}
	return d
}

func randomTree(t testing.TB, n int, seed uint64) (*Tree, []geom.Vec2) {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, seed))
	box := geom.NewBoundingBox(geom.V(0, 0), 200, 200)
	tree := New(box, n)
	positions := make([]geom.Vec2, n)
	for i := 0; i < n; i++ {
		p := geom.V(rng.Float64()*180-90, rng.Float64()*180-90)
		positions[i] = p
		tree.Insert(p, 1+rng.Float64()*4)
	}
	return tree, positions
}

func TestTreeInvariantsRandom(t *testing.T) {
	tree, _ := randomTree(t, 500, 11)
	assertSubtreeInvariants(t, tree, tree.root, tree.box)
}

func TestStackThetaZeroEmitsEveryOtherLeaf(t *testing.T) {
	const n = 200
	tree, positions := randomTree(t, n, 3)

	var scratch Scratch
	got := tree.Stack(positions[17], 0, &scratch)
	if len(got) != n-1 {
		t.Fatalf("theta=0 emitted %d summaries, want %d", len(got), n-1)
	}

	totalMass := 0.0
	for _, s := range got {
		totalMass += s.Mass
	}
	rootMass := tree.entries[tree.root].mass
	queryMass := 0.0
	// The only missing mass is the query body's own leaf.
	for i, e := range tree.entries {
		if e.kind == leafNode && e.pos == positions[17] {
			queryMass = tree.entries[i].mass
		}
	}
	if relErr(totalMass+queryMass, rootMass) > 1e-9*n {
		t.Errorf("emitted mass %v + self %v != root mass %v", totalMass, queryMass, rootMass)
	}
}

func TestStackLargeThetaEmitsRootOnly(t *testing.T) {
	tree, _ := randomTree(t, 100, 5)

	var scratch Scratch
	// Query far outside the population so s/d is tiny.
	got := tree.Stack(geom.V(1e6, 1e6), 1e9, &scratch)
	if len(got) != 1 {
		t.Fatalf("huge theta emitted %d summaries, want 1", len(got))
	}
	root := tree.entries[tree.root]
	if got[0].Mass != root.mass {
		t.Errorf("summary mass = %v, want root mass %v", got[0].Mass, root.mass)
	}
	wantCenter := root.pos.Scale(1 / root.mass)
	if got[0].Pos.Distance(wantCenter) > 1e-12 {
		t.Errorf("summary position = %v, want root centroid %v", got[0].Pos, wantCenter)
	}
}

func TestStackExcludesQueryBody(t *testing.T) {
	tree := New(geom.NewBoundingBox(geom.V(0, 0), 10, 10), 2)
	tree.Insert(geom.V(-1, -1), 5)
	tree.Insert(geom.V(1, 1), 30)

	var scratch Scratch
	got := tree.Stack(geom.V(1, 1), 0, &scratch)
	if len(got) != 1 {
		t.Fatalf("emitted %d summaries, want 1", len(got))
	}
	if got[0].Pos != geom.V(-1, -1) {
		t.Errorf("emitted %v, want the other body", got[0].Pos)
	}
}

func TestStackEmptyTree(t *testing.T) {
	tree := New(geom.NewBoundingBox(geom.V(0, 0), 10, 10), 0)
	var scratch Scratch
	if got := tree.Stack(geom.V(0, 0), 0.75, &scratch); len(got) != 0 {
		t.Errorf("empty tree emitted %d summaries", len(got))
	}
}

func TestStackApproximatesTotalMass(t *testing.T) {
	// Whatever theta, the emitted summaries must account for all mass
	// except the query body's.
	tree, positions := randomTree(t, 300, 9)
	rootMass := tree.entries[tree.root].mass

	var scratch Scratch
	for _, theta := range []float64{0.25, 0.5, 0.75, 1.0} {
		got := tree.Stack(positions[0], theta, &scratch)
		total := 0.0
		for _, s := range got {
			total += s.Mass
		}
		// Summaries conserve mass exactly; only the query body's own
		// leaf (mass in [1,5]) is missing.
		missing := rootMass - total
		if missing < 1-1e-6 || missing > 5+1e-6 {
			t.Errorf("theta=%v: emitted mass %v, root mass %v", theta, total, rootMass)
		}
	}
}
