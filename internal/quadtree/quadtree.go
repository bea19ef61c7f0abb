// Package quadtree implements the Barnes-Hut spatial index used by the
// simulation's repulsion pass. The tree is stored as a flat arena of
// entries addressed by index, rebuilt from scratch every tick and shared
// read-only across worker goroutines.
package quadtree

import (
	"fmt"
	"math"

	"github.com/onnwee/forcemap/internal/geom"
)

// Epsilon is the merge distance: two bodies closer than this collapse
// into a single leaf with summed mass. It also excludes a query point's
// own leaf during traversal.
const Epsilon = 1e-3

// none marks an empty child slot.
const none int32 = -1

type nodeKind uint8

const (
	leafNode nodeKind = iota
	internalNode
)

// entry is one arena slot. For a leaf, pos is the body position and
// mass its mass. For an internal, pos is the mass-weighted position
// sum over all leaves beneath it (NOT the centroid) and mass the total;
// the centroid is derived as pos/mass on read. Keeping the sum makes
// the insertion walk two adds per level.
type entry struct {
	kind     nodeKind
	children [4]int32
	mass     float64
	pos      geom.Vec2
}

// Summary is what traversal hands to force code: a point-mass
// approximation of a leaf or a whole subtree. Arena indices never
// escape the package.
type Summary struct {
	Pos  geom.Vec2
	Mass float64
}

// Scratch holds the reusable frontier and output buffers for Stack.
// Each goroutine traversing a shared Tree owns its own Scratch; the
// Tree itself is never written during traversal.
type Scratch struct {
	cur  []int32
	next []int32
	out  []Summary
}

// Tree is a Barnes-Hut quadtree over point masses.
type Tree struct {
	entries    []entry
	box        geom.BoundingBox
	root       int32
	count      int // bodies inserted
	deadLeaves int // arena slots orphaned by epsilon-merges
}

// New returns an empty tree covering box. The capacity hint sizes the
// arena for roughly that many bodies; the arena grows amortized if the
// hint is exceeded.
func New(box geom.BoundingBox, capacityHint int) *Tree {
	if capacityHint < 0 {
		capacityHint = 0
	}
	return &Tree{
		entries: make([]entry, 0, 2*capacityHint+1),
		box:     box,
		root:    none,
	}
}

// Bounds returns the root bounding box.
func (t *Tree) Bounds() geom.BoundingBox { return t.box }

// Len returns the number of bodies inserted, merged bodies included.
func (t *Tree) Len() int { return t.count }

// ArenaLen returns the number of arena entries, dead leaves included.
func (t *Tree) ArenaLen() int { return len(t.entries) }

// DeadLeaves returns how many arena slots were orphaned by merges.
func (t *Tree) DeadLeaves() int { return t.deadLeaves }

// Insert adds a body to the tree. Mass must be positive and finite;
// anything else is a caller bug and panics. Positions outside the root
// box are accepted but degrade traversal accuracy, so builders size the
// root box to contain every body.
func (t *Tree) Insert(pos geom.Vec2, mass float64) {
	if mass <= 0 || math.IsNaN(mass) || math.IsInf(mass, 0) {
		panic(fmt.Sprintf("quadtree: body mass must be positive and finite, got %v", mass))
	}

	t.entries = append(t.entries, entry{kind: leafNode, children: emptyChildren, mass: mass, pos: pos})
	newIdx := int32(len(t.entries) - 1)
	t.count++

	if t.root == none {
		t.root = newIdx
		return
	}

	// Walk internals toward the new position, accumulating mass and the
	// weighted position sum along the way so the subtree invariant holds
	// without a second pass.
	bb := t.box
	idx := t.root
	parent, slot := none, 0
	for t.entries[idx].kind == internalNode {
		e := &t.entries[idx]
		e.mass += mass
		e.pos = e.pos.Add(pos.Scale(mass))

		q := bb.Classify(pos)
		if e.children[q] == none {
			e.children[q] = newIdx
			return
		}
		parent, slot = idx, q
		idx = e.children[q]
		bb = bb.SubQuadrant(q)
	}

	// idx is an occupied leaf. Merge if the positions are within
	// epsilon; the freshly appended entry goes dead, which is accepted
	// because the arena lives for a single build.
	occ := t.entries[idx]
	if occ.pos.Distance(pos) < Epsilon {
		t.entries[idx].mass += mass
		t.deadLeaves++
		return
	}

	// Otherwise push the occupant deeper: chain internals while both
	// bodies classify into the same sub-quadrant, then place both
	// leaves. The occupant keeps its original arena entry; only child
	// pointers move.
	for {
		qOcc := bb.Classify(occ.pos)
		qNew := bb.Classify(pos)

		t.entries = append(t.entries, entry{
			kind:     internalNode,
			children: emptyChildren,
			mass:     occ.mass + mass,
			pos:      occ.pos.Scale(occ.mass).Add(pos.Scale(mass)),
		})
		internIdx := int32(len(t.entries) - 1)
		t.setChild(parent, slot, internIdx)

		if qOcc != qNew {
			t.entries[internIdx].children[qOcc] = idx
			t.entries[internIdx].children[qNew] = newIdx
			return
		}
		parent, slot = internIdx, qOcc
		bb = bb.SubQuadrant(qOcc)
	}
}

var emptyChildren = [4]int32{none, none, none, none}

func (t *Tree) setChild(parent int32, slot int, child int32) {
	if parent == none {
		t.root = child
		return
	}
	t.entries[parent].children[slot] = child
}

// Stack appends to scratch.out the point-mass summaries approximating
// the whole population as seen from p, using the Barnes-Hut criterion
// with opening parameter theta. Leaves within Epsilon of p are skipped,
// which excludes the querying body itself. The returned slice aliases
// scratch.out and is valid until the next call with the same Scratch.
//
// The criterion uses a depth-uniform side length: s starts at the root
// box's larger extent and halves per level of descent. The simulator
// squares its root box up before building, so the square-box assumption
// this makes holds. Traversal allocates nothing beyond amortized growth
// of the scratch buffers.
func (t *Tree) Stack(p geom.Vec2, theta float64, scratch *Scratch) []Summary {
	scratch.out = scratch.out[:0]
	if t.root == none {
		return scratch.out
	}

	s := math.Max(t.box.Width, t.box.Height)
	scratch.cur = append(scratch.cur[:0], t.root)
	scratch.next = scratch.next[:0]

	for len(scratch.cur) > 0 {
		for _, idx := range scratch.cur {
			e := &t.entries[idx]
			if e.kind == leafNode {
				if e.pos.Distance(p) > Epsilon {
					scratch.out = append(scratch.out, Summary{Pos: e.pos, Mass: e.mass})
				}
				continue
			}
			center := e.pos.Scale(1 / e.mass)
			d := center.Distance(p)
			if s/d < theta {
				scratch.out = append(scratch.out, Summary{Pos: center, Mass: e.mass})
				continue
			}
			for _, c := range e.children {
				if c != none {
					scratch.next = append(scratch.next, c)
				}
			}
		}
		scratch.cur, scratch.next = scratch.next, scratch.cur[:0]
		s *= 0.5
	}
	return scratch.out
}
