package quadtree

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/onnwee/forcemap/internal/geom"
)

func benchPositions(n int) []geom.Vec2 {
	rng := rand.New(rand.NewPCG(1, 1))
	positions := make([]geom.Vec2, n)
	for i := range positions {
		positions[i] = geom.V(rng.Float64()*1000-500, rng.Float64()*1000-500)
	}
	return positions
}

func BenchmarkTreeBuild(b *testing.B) {
	for _, n := range []int{1000, 10000, 50000} {
		positions := benchPositions(n)
		box := geom.NewBoundingBox(geom.V(0, 0), 1100, 1100)
		b.Run(fmt.Sprintf("N%d", n), func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				tree := New(box, n)
				for _, p := range positions {
					tree.Insert(p, 1.0)
				}
			}
		})
	}
}

func BenchmarkStack(b *testing.B) {
	for _, n := range []int{1000, 10000, 50000} {
		positions := benchPositions(n)
		box := geom.NewBoundingBox(geom.V(0, 0), 1100, 1100)
		tree := New(box, n)
		for _, p := range positions {
			tree.Insert(p, 1.0)
		}
		b.Run(fmt.Sprintf("N%d", n), func(b *testing.B) {
			var scratch Scratch
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				tree.Stack(positions[i%n], 0.75, &scratch)
			}
		})
	}
}
