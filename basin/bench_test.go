package basin_test

import (
	"testing"

	"github.com/katalvlaran/hydroflow/basin"
	"github.com/katalvlaran/hydroflow/core"
)

// comb builds a main stem of n reaches along y=0 with one tributary joining
// at every interior junction, inside a box open at (0,0).
func comb(b *testing.B, n int) (*core.FeatureSet, *core.FeatureSet) {
	b.Helper()
	drainage := core.NewFeatureSet(core.SetDrainage)
	for i := 0; i < n; i++ {
		x := float64(i)
		if _, err := drainage.Add(core.VerticesFromFloats([][]float64{{x, 0}, {x + 1, 0}}), tol); err != nil {
			b.Fatal(err)
		}
		if i == 0 {
			continue
		}
		if _, err := drainage.Add(core.VerticesFromFloats([][]float64{{x, 0}, {x + 0.5, 1}}), tol); err != nil {
			b.Fatal(err)
		}
	}

	w := float64(n + 1)
	boundary := core.NewFeatureSet(core.SetBoundary)
	if _, err := boundary.Add(core.VerticesFromFloats([][]float64{
		{0, 0}, {0, 2}, {w, 2}, {w, -2}, {0, -2}, {0, 0},
	}), tol); err != nil {
		b.Fatal(err)
	}

	return drainage, boundary
}

// BenchmarkClassify_Comb500 measures a full run over roughly a thousand reaches.
func BenchmarkClassify_Comb500(b *testing.B) {
	drainage, boundary := comb(b, 500)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		rep, err := basin.Classify(drainage, boundary, basin.WithTolerance(tol))
		if err != nil || rep.Code != basin.Success {
			b.Fatalf("code %s: %v", rep.Code, err)
		}
	}
}
