package basin

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/hydroflow/core"
	"github.com/katalvlaran/hydroflow/geometry"
	"github.com/katalvlaran/hydroflow/relation"
)

// featurePair is two drainage feature ids, smaller first.
type featurePair [2]int

// reaches builds one single-segment drainage feature per {x1, y1, x2, y2}.
func reaches(t *testing.T, tol decimal.Decimal, coords ...[4]float64) *core.FeatureSet {
	t.Helper()
	fs := core.NewFeatureSet(core.SetDrainage)
	for _, c := range coords {
		_, err := fs.Add(core.VerticesFromFloats([][]float64{{c[0], c[1]}, {c[2], c[3]}}), tol)
		require.NoError(t, err)
	}
	return fs
}

func sweepRun(t *testing.T, fs *core.FeatureSet, tol decimal.Decimal) *run {
	t.Helper()
	k, err := geometry.New(tol)
	require.NoError(t, err)
	o := DefaultOptions()
	o.Tolerance = tol

	r := newRun(fs, core.NewFeatureSet(core.SetBoundary), o, k)
	r.buildEvents()

	return r
}

// related returns every related feature pair with the kind recorded for it.
func related(r *run) map[featurePair]relation.Kind {
	out := make(map[featurePair]relation.Kind)
	for _, it := range append(r.store.Relations(), r.store.Anomalies()...) {
		out[featurePair{it.Source.FeatureID, it.Destination.FeatureID}] = it.Kind
	}
	return out
}

// allPairs relates features by testing every segment pair directly.
func allPairs(k geometry.Kernel, fs *core.FeatureSet) map[featurePair]bool {
	out := make(map[featurePair]bool)
	for i, fi := range fs.Features {
		for _, fj := range fs.Features[i+1:] {
			for _, a := range fi.Segments {
				for _, b := range fj.Segments {
					if meets(k, a, b) {
						out[featurePair{fi.ID, fj.ID}] = true
					}
				}
			}
		}
	}
	return out
}

func meets(k geometry.Kernel, a, b *core.Segment) bool {
	if _, ok := k.Intersection(a, b); ok {
		return true
	}
	if _, ok := k.Overlap(a, b); ok {
		return true
	}
	return k.Equal(a.A, b.A) || k.Equal(a.A, b.B) || k.Equal(a.B, b.A) || k.Equal(a.B, b.B)
}

func keys(m map[featurePair]relation.Kind) map[featurePair]bool {
	out := make(map[featurePair]bool, len(m))
	for p := range m {
		out[p] = true
	}
	return out
}

// gridReaches draws n segments with integer endpoints in [0, size]. Shared
// endpoints, vertical, horizontal and collinear segments are all common.
func gridReaches(rng *rand.Rand, n, size int) [][4]float64 {
	out := make([][4]float64, 0, n)
	for len(out) < n {
		c := [4]float64{
			float64(rng.Intn(size + 1)), float64(rng.Intn(size + 1)),
			float64(rng.Intn(size + 1)), float64(rng.Intn(size + 1)),
		}
		if c[0] == c[2] && c[1] == c[3] {
			continue
		}
		out = append(out, c)
	}
	return out
}

// scatteredReaches draws n segments with millimetre coordinates in [0, 10].
func scatteredReaches(rng *rand.Rand, n int) [][4]float64 {
	mm := func() float64 { return float64(rng.Intn(10001)) / 1000 }
	out := make([][4]float64, 0, n)
	for len(out) < n {
		c := [4]float64{mm(), mm(), mm(), mm()}
		if c[0] == c[2] && c[1] == c[3] {
			continue
		}
		out = append(out, c)
	}
	return out
}

// sweepChecked runs the sweep one event at a time. Whenever a column is
// complete, the active order must match a direct height sort midway to the
// next column.
func sweepChecked(t *testing.T, r *run, label string) {
	t.Helper()
	two := decimal.NewFromInt(2)
	for r.step() {
		next := r.scanner.Peek()
		if next == nil || !r.k.GreaterThan(next.Point.X, r.column) {
			continue
		}
		mid := r.column.Add(next.Point.X).Div(two)
		segs := r.active.Segments()
		for i := 1; i < len(segs); i++ {
			up := r.k.RelativePoint(mid, segs[i-1])
			down := r.k.RelativePoint(mid, segs[i])
			if !assert.False(t, r.k.SmallerThan(up.Y, down.Y),
				"%s: at x=%s %s (y=%s) is listed above %s (y=%s)",
				label, mid, segs[i-1], up.Y, segs[i], down.Y) {
				return
			}
		}
	}
	r.closeColumn()
	assert.Zero(t, r.active.Len(), "%s: segments left after the last event", label)
}

func TestSweep_MatchesAllPairsOnGrid(t *testing.T) {
	tol := decimal.New(1, -9)
	k := geometry.Kernel{Tolerance: tol}
	rng := rand.New(rand.NewSource(6))

	for seed := 0; seed < 300; seed++ {
		label := fmt.Sprintf("grid input %d", seed)
		fs := reaches(t, tol, gridReaches(rng, 12, 4)...)
		r := sweepRun(t, fs, tol)
		sweepChecked(t, r, label)

		if !assert.Equal(t, allPairs(k, fs), keys(related(r)), label) {
			return
		}
	}
}

func TestSweep_MatchesAllPairsScattered(t *testing.T) {
	tol := decimal.New(1, -9)
	k := geometry.Kernel{Tolerance: tol}
	rng := rand.New(rand.NewSource(21))

	for seed := 0; seed < 100; seed++ {
		label := fmt.Sprintf("scattered input %d", seed)
		fs := reaches(t, tol, scatteredReaches(rng, 25)...)
		r := sweepRun(t, fs, tol)
		sweepChecked(t, r, label)

		if !assert.Equal(t, allPairs(k, fs), keys(related(r)), label) {
			return
		}
	}
}

// TestSweep_CrossingBesideVerticalReach has a vertical reach between two
// reaches that cross further right; the crossing must still be found and the
// order must stay sorted.
func TestSweep_CrossingBesideVerticalReach(t *testing.T) {
	tol := decimal.New(1, -9)
	fs := reaches(t, tol,
		[4]float64{3, 2, 0, 3},
		[4]float64{1, 1, 4, 2},
		[4]float64{1, 4, 1, 0},
		[4]float64{3, 2, 2, 0},
	)
	r := sweepRun(t, fs, tol)
	sweepChecked(t, r, "vertical reach")

	got := related(r)
	assert.Equal(t, relation.Cross, got[featurePair{1, 3}])
	assert.Equal(t, allPairs(geometry.Kernel{Tolerance: tol}, fs), keys(got))
}

// TestSweep_ReachEndingOnVerticalReach ends a reach on the interior of a
// vertical reach while a third reach lies between them.
func TestSweep_ReachEndingOnVerticalReach(t *testing.T) {
	tol := decimal.New(1, -9)
	fs := reaches(t, tol,
		[4]float64{3, 3, 3, 1},
		[4]float64{2, 3, 3, 1},
		[4]float64{0, 2, 3, 2},
	)
	r := sweepRun(t, fs, tol)
	r.sweep()

	got := related(r)
	assert.Equal(t, relation.Touch, got[featurePair{0, 2}])
	assert.Equal(t, relation.Abut, got[featurePair{0, 1}])
	assert.Equal(t, relation.Cross, got[featurePair{1, 2}])
}

// TestSweep_NearVerticalCrossingInColumn crosses a near-vertical reach just
// right of, and below, an earlier point of the same tolerance column.
func TestSweep_NearVerticalCrossingInColumn(t *testing.T) {
	tol := decimal.NewFromFloat(0.001)
	fs := reaches(t, tol,
		[4]float64{0.223, 6.616, 4.588, 3.890},
		[4]float64{1.450, 8.488, 1.461, 1.800},
		[4]float64{4.660, 1.614, 1.207, 6.371},
	)
	r := sweepRun(t, fs, tol)
	r.sweep()

	got := related(r)
	assert.Equal(t, relation.Cross, got[featurePair{0, 1}])
	assert.Equal(t, relation.Cross, got[featurePair{1, 2}])
}
