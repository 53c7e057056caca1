package sweep_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/hydroflow/core"
	"github.com/katalvlaran/hydroflow/geometry"
	"github.com/katalvlaran/hydroflow/sweep"
)

var tol = decimal.NewFromFloat(0.001)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func feature(t *testing.T, id int, coords ...[]float64) *core.Feature {
	t.Helper()
	f, err := core.NewFeature(id, core.SetDrainage, core.VerticesFromFloats(coords), tol)
	require.NoError(t, err)

	return f
}

func seg(t *testing.T, id int, x1, y1, x2, y2 float64) *core.Segment {
	t.Helper()
	return feature(t, id, []float64{x1, y1}, []float64{x2, y2}).Segments[0]
}

func kernel() geometry.Kernel { return geometry.Kernel{Tolerance: tol} }

// TestScanner_EventOrder checks x first, then Enter < Intersection < Exit,
// then the per-kind keys.
func TestScanner_EventOrder(t *testing.T) {
	s := sweep.NewScanner(kernel())

	s1 := seg(t, 0, 0, 0, 1, 0)  // exits at x=1
	s2 := seg(t, 1, 1, 0, 2, 1)  // enters at x=1, y=0
	s3 := seg(t, 2, 1, -1, 2, 0) // enters at x=1, y=-1
	s4 := seg(t, 3, 0, 2, 2, 0)

	n := s.AddSegments([]*core.Feature{
		{Process: true, Segments: []*core.Segment{s1}},
		{Process: true, Segments: []*core.Segment{s2, s3}},
		{Process: false, Segments: []*core.Segment{s4}},
	})
	assert.Equal(t, 6, n)
	s.Sort()
	require.True(t, s.Add(sweep.NewIntersection(core.Point(1, 0.5), s4, s2)))

	var got []string
	for e := s.Next(); e != nil; e = s.Next() {
		got = append(got, e.Kind.String()+" "+e.Point.String())
	}
	assert.Equal(t, []string{
		"enter (0 0)",
		"enter (1 -1)",
		"enter (1 0)",
		"intersection (1 0.5)",
		"exit (1 0)",
		"exit (2 0)",
		"exit (2 1)",
	}, got)
	assert.Zero(t, s.Len())
}

// TestScanner_AddIsIdempotent checks that an intersection discovered twice,
// in either operand order, is queued once.
func TestScanner_AddIsIdempotent(t *testing.T) {
	s := sweep.NewScanner(kernel())
	a := seg(t, 0, 0, 0, 2, 2)
	b := seg(t, 1, 0, 2, 2, 0)

	assert.True(t, s.Add(sweep.NewIntersection(core.Point(1, 1), a, b)))
	assert.False(t, s.Add(sweep.NewIntersection(core.Point(1, 1), b, a)))
	assert.Equal(t, 1, s.Len())

	peeked := s.Peek()
	require.NotNil(t, peeked)
	assert.Equal(t, 1, s.Len())

	e := s.Next()
	require.NotNil(t, e)
	assert.Same(t, peeked, e)
	assert.Same(t, a, e.A)
	assert.Same(t, b, e.B)
	assert.Len(t, e.Segments(), 2)
	assert.Nil(t, s.Next())
	assert.Nil(t, s.Peek())
}

// TestScanner_ScanVertices groups coincident points of one column.
func TestScanner_ScanVertices(t *testing.T) {
	s := sweep.NewScanner(kernel())
	s1 := seg(t, 0, 0, 0, 1, 0)
	s2 := seg(t, 1, 1, 0, 2, 1)
	s3 := seg(t, 2, 1, 0.0004, 2, -1) // within tolerance of (1,0)
	s4 := seg(t, 3, 1, 3, 2, 3)

	s.AddScanPoint(sweep.NewEnter(s4))
	s.AddScanPoint(sweep.NewExit(s1))
	s.AddScanPoint(sweep.NewEnter(s3))
	s.AddScanPoint(sweep.NewEnter(s2))
	s.AddScanPoint(sweep.NewEnter(s2))
	assert.Equal(t, 2, s.Pending())

	v := s.NextInLine(d(1))
	require.NotNil(t, v)
	assert.Equal(t, []*core.Segment{s1, s2, s3}, v.Segments)

	v = s.NextInLine(d(1))
	require.NotNil(t, v)
	assert.Equal(t, []*core.Segment{s4}, v.Segments)

	assert.Nil(t, s.NextInLine(d(1)))
}

// TestActiveOrder_HeightSort inserts non-crossing segments in sweep order and
// expects the direct height order at an interior coordinate.
func TestActiveOrder_HeightSort(t *testing.T) {
	o := sweep.NewActiveOrder(kernel())
	h1 := seg(t, 0, 0, 0, 4, 0)
	h2 := seg(t, 1, 1, 2, 5, 3)
	h3 := seg(t, 2, 2, -1, 6, -2)
	h4 := seg(t, 3, 0.5, 1, 3, 1)

	assert.Equal(t, 0, o.Insert(d(0), h1))
	assert.Equal(t, 0, o.Insert(d(0.5), h4))
	assert.Equal(t, 0, o.Insert(d(1), h2))
	assert.Equal(t, 3, o.Insert(d(2), h3))

	assert.Equal(t, []*core.Segment{h2, h4, h1, h3}, o.Segments())

	for i, s := range o.Segments() {
		assert.Equal(t, i, o.Locate(d(2.5), s))
	}
	assert.Same(t, h4, o.Above(2))
	assert.Same(t, h3, o.Below(2))
	assert.Nil(t, o.Above(0))
	assert.Nil(t, o.Below(3))
	assert.Nil(t, o.Below(-1))

	o.Delete(9)
	assert.Equal(t, 4, o.Len())
	o.Delete(1)
	assert.Equal(t, []*core.Segment{h2, h1, h3}, o.Segments())
	assert.Equal(t, -1, o.Locate(d(2.5), h4))
}

// TestActiveOrder_SwapKeepsLocate checks that Locate still finds segments
// whose slots no longer agree with the comparator.
func TestActiveOrder_SwapKeepsLocate(t *testing.T) {
	o := sweep.NewActiveOrder(kernel())
	a := seg(t, 0, 0, 0, 2, 2)
	b := seg(t, 1, 0, 2, 2, 0)

	o.Insert(d(0), a)
	o.Insert(d(0), b)
	assert.Equal(t, []*core.Segment{b, a}, o.Segments())

	o.Swap(0, 1)
	o.Swap(0, 7)
	assert.Equal(t, []*core.Segment{a, b}, o.Segments())
	assert.Equal(t, 0, o.Locate(d(0.5), a))
	assert.Equal(t, 1, o.Locate(d(0.5), b))
}

// TestComparePosition_TieBreaks walks the precedence chain at a shared point.
// TestActiveOrder_ReorderThreeWayCrossing reverses three segments crossing at
// one point in a single step and leaves a segment elsewhere in place.
func TestActiveOrder_ReorderThreeWayCrossing(t *testing.T) {
	o := sweep.NewActiveOrder(kernel())
	a := seg(t, 0, 0, 0, 2, 2)
	b := seg(t, 1, 0, 1, 2, 1)
	c := seg(t, 2, 0, 2, 2, 0)
	low := seg(t, 3, 0, -1, 2, -1)
	for _, s := range []*core.Segment{a, b, c, low} {
		o.Insert(d(0.5), s)
	}
	require.Equal(t, []*core.Segment{c, b, a, low}, o.Segments())

	lo, hi := o.Reorder(core.Point(1, 1), 1)
	assert.Equal(t, 0, lo)
	assert.Equal(t, 2, hi)
	assert.Equal(t, []*core.Segment{a, b, c, low}, o.Segments())

	// Already in order: nothing moves.
	o.Reorder(core.Point(1, 1), 0)
	assert.Equal(t, []*core.Segment{a, b, c, low}, o.Segments())

	lo, hi = o.Reorder(core.Point(1, 1), 9)
	assert.Equal(t, -1, lo)
	assert.Equal(t, -1, hi)
}

func TestComparePosition_TieBreaks(t *testing.T) {
	o := sweep.NewActiveOrder(kernel())
	x := d(1)

	s1 := seg(t, 0, 0, 0, 1, 0)  // ends at (1,0)
	s2 := seg(t, 1, 1, 0, 2, 1)  // starts, rising
	s3 := seg(t, 2, 1, 0, 2, -1) // starts, falling
	assert.Equal(t, 1, o.ComparePosition(x, s2, s3), "both start: slope")
	assert.Equal(t, 1, o.ComparePosition(x, s2, s1), "enter/exit: slope after equal y")
	assert.Equal(t, -1, o.ComparePosition(x, s3, s1))

	in1 := seg(t, 3, 0, 1, 1, 0)  // ends at (1,0) from above
	in2 := seg(t, 4, 0, -1, 1, 0) // ends at (1,0) from below
	assert.Equal(t, 1, o.ComparePosition(x, in1, in2), "both end: walk back")

	c1 := seg(t, 5, 0, 0, 2, 2)
	c2 := seg(t, 6, 0, 2, 2, 0)
	assert.Equal(t, -1, o.ComparePosition(x, c1, c2), "crossing: reversed slopes")

	through := seg(t, 7, 0, 0, 2, 0)
	tee := seg(t, 8, 1, 0, 2, 1)
	assert.Equal(t, -1, o.ComparePosition(x, through, tee), "start on interior: slope")

	p, err := core.NewFeature(9, core.SetDrainage, core.VerticesFromFloats([][]float64{{1, 0}}), tol)
	require.NoError(t, err)
	assert.Equal(t, -1, o.ComparePosition(x, s1, p.Segments[0]), "point: identity")

	assert.Equal(t, 0, o.ComparePosition(x, s1, s1))
}

// TestComparePosition_Symmetric checks antisymmetry over every distinct pair.
func TestComparePosition_Symmetric(t *testing.T) {
	o := sweep.NewActiveOrder(kernel())
	segs := []*core.Segment{
		seg(t, 0, 0, 0, 1, 0),
		seg(t, 1, 1, 0, 2, 1),
		seg(t, 2, 1, 0, 2, -1),
		seg(t, 3, 0, 1, 1, 0),
		seg(t, 4, 0, -1, 1, 0),
		seg(t, 5, 0, 0, 2, 2),
		seg(t, 6, 0, 2, 2, 0),
		seg(t, 7, 0, 0, 2, 0),
		seg(t, 8, 1, -3, 1, 3),
		seg(t, 9, 0.5, 0, 3, 0),
	}
	for _, x := range []float64{0, 0.5, 1, 1.5, 2} {
		for i := range segs {
			for j := range segs {
				if i == j {
					continue
				}
				ab := o.ComparePosition(d(x), segs[i], segs[j])
				ba := o.ComparePosition(d(x), segs[j], segs[i])
				assert.NotZero(t, ab)
				assert.Equal(t, ab, -ba, "x=%v pair (%d,%d)", x, i, j)
			}
		}
	}
}
