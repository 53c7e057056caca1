package geometry

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/katalvlaran/hydroflow/core"
)

// ErrNegativeTolerance is returned by New for tol < 0.
var ErrNegativeTolerance = errors.New("geometry: tolerance must be non-negative")

// DefaultTolerance is the fuzz radius used when none is configured.
var DefaultTolerance = decimal.New(1, -6)

// Kernel bundles the predicates for a fixed tolerance. The zero value is an
// exact kernel (tolerance 0).
type Kernel struct {
	Tolerance decimal.Decimal
}

// New returns a Kernel for tol.
func New(tol decimal.Decimal) (Kernel, error) {
	if tol.IsNegative() {
		return Kernel{}, fmt.Errorf("%w: %s", ErrNegativeTolerance, tol)
	}
	return Kernel{Tolerance: tol}, nil
}

// SmallerThan reports a + tol < b.
func (k Kernel) SmallerThan(a, b decimal.Decimal) bool {
	return a.Add(k.Tolerance).LessThan(b)
}

// GreaterThan reports a - tol > b.
func (k Kernel) GreaterThan(a, b decimal.Decimal) bool {
	return a.Sub(k.Tolerance).GreaterThan(b)
}

// EqualCoord reports |a - b| ≤ tol.
func (k Kernel) EqualCoord(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(k.Tolerance)
}

// Equal reports whether p and q lie within tol of each other.
func (k Kernel) Equal(p, q *core.Vertex) bool {
	dx := p.X.Sub(q.X)
	dy := p.Y.Sub(q.Y)
	// Cheap box rejection before squaring.
	if dx.Abs().GreaterThan(k.Tolerance) || dy.Abs().GreaterThan(k.Tolerance) {
		return false
	}
	return dx.Mul(dx).Add(dy.Mul(dy)).LessThanOrEqual(k.Tolerance.Mul(k.Tolerance))
}

// Compare returns -1 if a < b, 1 if a > b, 0 when they are within tol.
func (k Kernel) Compare(a, b decimal.Decimal) int {
	switch {
	case k.SmallerThan(a, b):
		return -1
	case k.GreaterThan(a, b):
		return 1
	default:
		return 0
	}
}

// ComparePoints orders by x, then y.
func (k Kernel) ComparePoints(p, q *core.Vertex) int {
	if c := k.Compare(p.X, q.X); c != 0 {
		return c
	}
	return k.Compare(p.Y, q.Y)
}

// IsPoint reports whether s collapses to a point.
func (k Kernel) IsPoint(s *core.Segment) bool { return k.Equal(s.A, s.B) }

// IsVertical reports whether both endpoints share x within tol.
func (k Kernel) IsVertical(s *core.Segment) bool { return k.EqualCoord(s.A.X, s.B.X) }

// SmallerX returns the smaller x of the two endpoints.
func (k Kernel) SmallerX(s *core.Segment) decimal.Decimal {
	return decimal.Min(s.A.X, s.B.X)
}

// cross returns ax*by - ay*bx.
func cross(ax, ay, bx, by decimal.Decimal) decimal.Decimal {
	return ax.Mul(by).Sub(ay.Mul(bx))
}

// Intersection returns the crossing point of s1 and s2.
//
// With p = s1.A, r = s1.B - s1.A, q = s2.A, s = s2.B - s2.A the system
// p + t·r = q + u·s is solved by Cramer's rule. Near-parallel pairs
// (|r×s| ≤ tol) report no point; use Overlap for collinear pairs.
func (k Kernel) Intersection(s1, s2 *core.Segment) (core.Vertex, bool) {
	rx, ry := s1.B.X.Sub(s1.A.X), s1.B.Y.Sub(s1.A.Y)
	sx, sy := s2.B.X.Sub(s2.A.X), s2.B.Y.Sub(s2.A.Y)

	den := cross(rx, ry, sx, sy)
	if den.Abs().LessThanOrEqual(k.Tolerance) {
		return core.Vertex{}, false
	}

	qpx, qpy := s2.A.X.Sub(s1.A.X), s2.A.Y.Sub(s1.A.Y)
	t := cross(qpx, qpy, sx, sy).Div(den)
	u := cross(qpx, qpy, rx, ry).Div(den)

	lo := k.Tolerance.Neg()
	hi := decimal.NewFromInt(1).Add(k.Tolerance)
	if t.LessThan(lo) || t.GreaterThan(hi) || u.LessThan(lo) || u.GreaterThan(hi) {
		return core.Vertex{}, false
	}

	return core.Vertex{
		X:     s1.A.X.Add(t.Mul(rx)),
		Y:     s1.A.Y.Add(t.Mul(ry)),
		Index: -1,
	}, true
}

// Overlap returns a point shared by two collinear segments that is not an
// endpoint of both: the later start when it lies strictly inside the other
// segment, otherwise the earlier end of the common stretch. Pairs that are
// not parallel, not collinear, disjoint, or only share an endpoint report no
// point.
func (k Kernel) Overlap(s1, s2 *core.Segment) (core.Vertex, bool) {
	if k.IsPoint(s1) || k.IsPoint(s2) {
		return core.Vertex{}, false
	}
	rx, ry := s1.B.X.Sub(s1.A.X), s1.B.Y.Sub(s1.A.Y)
	sx, sy := s2.B.X.Sub(s2.A.X), s2.B.Y.Sub(s2.A.Y)
	if cross(rx, ry, sx, sy).Abs().GreaterThan(k.Tolerance) {
		return core.Vertex{}, false
	}

	// Distance of s2.A from the line through s1: |qp × r| / |r| ≤ tol.
	qpx, qpy := s2.A.X.Sub(s1.A.X), s2.A.Y.Sub(s1.A.Y)
	c := cross(qpx, qpy, rx, ry)
	r2 := rx.Mul(rx).Add(ry.Mul(ry))
	if c.Mul(c).GreaterThan(k.Tolerance.Mul(k.Tolerance).Mul(r2)) {
		return core.Vertex{}, false
	}

	first, second := s1, s2
	if k.ComparePoints(s2.A, s1.A) < 0 {
		first, second = s2, s1
	}
	// Disjoint, or touching end to start only.
	if k.ComparePoints(second.A, first.B) >= 0 {
		return core.Vertex{}, false
	}
	if !k.Equal(first.A, second.A) {
		return *detached(second.A), true
	}
	end := first.B
	if k.ComparePoints(second.B, first.B) < 0 {
		end = second.B
	}

	return *detached(end), true
}

func detached(v *core.Vertex) *core.Vertex {
	return &core.Vertex{X: v.X, Y: v.Y, Index: -1}
}

// RelativePoint returns the point of s at sweep coordinate x.
//
// Vertical segments and x at A yield A; x at B yields B; otherwise y is
// interpolated along the segment.
func (k Kernel) RelativePoint(x decimal.Decimal, s *core.Segment) core.Vertex {
	if k.IsVertical(s) || k.EqualCoord(x, s.A.X) {
		return *s.A
	}
	if k.EqualCoord(x, s.B.X) {
		return *s.B
	}
	dy := s.B.Y.Sub(s.A.Y)
	dx := s.B.X.Sub(s.A.X)
	y := s.A.Y.Add(x.Sub(s.A.X).Mul(dy).Div(dx))

	return core.Vertex{X: x, Y: y, Index: -1}
}

// CompareAngles compares the slope angles of s1 and s2.
// Returns -1 when s1 turns clockwise of s2, 1 when counter-clockwise,
// 0 when parallel within tol.
func (k Kernel) CompareAngles(s1, s2 *core.Segment) int {
	d1x, d1y := s1.B.X.Sub(s1.A.X), s1.B.Y.Sub(s1.A.Y)
	d2x, d2y := s2.B.X.Sub(s2.A.X), s2.B.Y.Sub(s2.A.Y)

	return k.Compare(d1y.Mul(d2x), d1x.Mul(d2y))
}
