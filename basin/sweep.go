package basin

import (
	"github.com/shopspring/decimal"

	"github.com/katalvlaran/hydroflow"
	"github.com/katalvlaran/hydroflow/core"
	"github.com/katalvlaran/hydroflow/relation"
	"github.com/katalvlaran/hydroflow/sweep"
)

// sweep pops every event, keeps the active order current and relates the
// segments of each finished column.
func (r *run) sweep() {
	for r.step() {
	}
	r.closeColumn()

	hydroflow.Logger().Debug("basin: sweep done",
		"events", r.report.Events,
		"relations", len(r.store.Relations()),
		"anomalies", len(r.store.Anomalies()),
		"mouths", len(r.store.Mouths()))
}

// step handles the next event. It reports false once the queue is empty.
func (r *run) step() bool {
	e := r.scanner.Next()
	if e == nil {
		return false
	}
	r.report.Events++

	// 1. Close the previous column once the sweep line moves past it
	if !r.started || r.k.GreaterThan(e.Point.X, r.column) {
		r.closeColumn()
		r.column = e.Point.X
		r.started = true
	}

	// 2. Remember the point for relation testing
	r.scanner.AddScanPoint(e)

	// 3. Update the active order
	switch e.Kind {
	case sweep.Enter:
		r.enter(e)
	case sweep.Exit:
		r.exit(e)
	case sweep.Intersection:
		r.intersect(e)
	}

	return true
}

// closeColumn relates the scan vertices of the current column and forgets
// its vertical segments.
func (r *run) closeColumn() {
	if !r.started {
		return
	}
	r.processScanPoints(r.column)
	r.verticals = r.verticals[:0]
}

// enter tests the new segment against everything it can meet, then places it.
//
// A segment can only meet segments that are live when the later of the two
// enters, so testing at Enter finds every meeting point whatever the order of
// the live segments around it.
func (r *run) enter(e *sweep.Event) {
	s := e.A
	for i := 0; i < r.active.Len(); i++ {
		r.meet(r.active.At(i), s)
	}
	for _, v := range r.verticals {
		r.meet(v, s)
	}

	// Vertical segments span a range of the column, not a height.
	if r.k.IsVertical(s) {
		r.verticals = append(r.verticals, s)
		return
	}
	i := r.active.Insert(e.Point.X, s)
	r.active.Reorder(e.Point, i)
}

func (r *run) exit(e *sweep.Event) {
	if r.k.IsVertical(e.A) {
		return
	}
	if i := r.active.Locate(e.Point.X, e.A); i >= 0 {
		r.active.Delete(i)
	}
}

// intersect puts every live segment through the point into its order right
// of it.
func (r *run) intersect(e *sweep.Event) {
	for _, s := range e.Segments() {
		if r.k.IsVertical(s) {
			continue
		}
		if i := r.active.Locate(e.Point.X, s); i >= 0 {
			r.active.Reorder(e.Point, i)
			return
		}
	}
}

// meet queues the point shared by s1 and s2 as an Intersection event. Pairs
// the relation store would drop are skipped.
func (r *run) meet(s1, s2 *core.Segment) {
	if s1.Set == s2.Set && (s1.Set == core.SetBoundary || s1.FeatureID == s2.FeatureID) {
		return
	}
	lo1, hi1 := yRange(s1)
	lo2, hi2 := yRange(s2)
	if r.k.SmallerThan(hi1, lo2) || r.k.SmallerThan(hi2, lo1) {
		return
	}

	at, ok := r.k.Intersection(s1, s2)
	if !ok {
		if at, ok = r.k.Overlap(s1, s2); !ok {
			return
		}
	}
	r.scanner.Add(sweep.NewIntersection(at, s1, s2))
}

func yRange(s *core.Segment) (decimal.Decimal, decimal.Decimal) {
	if s.A.Y.LessThan(s.B.Y) {
		return s.A.Y, s.B.Y
	}
	return s.B.Y, s.A.Y
}

// processScanPoints relates every pair of segments meeting at each point of
// the column at x.
//
// A segment "ends" at the point when the point is one of its endpoints and
// either a chain extremity or a boundary vertex. Both end → Abut; one →
// Touch; none → Cross.
func (r *run) processScanPoints(x decimal.Decimal) {
	for v := r.scanner.NextInLine(x); v != nil; v = r.scanner.NextInLine(x) {
		segs := v.Segments
		for i := 0; i < len(segs); i++ {
			ti := r.endsAt(&v.Point, segs[i])
			for j := i + 1; j < len(segs); j++ {
				tj := r.endsAt(&v.Point, segs[j])
				kind := relation.Cross
				switch {
				case ti && tj:
					kind = relation.Abut
				case ti || tj:
					kind = relation.Touch
				}
				r.store.AddRelation(segs[i], segs[j], kind, v.Point)
			}
		}
	}
}

func (r *run) endsAt(p *core.Vertex, s *core.Segment) bool {
	boundary := s.Set == core.SetBoundary
	return (r.k.Equal(p, s.A) && (s.A.IsExtremity() || boundary)) ||
		(r.k.Equal(p, s.B) && (s.B.IsExtremity() || boundary))
}
