package sweep

import (
	"sort"

	"github.com/google/btree"
	"github.com/shopspring/decimal"

	"github.com/katalvlaran/hydroflow/core"
	"github.com/katalvlaran/hydroflow/geometry"
)

// queueDegree is the btree branching factor of the event queue.
const queueDegree = 32

// Scanner owns the event queue and the scan vertices of the current column.
type Scanner struct {
	k      geometry.Kernel
	staged []*Event
	queue  *btree.BTreeG[*Event]
	column []*ScanVertex
}

// NewScanner returns an empty scanner comparing with k.
func NewScanner(k geometry.Kernel) *Scanner {
	s := &Scanner{k: k}
	s.queue = btree.NewG(queueDegree, func(a, b *Event) bool {
		return s.CompareEvents(a, b) < 0
	})

	return s
}

// AddSegments stages an Enter and an Exit event for every segment of every
// feature with Process set. It returns the number of staged events.
func (s *Scanner) AddSegments(features []*core.Feature) int {
	n := 0
	for _, f := range features {
		if f == nil || !f.Process {
			continue
		}
		for _, seg := range f.Segments {
			s.staged = append(s.staged, NewEnter(seg), NewExit(seg))
			n += 2
		}
	}

	return n
}

// Sort moves the staged events into the ordered queue.
func (s *Scanner) Sort() {
	for _, e := range s.staged {
		s.queue.ReplaceOrInsert(e)
	}
	s.staged = nil
}

// Add queues a discovered event. It reports false when an equal event is
// already queued.
func (s *Scanner) Add(e *Event) bool {
	if s.queue.Has(e) {
		return false
	}
	s.queue.ReplaceOrInsert(e)

	return true
}

// Next pops the smallest event, or nil when the queue is exhausted.
func (s *Scanner) Next() *Event {
	e, ok := s.queue.DeleteMin()
	if !ok {
		return nil
	}
	return e
}

// Peek returns the smallest queued event without removing it, or nil.
func (s *Scanner) Peek() *Event {
	e, ok := s.queue.Min()
	if !ok {
		return nil
	}
	return e
}

// Len returns the number of queued events.
func (s *Scanner) Len() int { return s.queue.Len() }

// CompareEvents orders two events for the queue. See the package doc for the
// precedence.
func (s *Scanner) CompareEvents(a, b *Event) int {
	if a == b {
		return 0
	}
	// 1. Sweep coordinate
	if c := s.k.Compare(a.Point.X, b.Point.X); c != 0 {
		return c
	}
	// 2. Kind precedence
	if a.Kind != b.Kind {
		if a.Kind < b.Kind {
			return -1
		}
		return 1
	}
	// 3. Same kind
	switch a.Kind {
	case Enter:
		if c := s.k.Compare(a.Point.Y, b.Point.Y); c != 0 {
			return c
		}
		if c := s.k.CompareAngles(a.A, b.A); c != 0 {
			return c
		}
	case Intersection:
		if c := s.k.Compare(a.Point.Y, b.Point.Y); c != 0 {
			return c
		}
		if c := a.A.Compare(b.A); c != 0 {
			return c
		}
		return a.B.Compare(b.B)
	case Exit:
		if c := s.k.Compare(s.k.SmallerX(a.A), s.k.SmallerX(b.A)); c != 0 {
			return c
		}
		if c := s.k.Compare(a.Point.Y, b.Point.Y); c != 0 {
			return c
		}
	}
	// 4. Identity
	return a.A.Compare(b.A)
}

// ScanVertex is one point of a sweep column with every segment incident to it,
// sorted by identity without duplicates.
type ScanVertex struct {
	Point    core.Vertex
	Segments []*core.Segment
}

func (v *ScanVertex) add(seg *core.Segment) {
	i := sort.Search(len(v.Segments), func(i int) bool { return v.Segments[i].Compare(seg) >= 0 })
	if i < len(v.Segments) && v.Segments[i] == seg {
		return
	}
	v.Segments = append(v.Segments, nil)
	copy(v.Segments[i+1:], v.Segments[i:])
	v.Segments[i] = seg
}

// AddScanPoint files the event's segments under the scan vertex at the event
// point, creating the vertex when no existing one lies within tolerance.
func (s *Scanner) AddScanPoint(e *Event) {
	var target *ScanVertex
	for _, v := range s.column {
		if s.k.Equal(&v.Point, &e.Point) {
			target = v
			break
		}
	}
	if target == nil {
		target = &ScanVertex{Point: e.Point}
		s.column = append(s.column, target)
	}
	for _, seg := range e.Segments() {
		target.add(seg)
	}
}

// NextInLine pops the smallest scan vertex not to the right of column x
// (x within tolerance, then y). It returns nil once the column is drained.
func (s *Scanner) NextInLine(x decimal.Decimal) *ScanVertex {
	best := -1
	for i, v := range s.column {
		if s.k.GreaterThan(v.Point.X, x) {
			continue
		}
		if best < 0 || s.k.ComparePoints(&v.Point, &s.column[best].Point) < 0 {
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	v := s.column[best]
	s.column = append(s.column[:best], s.column[best+1:]...)

	return v
}

// Pending returns the number of scan vertices not yet consumed.
func (s *Scanner) Pending() int { return len(s.column) }
