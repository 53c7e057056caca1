package sweep

import (
	"fmt"

	"github.com/katalvlaran/hydroflow/core"
)

// Kind of a scan event. The numeric order is the precedence at equal x.
type Kind int

const (
	// Enter opens a segment at its A endpoint.
	Enter Kind = iota
	// Intersection marks a point shared by two segments.
	Intersection
	// Exit closes a segment at its B endpoint.
	Exit
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case Enter:
		return "enter"
	case Intersection:
		return "intersection"
	case Exit:
		return "exit"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is one stop of the sweep line.
type Event struct {
	Point core.Vertex
	Kind  Kind
	A     *core.Segment
	B     *core.Segment // set on Intersection only
}

// NewEnter returns the event opening s.
func NewEnter(s *core.Segment) *Event {
	return &Event{Point: *s.A, Kind: Enter, A: s}
}

// NewExit returns the event closing s.
func NewExit(s *core.Segment) *Event {
	return &Event{Point: *s.B, Kind: Exit, A: s}
}

// NewIntersection returns the event at p shared by a and b. The pair is
// stored in identity order so both discovery orders produce one event.
func NewIntersection(p core.Vertex, a, b *core.Segment) *Event {
	if b.Compare(a) < 0 {
		a, b = b, a
	}
	return &Event{Point: p, Kind: Intersection, A: a, B: b}
}

// Segments returns the segments carried by the event.
func (e *Event) Segments() []*core.Segment {
	if e.Kind == Intersection {
		return []*core.Segment{e.A, e.B}
	}
	return []*core.Segment{e.A}
}

// String renders the event for logs.
func (e *Event) String() string {
	if e.Kind == Intersection {
		return fmt.Sprintf("%s %s [%s | %s]", e.Kind, e.Point, e.A, e.B)
	}
	return fmt.Sprintf("%s %s [%s]", e.Kind, e.Point, e.A)
}
