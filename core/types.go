// SPDX-License-Identifier: MIT
// Package core: vertex and segment records, set and flow enums, sentinel errors.

package core

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Sentinel errors for core construction.
var (
	// ErrEmptyVertices indicates that a feature was built from an empty chain.
	ErrEmptyVertices = errors.New("core: feature has no vertices")

	// ErrUnknownSet indicates a SetID outside the known sets.
	ErrUnknownSet = errors.New("core: unknown feature set")
)

// SetID tells drainage reaches apart from boundary rings.
type SetID int

const (
	// SetDrainage holds the stream network.
	SetDrainage SetID = iota
	// SetBoundary holds the watershed polygon.
	SetBoundary
)

// String returns the lowercase set name.
func (s SetID) String() string {
	switch s {
	case SetDrainage:
		return "drainage"
	case SetBoundary:
		return "boundary"
	default:
		return fmt.Sprintf("set(%d)", int(s))
	}
}

// Valid reports whether s is one of the known sets.
func (s SetID) Valid() bool { return s == SetDrainage || s == SetBoundary }

// Flow is the orientation assigned to a drainage feature by the classifier.
type Flow int

const (
	// FlowUnset marks a feature the classifier has not reached.
	FlowUnset Flow = iota
	// FlowKeep means the digitised vertex order already points downstream.
	FlowKeep
	// FlowReverse means the vertex order points upstream.
	FlowReverse
)

// String returns the lowercase flow name.
func (f Flow) String() string {
	switch f {
	case FlowUnset:
		return "unset"
	case FlowKeep:
		return "keep"
	case FlowReverse:
		return "reverse"
	default:
		return fmt.Sprintf("flow(%d)", int(f))
	}
}

// Vertex is one point of a feature's vertex chain.
//
// Index is the position within the chain; Last marks the chain terminus.
type Vertex struct {
	X, Y  decimal.Decimal
	Index int
	Last  bool
}

// NewVertex returns a chain vertex at (x, y).
func NewVertex(x, y decimal.Decimal, index int, last bool) *Vertex {
	return &Vertex{X: x, Y: y, Index: index, Last: last}
}

// Point returns a free vertex (not part of any chain) at float coordinates.
// Used for computed points such as intersections and by loaders.
func Point(x, y float64) Vertex {
	return Vertex{X: decimal.NewFromFloat(x), Y: decimal.NewFromFloat(y), Index: -1}
}

// IsExtremity reports whether v is the first or last vertex of its chain.
func (v *Vertex) IsExtremity() bool { return v.Index == 0 || v.Last }

// String renders the coordinates as "(x y)".
func (v Vertex) String() string {
	return fmt.Sprintf("(%s %s)", v.X.String(), v.Y.String())
}

// Segment is a directed edge A→B of a feature.
//
// A is always the smaller endpoint; A and B point into the owning feature's
// Vertices, so IsExtremity reflects the chain position.
type Segment struct {
	A, B      *Vertex
	FeatureID int
	Index     int // segment index within the feature
	Set       SetID
	IsMouth   bool
}

// Compare orders segments by (Set, FeatureID, Index).
// Returns -1, 0 or 1.
func (s *Segment) Compare(o *Segment) int {
	switch {
	case s.Set != o.Set:
		return cmpInt(int(s.Set), int(o.Set))
	case s.FeatureID != o.FeatureID:
		return cmpInt(s.FeatureID, o.FeatureID)
	default:
		return cmpInt(s.Index, o.Index)
	}
}

// String identifies the segment for diagnostics.
func (s *Segment) String() string {
	return fmt.Sprintf("%s feature %d segment %d %s-%s", s.Set, s.FeatureID, s.Index, s.A, s.B)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
