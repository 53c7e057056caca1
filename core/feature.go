// SPDX-License-Identifier: MIT
// Package core: Feature construction and the FeatureSet arena.

package core

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Feature is one drainage polyline or boundary ring.
type Feature struct {
	// ID indexes the feature inside its FeatureSet.
	ID int

	// SourceID is the record number in the input file. Multi-part records
	// split into several features that share one SourceID.
	SourceID int

	Set      SetID
	Vertices []*Vertex
	Segments []*Segment

	// Process is false for degenerate input; the sweep skips such features.
	Process bool

	// Classification output.
	Flow     Flow
	Strahler int
	Shreve   int

	// MouthFeatureID is the basin root; -1 until the classifier reaches the feature.
	MouthFeatureID int

	HasObservation bool
}

// NewFeature builds a feature from its vertex chain and derives the
// normalised segments.
//
// Implementation:
//   - Stage 1: Validate set and chain length.
//   - Stage 2: Stamp chain indexes and the Last flag onto the vertices.
//   - Stage 3: Emit one segment per consecutive pair, smaller endpoint first.
//     A single-vertex chain yields one degenerate segment and Process=false.
//
// The tolerance only affects which endpoint becomes A when x coordinates are
// within tol of each other (near-vertical segments order by y).
func NewFeature(id int, set SetID, vertices []*Vertex, tol decimal.Decimal) (*Feature, error) {
	// 1. Validate
	if !set.Valid() {
		return nil, fmt.Errorf("core: feature %d: %w", id, ErrUnknownSet)
	}
	if len(vertices) == 0 {
		return nil, fmt.Errorf("core: feature %d: %w", id, ErrEmptyVertices)
	}

	// 2. Chain positions
	last := len(vertices) - 1
	for i, v := range vertices {
		v.Index = i
		v.Last = i == last
	}

	f := &Feature{
		ID:             id,
		SourceID:       id,
		Set:            set,
		Vertices:       vertices,
		Process:        len(vertices) > 1,
		MouthFeatureID: -1,
	}

	// 3. Segments
	if len(vertices) == 1 {
		f.Segments = []*Segment{{A: vertices[0], B: vertices[0], FeatureID: id, Set: set}}
		return f, nil
	}
	f.Segments = make([]*Segment, 0, last)
	for i := 0; i < last; i++ {
		a, b := vertices[i], vertices[i+1]
		if !smallerEndpoint(a, b, tol) {
			a, b = b, a
		}
		f.Segments = append(f.Segments, &Segment{A: a, B: b, FeatureID: id, Index: i, Set: set})
	}

	return f, nil
}

// smallerEndpoint reports whether a precedes b: smaller x, or x within tol
// and y not greater.
func smallerEndpoint(a, b *Vertex, tol decimal.Decimal) bool {
	if a.X.Sub(b.X).Abs().LessThanOrEqual(tol) {
		return a.Y.LessThanOrEqual(b.Y)
	}
	return a.X.LessThan(b.X)
}

// Eligible reports whether the feature takes part in classification:
// a processable drainage feature.
func (f *Feature) Eligible() bool {
	return f.Set == SetDrainage && f.Process
}

// ResetClassification clears every classifier output so a feature set can be
// classified again.
func (f *Feature) ResetClassification() {
	f.Flow = FlowUnset
	f.Strahler = 0
	f.Shreve = 0
	f.MouthFeatureID = -1
	for _, s := range f.Segments {
		s.IsMouth = false
	}
}

// FeatureSet is the arena of features of one set, indexed by Feature.ID.
type FeatureSet struct {
	Set      SetID
	Features []*Feature

	observations map[int]string
}

// NewFeatureSet returns an empty arena for set.
func NewFeatureSet(set SetID) *FeatureSet {
	return &FeatureSet{Set: set, observations: make(map[int]string)}
}

// Add appends a feature built from vertices and returns it.
// The feature id is the current arena length.
func (fs *FeatureSet) Add(vertices []*Vertex, tol decimal.Decimal) (*Feature, error) {
	f, err := NewFeature(len(fs.Features), fs.Set, vertices, tol)
	if err != nil {
		return nil, err
	}
	fs.Features = append(fs.Features, f)

	return f, nil
}

// Feature returns the feature with the given id, or nil.
func (fs *FeatureSet) Feature(id int) *Feature {
	if fs == nil || id < 0 || id >= len(fs.Features) {
		return nil
	}
	return fs.Features[id]
}

// Len returns the number of features.
func (fs *FeatureSet) Len() int {
	if fs == nil {
		return 0
	}
	return len(fs.Features)
}

// Observe attaches a note to feature id and flags it. Notes on the same
// feature are joined with "; ".
func (fs *FeatureSet) Observe(id int, note string) {
	f := fs.Feature(id)
	if f == nil {
		return
	}
	if fs.observations == nil {
		fs.observations = make(map[int]string)
	}
	if prev, ok := fs.observations[id]; ok && prev != "" {
		note = prev + "; " + note
	}
	fs.observations[id] = note
	f.HasObservation = true
}

// Observation returns the note attached to feature id.
func (fs *FeatureSet) Observation(id int) (string, bool) {
	note, ok := fs.observations[id]
	return note, ok
}

// ObservedIDs returns the ids carrying an observation, ascending.
func (fs *FeatureSet) ObservedIDs() []int {
	ids := make([]int, 0, len(fs.observations))
	for id := range fs.observations {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	return ids
}

// Reset clears the classification of every feature.
func (fs *FeatureSet) Reset() {
	for _, f := range fs.Features {
		f.ResetClassification()
	}
}

// VerticesFromFloats converts [x, y] pairs into a fresh vertex chain.
// Extra ordinates (z, m) are ignored; pairs shorter than two are skipped.
func VerticesFromFloats(coords [][]float64) []*Vertex {
	out := make([]*Vertex, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		out = append(out, &Vertex{X: decimal.NewFromFloat(c[0]), Y: decimal.NewFromFloat(c[1])})
	}

	return out
}
