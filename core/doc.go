// Package core defines the plain records every hydroflow stage works on:
// Vertex, Segment, Feature and FeatureSet, plus the append-only diagnostic Log.
//
// The model is a planar arrangement of line segments split into two sets:
//
//   - Drainage (SetDrainage): stream reaches, one Feature per polyline.
//   - Boundary (SetBoundary): the watershed polygon rings.
//
// A Feature owns an ordered vertex chain and the Segments derived from it.
// Every Segment is normalised so that A is the geometrically smaller endpoint
// (smaller x, tie-broken by smaller y within the tolerance used at build time).
// Segment geometry never changes after construction; only Segment.IsMouth and
// the owning Feature's classification fields (Flow, Strahler, Shreve,
// MouthFeatureID, HasObservation) are written by later stages.
//
// Coordinates are shopspring/decimal values.
//
// Identity order:
//
//	Segment.Compare orders by (Set, FeatureID, Index). It is the final
//	tie-break of every sweep comparator, so two distinct segments never
//	compare equal.
//
// Arena:
//
//	FeatureSet.Features is indexed by Feature.ID. Later stages pass ids, not
//	handles, and resolve them through FeatureSet.Feature.
//
// Errors:
//
//	ErrEmptyVertices - NewFeature called with no vertices.
//	ErrUnknownSet    - SetID outside {SetDrainage, SetBoundary}.
package core
