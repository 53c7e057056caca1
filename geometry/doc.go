// Package geometry implements the tolerance-aware predicates the sweep and the
// classifier share: coordinate ordering, point equality, segment intersection,
// height projection at a sweep coordinate and slope comparison.
//
// What:
//
//   - Kernel.SmallerThan / GreaterThan: strict order with a tolerance margin
//     (a+tol < b, a-tol > b).
//   - Kernel.EqualCoord: |a-b| ≤ tol. Kernel.Equal: Euclidean distance ≤ tol
//     (a disk, not a box).
//   - Kernel.Intersection: 2×2 solve for the segment parameters t, u; a point
//     only when |det| > tol and both parameters lie in [-tol, 1+tol].
//   - Kernel.Overlap: a point inside the common stretch of two collinear
//     segments, so overlaps surface as sweep events too.
//   - Kernel.RelativePoint: the point of a segment at sweep coordinate x.
//   - Kernel.CompareAngles: sign of the 2-D cross product of the directions;
//     -1 when the first segment has the smaller slope. Vertical is the largest.
//
// Every operation is a total function; there is no failure mode besides a
// negative tolerance at construction.
//
// Sign convention:
//
//	Segments are normalised A→B with A the smaller endpoint, so directions
//	point into x ≥ 0 and slopes compare by cross-multiplication without
//	division. The Active Order in package sweep relies on exactly this sign.
package geometry
