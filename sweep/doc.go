// Package sweep provides the two ordered structures of a Bentley–Ottmann
// sweep over tolerance-compared segments: the Scanner (event queue plus
// per-column scan vertices) and the ActiveOrder (segments crossing the sweep
// line, top to bottom).
//
// What:
//
//   - Event: Enter at a segment's A, Exit at its B, Intersection at a point
//     shared by two segments. Build events with NewEnter,
//     NewExit and NewIntersection; only intersections carry B.
//   - Scanner.AddSegments / Sort / Next / Add: the event queue, a
//     google/btree ordered by
//     1. ascending x (within tolerance),
//     2. kind: Enter < Intersection < Exit,
//     3. Enter by ascending y then slope; Intersection by ascending y;
//     Exit by the segment's smaller x then y,
//     4. segment identity.
//     Distinct events never compare equal, so re-adding an event that is
//     already queued is a no-op.
//   - Scanner.AddScanPoint / NextInLine: clusters the points of one sweep
//     column into ScanVertex values holding every incident segment.
//   - ActiveOrder: Insert, Delete, Swap, Above, Below, Locate, driven by
//     ComparePosition, the same tie-break chain in every operation. Reorder
//     puts every segment through one point into its order right of it.
//
// ComparePosition precedence, at equal projected height:
//
//  1. either segment is a point: identity order;
//  2. one enters where the other exits: endpoint y, slope, endpoint x;
//  3. a segment ends at the point and the other does not start there:
//     re-compare at the larger start x, or reversed slopes when there is
//     nothing to walk back to;
//  4. genuine crossing (no endpoint at the point): reversed slopes;
//  5. otherwise: slopes.
//
// Every step is antisymmetric, so ComparePosition(x, a, b) ==
// -ComparePosition(x, b, a) for distinct segments.
//
// Complexity:
//
//   - Scanner: O(log n) per Add/Next, O(n log n) for Sort.
//   - ActiveOrder: O(log n) comparisons for Insert/Locate, O(n) slice moves.
package sweep
