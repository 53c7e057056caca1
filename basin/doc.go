// Package basin runs a full classification: it sweeps the drainage and
// boundary segments, validates the topology, builds one tree per outlet and
// checks that every eligible feature was reached.
//
// Stages, each a hard gate:
//
//	BuildEvents → Sweep → ValidateTopology → BuildTree → ValidateCompleteness
//
//   - ValidateTopology aborts on any touch or cross between drainage features.
//   - BuildTree aborts on no outlet, loop, cross-basin connection, multiple
//     outlets in single-outlet mode, or a wide confluence when
//     WithFailOnTooManyTributaries is set.
//   - ValidateCompleteness never aborts: unreached features get the
//     observation "feature not processed" and the run ends with
//     CompletedWithWarnings.
//
// Sweep:
//
//   - Enter tests the new segment against every live segment whose y-extent
//     it overlaps, and against the vertical segments of the current column.
//     Each meeting point is queued as an Intersection event.
//   - Vertical segments never join the ActiveOrder; they live for one
//     column only.
//   - Intersection and Enter re-sort the run of live segments passing
//     through the event point into their order right of it.
//   - Every event point is filed into a scan vertex; when the sweep leaves a
//     column, all segment pairs of each vertex are related.
//
// A run is single-threaded and owns its feature sets for its duration. Run
// independent datasets concurrently, never one dataset twice at once.
package basin
