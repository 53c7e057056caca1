// Package hydroflow derives the stream hierarchy of a drainage network bounded
// by a watershed polygon: flow direction, Strahler order and Shreve magnitude
// for every reach.
//
// 🚀 What is hydroflow?
//
//	A sweep-line topology engine plus a tree classifier:
//		• Geometry kernel: tolerance-aware predicates on decimal coordinates
//		• Sweep: Bentley–Ottmann scanner with an ordered active-segment list
//		• Relations: abut / touch / cross store with a child-lookup index
//		• Tree: per-outlet recursive classifier with loop and cross-basin checks
//		• Basin: the driver tying the stages together
//
// Under the hood, everything is organized under these subpackages:
//
//	core/       Vertex, Segment, Feature, FeatureSet and the diagnostic Log
//	geometry/   Kernel (tolerance predicates, intersection, angle order)
//	sweep/      Scanner, ScanVertex, ActiveOrder
//	relation/   Store (abut relations, anomalies, mouths, indexes)
//	tree/       Build, CalculateStrahler, StrahlerMode
//	basin/      Classify and the ResultCode taxonomy
//	config/     TOML / YAML run parameters
//	loader/     shapefile and GeoJSON readers and writers
//
// Quick ASCII example (a Y confluence draining west through the boundary):
//
//	          ╱ S2
//	  ┃──S1──●
//	          ╲ S3
//
//	S2 and S3 are order 1, S1 becomes order 2 with Shreve magnitude 2.
//
// The core packages never touch the filesystem; loader and cmd/hydroflow do.
//
//	go install github.com/katalvlaran/hydroflow/cmd/hydroflow@latest
package hydroflow
