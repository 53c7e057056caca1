// Package loader reads drainage and boundary layers from ESRI shapefiles and
// GeoJSON feature collections, and writes classified drainage back out.
//
// Every input record becomes one or more core.Feature values:
//
//   - A multi-part record splits into one feature per part. All parts share
//     the record number as SourceID; parts after the first carry an
//     observation naming the part.
//   - A drainage part with a single vertex is kept but marked Process=false
//     and observed, so the classifier neither sweeps nor reports it.
//   - Polygon rings are read as boundary parts and closed when the input
//     leaves them open.
//
// Writers emit one polyline per feature with the attributes FID, FLOW,
// STRAHLER and SHREVE (the latter two only when requested) and OBS. Features
// classified FlowReverse are written with their vertex order reversed so the
// geometry always points downstream.
package loader
