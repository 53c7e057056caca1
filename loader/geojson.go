package loader

import (
	"fmt"
	"io"

	geojson "github.com/paulmach/go.geojson"
	"github.com/shopspring/decimal"

	"github.com/katalvlaran/hydroflow/core"
)

// ReadGeoJSON loads a feature collection from r. The position of a feature in
// the collection is its record number. Features without geometry are skipped.
func ReadGeoJSON(r io.Reader, set core.SetID, tol decimal.Decimal) (*core.FeatureSet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}

	fs := core.NewFeatureSet(set)
	for n, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		parts, err := geometryParts(f.Geometry, set)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", n, err)
		}
		if err := addRecord(fs, n, parts, tol); err != nil {
			return nil, err
		}
	}

	return fs, nil
}

// geometryParts flattens a geometry into polyline parts. Polygon rings are
// only accepted for boundary sets.
func geometryParts(g *geojson.Geometry, set core.SetID) ([][][]float64, error) {
	switch g.Type {
	case geojson.GeometryLineString:
		return [][][]float64{g.LineString}, nil
	case geojson.GeometryMultiLineString:
		return g.MultiLineString, nil
	case geojson.GeometryPolygon, geojson.GeometryMultiPolygon:
		if set == core.SetDrainage {
			return nil, fmt.Errorf("%w: %s in drainage layer", ErrUnsupportedGeometry, g.Type)
		}
		var rings [][][]float64
		polygons := g.MultiPolygon
		if g.Type == geojson.GeometryPolygon {
			polygons = [][][][]float64{g.Polygon}
		}
		for _, p := range polygons {
			for _, ring := range p {
				rings = append(rings, closeRing(ring))
			}
		}
		return rings, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedGeometry, g.Type)
}

// WriteGeoJSON writes fs to w as a feature collection of line strings.
func WriteGeoJSON(w io.Writer, fs *core.FeatureSet, fields Fields) error {
	if fs == nil {
		return ErrNilFeatureSet
	}

	fc := geojson.NewFeatureCollection()
	for _, f := range fs.Features {
		out := geojson.NewLineStringFeature(downstream(f))
		out.SetProperty("FID", f.ID)
		out.SetProperty("FLOW", f.Flow.String())
		if fields.Strahler {
			out.SetProperty("STRAHLER", f.Strahler)
		}
		if fields.Shreve {
			out.SetProperty("SHREVE", f.Shreve)
		}
		obs, _ := fs.Observation(f.ID)
		out.SetProperty("OBS", obs)
		fc.AddFeature(out)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(data)

	return err
}
