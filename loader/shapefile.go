package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/shopspring/decimal"

	"github.com/katalvlaran/hydroflow/core"
)

// Shapefile attribute widths.
const (
	fidWidth   = 10
	flowWidth  = 8
	orderWidth = 4
	obsWidth   = 254
)

// ReadShapefile loads every record of the shapefile at path. Drainage layers
// accept polylines; boundary layers accept polylines and polygons.
func ReadShapefile(path string, set core.SetID, tol decimal.Decimal) (*core.FeatureSet, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	fs := core.NewFeatureSet(set)
	for r.Next() {
		n, shape := r.Shape()

		parts, polygon, ok := shapeParts(shape)
		if !ok {
			return nil, fmt.Errorf("%w: record %d is %s", ErrUnsupportedGeometry, n, reflect.TypeOf(shape))
		}
		if polygon {
			if set == core.SetDrainage {
				return nil, fmt.Errorf("%w: polygon record %d in drainage layer", ErrUnsupportedGeometry, n)
			}
			for i := range parts {
				parts[i] = closeRing(parts[i])
			}
		}

		if err := addRecord(fs, n, parts, tol); err != nil {
			return nil, err
		}
	}

	return fs, nil
}

// shapeParts splits a shape into its parts. polygon reports ring geometry.
func shapeParts(shape shp.Shape) (parts [][][]float64, polygon, ok bool) {
	switch s := shape.(type) {
	case *shp.PolyLine:
		return split(s.Parts, s.Points), false, true
	case *shp.Polygon:
		return split(s.Parts, s.Points), true, true
	case *shp.PolyLineZ:
		return split(s.Parts, s.Points), false, true
	case *shp.PolygonZ:
		return split(s.Parts, s.Points), true, true
	}
	return nil, false, false
}

// split cuts a flat point array at the part offsets.
func split(offsets []int32, points []shp.Point) [][][]float64 {
	parts := make([][][]float64, 0, len(offsets))
	for i, first := range offsets {
		last := len(points)
		if i < len(offsets)-1 {
			last = int(offsets[i+1])
		}
		if int(first) > last || last > len(points) {
			continue
		}

		part := make([][]float64, 0, last-int(first))
		for _, p := range points[first:last] {
			part = append(part, []float64{p.X, p.Y})
		}
		parts = append(parts, part)
	}

	return parts
}

// WriteShapefile writes fs as a polyline shapefile at path, with its
// attribute table next to it as <base>.dbf.
func WriteShapefile(path string, fs *core.FeatureSet, fields Fields) error {
	if fs == nil {
		return ErrNilFeatureSet
	}

	w, err := shp.Create(path, shp.POLYLINE)
	if err != nil {
		return err
	}
	err = writeRecords(w, fs, fields)
	w.Close()
	if err != nil {
		return err
	}

	return renameTable(path)
}

func writeRecords(w *shp.Writer, fs *core.FeatureSet, fields Fields) error {
	// 1. Attribute table
	table := []shp.Field{
		shp.NumberField("FID", fidWidth),
		shp.StringField("FLOW", flowWidth),
	}
	if fields.Strahler {
		table = append(table, shp.NumberField("STRAHLER", orderWidth))
	}
	if fields.Shreve {
		table = append(table, shp.NumberField("SHREVE", fidWidth))
	}
	table = append(table, shp.StringField("OBS", obsWidth))
	if err := w.SetFields(table); err != nil {
		return err
	}

	// 2. One polyline per feature, downstream order
	for _, f := range fs.Features {
		coords := downstream(f)
		points := make([]shp.Point, len(coords))
		for i, c := range coords {
			points[i] = shp.Point{X: c[0], Y: c[1]}
		}
		row := int(w.Write(shp.NewPolyLine([][]shp.Point{points})))

		obs, _ := fs.Observation(f.ID)
		if len(obs) > obsWidth {
			obs = obs[:obsWidth]
		}
		values := []any{f.ID, f.Flow.String()}
		if fields.Strahler {
			values = append(values, f.Strahler)
		}
		if fields.Shreve {
			values = append(values, f.Shreve)
		}
		values = append(values, obs)

		for col, v := range values {
			if err := w.WriteAttribute(row, col, v); err != nil {
				return fmt.Errorf("feature %d: %w", f.ID, err)
			}
		}
	}

	return nil
}

// renameTable moves the attribute table that go-shp v0.1.1 creates as
// "<base>dbf" to "<base>.dbf", where shapefile readers look for it.
func renameTable(path string) error {
	base := path
	if strings.EqualFold(filepath.Ext(path), ".shp") {
		base = path[:len(path)-len(".shp")]
	}
	if _, err := os.Stat(base + "dbf"); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	return os.Rename(base+"dbf", base+".dbf")
}
