package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/katalvlaran/hydroflow"
	"github.com/katalvlaran/hydroflow/core"
)

var (
	// ErrUnknownFormat is returned when a path or name maps to no supported format.
	ErrUnknownFormat = errors.New("loader: unknown format")

	// ErrUnsupportedGeometry is returned for geometry types a set cannot hold,
	// such as polygons in a drainage layer.
	ErrUnsupportedGeometry = errors.New("loader: unsupported geometry")

	// ErrNilFeatureSet is returned when a writer receives no feature set.
	ErrNilFeatureSet = errors.New("loader: feature set is nil")
)

// Format is an on-disk layer format.
type Format int

const (
	FormatAuto Format = iota
	FormatShapefile
	FormatGeoJSON
)

// String returns the format name used in configuration files.
func (f Format) String() string {
	switch f {
	case FormatShapefile:
		return "shapefile"
	case FormatGeoJSON:
		return "geojson"
	default:
		return "auto"
	}
}

// ParseFormat maps a configuration name to a Format. The empty string is FormatAuto.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "shp", "shapefile":
		return FormatShapefile, nil
	case "json", "geojson":
		return FormatGeoJSON, nil
	}
	return FormatAuto, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatOf infers the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return FormatShapefile, nil
	case ".json", ".geojson":
		return FormatGeoJSON, nil
	}
	return FormatAuto, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// resolve turns FormatAuto into the format of path.
func resolve(path string, f Format) (Format, error) {
	if f != FormatAuto {
		return f, nil
	}
	return FormatOf(path)
}

// Fields selects the optional output attributes.
type Fields struct {
	Strahler bool
	Shreve   bool
}

// Read loads the layer at path into a new feature set of the given set.
func Read(path string, format Format, set core.SetID, tol decimal.Decimal) (*core.FeatureSet, error) {
	format, err := resolve(path, format)
	if err != nil {
		return nil, err
	}

	var fs *core.FeatureSet
	switch format {
	case FormatShapefile:
		fs, err = ReadShapefile(path, set, tol)
	case FormatGeoJSON:
		var fp *os.File
		if fp, err = os.Open(path); err != nil {
			return nil, fmt.Errorf("loader: %w", err)
		}
		defer fp.Close()
		fs, err = ReadGeoJSON(fp, set, tol)
	}
	if err != nil {
		return nil, fmt.Errorf("loader: reading %s: %w", path, err)
	}

	hydroflow.Logger().Debug("loader: layer read",
		"path", path,
		"format", format.String(),
		"set", set.String(),
		"features", fs.Len(),
		"observed", len(fs.ObservedIDs()))

	return fs, nil
}

// Write stores the features of fs at path.
func Write(path string, format Format, fs *core.FeatureSet, fields Fields) error {
	format, err := resolve(path, format)
	if err != nil {
		return err
	}

	switch format {
	case FormatShapefile:
		err = WriteShapefile(path, fs, fields)
	case FormatGeoJSON:
		var fp *os.File
		if fp, err = os.Create(path); err != nil {
			return fmt.Errorf("loader: %w", err)
		}
		err = WriteGeoJSON(fp, fs, fields)
		if cerr := fp.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("loader: writing %s: %w", path, err)
	}

	return nil
}

// addRecord files the parts of one input record into fs.
//
// Empty parts are dropped. Parts after the first are observed with their
// position in the record, and drainage parts with a single vertex are
// observed as degenerate.
func addRecord(fs *core.FeatureSet, record int, parts [][][]float64, tol decimal.Decimal) error {
	n := 0
	for _, part := range parts {
		vertices := core.VerticesFromFloats(part)
		if len(vertices) == 0 {
			continue
		}

		f, err := fs.Add(vertices, tol)
		if err != nil {
			return fmt.Errorf("record %d: %w", record, err)
		}
		f.SourceID = record

		if n > 0 {
			fs.Observe(f.ID, fmt.Sprintf("part %d of record %d", n+1, record))
		}
		if !f.Process && fs.Set == core.SetDrainage {
			fs.Observe(f.ID, "degenerate feature: single vertex")
		}
		n++
	}

	return nil
}

// closeRing appends the first vertex when the ring is open.
func closeRing(ring [][]float64) [][]float64 {
	if len(ring) < 2 {
		return ring
	}
	first, last := ring[0], ring[len(ring)-1]
	if len(first) >= 2 && len(last) >= 2 && first[0] == last[0] && first[1] == last[1] {
		return ring
	}

	return append(ring, first)
}

// downstream returns the vertex coordinates of f in flow order.
func downstream(f *core.Feature) [][]float64 {
	out := make([][]float64, len(f.Vertices))
	for i, v := range f.Vertices {
		out[i] = []float64{v.X.InexactFloat64(), v.Y.InexactFloat64()}
	}
	if f.Flow == core.FlowReverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}

	return out
}
