// Package config loads classification runs from TOML or YAML files.
//
// A file describes one run:
//
//	tolerance = "0.001"
//	strahler  = "strict"
//	shreve    = true
//
//	[input]
//	drainage = "streams.shp"
//	boundary = "watershed.shp"
//
//	[output]
//	path = "classified.geojson"
//
//	[log]
//	logfile      = "hydroflow.log"
//	max_log_size = 10
//	max_log_age  = 30
//
// Absent keys keep the values of Default. Unknown keys are rejected.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/hydroflow/basin"
	"github.com/katalvlaran/hydroflow/loader"
	"github.com/katalvlaran/hydroflow/tree"
)

var (
	// ErrUnknownExtension is returned for files that are neither TOML nor YAML.
	ErrUnknownExtension = errors.New("config: unknown file extension")

	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("config: invalid configuration")
)

// Params is one classification run.
type Params struct {
	// Tolerance is a decimal string so no precision is lost on the way in.
	Tolerance string `toml:"tolerance" yaml:"tolerance"`

	// Strahler is "off", "strict" or "relaxed".
	Strahler string `toml:"strahler" yaml:"strahler"`

	Shreve                   bool `toml:"shreve" yaml:"shreve"`
	SingleOutlet             bool `toml:"single_outlet" yaml:"single_outlet"`
	FailOnTooManyTributaries bool `toml:"fail_on_too_many_tributaries" yaml:"fail_on_too_many_tributaries"`

	Input  InputConfig  `toml:"input" yaml:"input"`
	Output OutputConfig `toml:"output" yaml:"output"`
	Log    LogConfig    `toml:"log" yaml:"log"`
}

// InputConfig names the two input layers.
type InputConfig struct {
	Drainage string `toml:"drainage" yaml:"drainage"`
	Boundary string `toml:"boundary" yaml:"boundary"`
	Format   string `toml:"format" yaml:"format"`
}

// OutputConfig names the classified layer. An empty Path skips export.
type OutputConfig struct {
	Path   string `toml:"path" yaml:"path"`
	Format string `toml:"format" yaml:"format"`
}

// LogConfig sends the run log to a rotating file.
type LogConfig struct {
	Logfile string `toml:"logfile" yaml:"logfile"`
	MaxSize int    `toml:"max_log_size" yaml:"max_log_size"` // megabytes
	MaxAge  int    `toml:"max_log_age" yaml:"max_log_age"`   // days
	Level   string `toml:"level" yaml:"level"`
}

// Default returns the parameters of a run with nothing configured.
func Default() Params {
	return Params{
		Tolerance: "0.000001",
		Strahler:  tree.StrahlerStrict.String(),
		Shreve:    true,
		Log:       LogConfig{Level: "info"},
	}
}

// Load decodes the file at path, choosing the decoder by extension.
// Relative input and output paths are resolved against the file's directory.
func Load(path string) (*Params, error) {
	p := Default()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.DecodeFile(path, &p)
		if err != nil {
			return nil, fmt.Errorf("config: could not decode TOML %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: unknown key %q in %s", ErrInvalid, undecoded[0].String(), path)
		}
	case ".yaml", ".yml":
		fp, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		defer fp.Close()

		dec := yaml.NewDecoder(fp)
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("config: could not decode YAML %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExtension, path)
	}

	p.resolvePaths(filepath.Dir(path))
	if err := p.Validate(); err != nil {
		return nil, err
	}

	return &p, nil
}

func (p *Params) resolvePaths(dir string) {
	for _, s := range []*string{&p.Input.Drainage, &p.Input.Boundary, &p.Output.Path, &p.Log.Logfile} {
		if *s != "" && !filepath.IsAbs(*s) {
			*s = filepath.Join(dir, *s)
		}
	}
}

// Validate checks every value that has a closed set of choices.
func (p *Params) Validate() error {
	if _, err := p.Tol(); err != nil {
		return err
	}
	if _, err := tree.ParseStrahlerMode(p.Strahler); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := loader.ParseFormat(p.Input.Format); err != nil {
		return fmt.Errorf("%w: input: %w", ErrInvalid, err)
	}
	if _, err := loader.ParseFormat(p.Output.Format); err != nil {
		return fmt.Errorf("%w: output: %w", ErrInvalid, err)
	}
	if p.Log.MaxSize < 0 || p.Log.MaxAge < 0 {
		return fmt.Errorf("%w: negative log rotation limits", ErrInvalid)
	}
	if _, err := p.Log.SlogLevel(); err != nil {
		return err
	}

	return nil
}

// Tol returns the parsed tolerance.
func (p *Params) Tol() (decimal.Decimal, error) {
	if p.Tolerance == "" {
		return decimal.Zero, fmt.Errorf("%w: tolerance is empty", ErrInvalid)
	}
	tol, err := decimal.NewFromString(p.Tolerance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: tolerance %q: %w", ErrInvalid, p.Tolerance, err)
	}
	if tol.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: tolerance cannot be negative (%s)", ErrInvalid, tol)
	}

	return tol, nil
}

// Options converts the parameters into Classify options.
func (p *Params) Options() ([]basin.Option, error) {
	tol, err := p.Tol()
	if err != nil {
		return nil, err
	}
	mode, err := tree.ParseStrahlerMode(p.Strahler)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	opts := []basin.Option{
		basin.WithTolerance(tol),
		basin.WithStrahler(mode),
		basin.WithShreve(p.Shreve),
	}
	if p.SingleOutlet {
		opts = append(opts, basin.WithSingleOutlet())
	}
	if p.FailOnTooManyTributaries {
		opts = append(opts, basin.WithFailOnTooManyTributaries())
	}

	return opts, nil
}

// Fields returns the optional attributes the exporter should write.
func (p *Params) Fields() loader.Fields {
	mode, _ := tree.ParseStrahlerMode(p.Strahler)
	return loader.Fields{Strahler: mode != tree.StrahlerOff, Shreve: p.Shreve}
}
