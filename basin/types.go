package basin

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/katalvlaran/hydroflow/geometry"
	"github.com/katalvlaran/hydroflow/tree"
)

var (
	// ErrNilFeatureSet is returned when the drainage set is nil.
	ErrNilFeatureSet = errors.New("basin: drainage feature set is nil")

	// ErrUnexpectedTopology indicates touch or cross relations between
	// drainage features.
	ErrUnexpectedTopology = errors.New("basin: unexpected topology")

	// ErrMultipleOutlets is returned in single-outlet mode when the sweep
	// found more than one mouth.
	ErrMultipleOutlets = errors.New("basin: multiple outlets found")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("basin: invalid option supplied")
)

// ResultCode is the single terminal code of a run.
type ResultCode int

const (
	Success               ResultCode = iota // every eligible feature classified
	CompletedWithWarnings                   // ran to completion, some features unclassified
	NoOutletFound                           // no drainage feature abuts the boundary
	MultipleOutletsFound                    // single-outlet mode only
	TooManyTributaries                      // wide confluence with WithFailOnTooManyTributaries
	UnexpectedTopology                      // touch or cross between drainage features
	LoopDetected                            // a feature reached twice within its basin
	CrossBasinConnection                    // a feature reached from two basins
)

var codeNames = [...]string{
	Success:               "success",
	CompletedWithWarnings: "completed with warnings",
	NoOutletFound:         "no outlet found",
	MultipleOutletsFound:  "multiple outlets found",
	TooManyTributaries:    "too many tributaries",
	UnexpectedTopology:    "unexpected topology",
	LoopDetected:          "loop detected",
	CrossBasinConnection:  "cross-basin connection",
}

// String returns the human-readable code name.
func (c ResultCode) String() string {
	if c >= 0 && int(c) < len(codeNames) {
		return codeNames[c]
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Fatal reports whether the code aborted the run.
func (c ResultCode) Fatal() bool {
	return c != Success && c != CompletedWithWarnings
}

// codeOf maps a stage error to its result code.
func codeOf(err error) ResultCode {
	switch {
	case errors.Is(err, tree.ErrNoOutletFound):
		return NoOutletFound
	case errors.Is(err, ErrMultipleOutlets):
		return MultipleOutletsFound
	case errors.Is(err, tree.ErrTooManyTributaries):
		return TooManyTributaries
	case errors.Is(err, tree.ErrLoopDetected):
		return LoopDetected
	case errors.Is(err, tree.ErrCrossBasinConnection):
		return CrossBasinConnection
	default:
		return UnexpectedTopology
	}
}

// Option configures Classify.
// An invalid Option is recorded and surfaced as ErrOptionViolation by Classify.
type Option func(*Options)

// Options holds the run parameters.
type Options struct {
	// Tolerance is the fuzz radius of every geometric comparison.
	Tolerance decimal.Decimal

	// Strahler selects whether and how Strahler order is computed.
	Strahler tree.StrahlerMode

	// Shreve enables Shreve magnitude.
	Shreve bool

	// SingleOutlet rejects networks with more than one mouth.
	SingleOutlet bool

	// FailOnTooManyTributaries makes wide confluences fatal under strict Strahler.
	FailOnTooManyTributaries bool

	err error
}

// DefaultOptions returns the default tolerance, strict Strahler, Shreve on,
// multi-outlet mode.
func DefaultOptions() Options {
	return Options{
		Tolerance: geometry.DefaultTolerance,
		Strahler:  tree.StrahlerStrict,
		Shreve:    true,
	}
}

// WithTolerance sets the fuzz radius. Negative values are rejected.
func WithTolerance(tol decimal.Decimal) Option {
	return func(o *Options) {
		if tol.IsNegative() {
			o.err = fmt.Errorf("%w: tolerance cannot be negative (%s)", ErrOptionViolation, tol)
			return
		}
		o.Tolerance = tol
	}
}

// WithStrahler sets the Strahler mode.
func WithStrahler(m tree.StrahlerMode) Option {
	return func(o *Options) {
		if m < tree.StrahlerOff || m > tree.StrahlerRelaxed {
			o.err = fmt.Errorf("%w: strahler mode %d", ErrOptionViolation, int(m))
			return
		}
		o.Strahler = m
	}
}

// WithShreve toggles Shreve magnitude.
func WithShreve(on bool) Option {
	return func(o *Options) { o.Shreve = on }
}

// WithSingleOutlet enables single-outlet mode.
func WithSingleOutlet() Option {
	return func(o *Options) { o.SingleOutlet = true }
}

// WithFailOnTooManyTributaries makes wide confluences fatal under strict Strahler.
func WithFailOnTooManyTributaries() Option {
	return func(o *Options) { o.FailOnTooManyTributaries = true }
}

// Report is the outcome of one Classify call.
type Report struct {
	Code ResultCode

	// Messages holds the diagnostics in the order they were produced.
	Messages []string

	// Counters of the sweep.
	Events    int
	Relations int
	Anomalies int
	Outlets   int

	// Strahler is the effective mode at the end of the run.
	Strahler tree.StrahlerMode

	// WideConfluences counts confluences of more than two tributaries seen
	// while strict.
	WideConfluences int

	// Classified counts features written by the tree builder.
	Classified int

	// Unprocessed lists eligible drainage features left unclassified.
	Unprocessed []int
}
