package tree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/katalvlaran/hydroflow/core"
	"github.com/katalvlaran/hydroflow/geometry"
)

var (
	// ErrNilStore is returned when Build gets a nil relation store or feature set.
	ErrNilStore = errors.New("tree: relation store or feature set is nil")

	// ErrNoOutletFound indicates that the sweep recorded no mouth relation.
	ErrNoOutletFound = errors.New("tree: no outlet found")

	// ErrLoopDetected indicates a feature reached twice within its own basin.
	ErrLoopDetected = errors.New("tree: loop detected")

	// ErrCrossBasinConnection indicates a feature reached from two basins.
	ErrCrossBasinConnection = errors.New("tree: cross-basin connection")

	// ErrTooManyTributaries is returned only with WithFailOnTooManyTributaries,
	// for a confluence of more than two tributaries under strict Strahler.
	ErrTooManyTributaries = errors.New("tree: too many tributaries")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("tree: invalid option supplied")
)

// StrahlerMode selects whether and how Strahler order is computed.
type StrahlerMode int

const (
	// StrahlerOff skips Strahler order.
	StrahlerOff StrahlerMode = iota
	// StrahlerStrict expects at most two tributaries per confluence.
	StrahlerStrict
	// StrahlerRelaxed lets only the two largest tributaries count.
	StrahlerRelaxed
)

// String returns the mode name accepted by ParseStrahlerMode.
func (m StrahlerMode) String() string {
	switch m {
	case StrahlerOff:
		return "off"
	case StrahlerStrict:
		return "strict"
	case StrahlerRelaxed:
		return "relaxed"
	default:
		return fmt.Sprintf("strahler(%d)", int(m))
	}
}

// ParseStrahlerMode parses "off", "strict" or "relaxed" (case-insensitive).
// The empty string means off.
func ParseStrahlerMode(s string) (StrahlerMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "off", "none", "false":
		return StrahlerOff, nil
	case "strict", "true":
		return StrahlerStrict, nil
	case "relaxed":
		return StrahlerRelaxed, nil
	default:
		return StrahlerOff, fmt.Errorf("%w: unknown strahler mode %q", ErrOptionViolation, s)
	}
}

// Option configures Build.
// An invalid Option is recorded and surfaced as ErrOptionViolation by Build.
type Option func(*Options)

// Options holds the classification switches.
type Options struct {
	// Kernel decides which endpoint of a single-segment reach meets its parent.
	Kernel geometry.Kernel

	// Strahler selects the Strahler rule; StrahlerOff leaves Feature.Strahler at 0.
	Strahler StrahlerMode

	// Shreve enables Shreve magnitude.
	Shreve bool

	// FailOnTooManyTributaries turns the strict-mode confluence warning into
	// ErrTooManyTributaries.
	FailOnTooManyTributaries bool

	// Log receives warnings; nil discards them.
	Log *core.Log

	err error
}

// DefaultOptions returns strict Strahler, Shreve on, the default tolerance,
// warnings discarded.
func DefaultOptions() Options {
	return Options{
		Kernel:   geometry.Kernel{Tolerance: geometry.DefaultTolerance},
		Strahler: StrahlerStrict,
		Shreve:   true,
	}
}

// WithKernel sets the geometry kernel.
func WithKernel(k geometry.Kernel) Option {
	return func(o *Options) {
		if k.Tolerance.IsNegative() {
			o.err = fmt.Errorf("%w: negative tolerance %s", ErrOptionViolation, k.Tolerance)
			return
		}
		o.Kernel = k
	}
}

// WithStrahler sets the Strahler mode.
func WithStrahler(m StrahlerMode) Option {
	return func(o *Options) {
		if m < StrahlerOff || m > StrahlerRelaxed {
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

// WithFailOnTooManyTributaries makes strict-mode confluences of more than two
// tributaries fatal.
func WithFailOnTooManyTributaries() Option {
	return func(o *Options) { o.FailOnTooManyTributaries = true }
}

// WithLog sets the warning sink.
func WithLog(l *core.Log) Option {
	return func(o *Options) { o.Log = l }
}

// Node is the transient tree node of one feature.
type Node struct {
	FeatureID int
	Flow      core.Flow
	Strahler  int
	Shreve    int
	Children  []*Node
}

// Result reports one Build.
type Result struct {
	// Roots holds one node per outlet, in mouth discovery order.
	Roots []*Node

	// Mode is the effective Strahler mode after the run; a strict run that
	// met a wide confluence ends relaxed.
	Mode StrahlerMode

	// WideConfluences counts confluences of more than two tributaries met
	// in a run that requested StrahlerStrict.
	WideConfluences int

	// Classified counts the features written.
	Classified int
}
