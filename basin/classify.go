package basin

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/katalvlaran/hydroflow"
	"github.com/katalvlaran/hydroflow/core"
	"github.com/katalvlaran/hydroflow/geometry"
	"github.com/katalvlaran/hydroflow/relation"
	"github.com/katalvlaran/hydroflow/sweep"
	"github.com/katalvlaran/hydroflow/tree"
)

// NotProcessed is the observation attached to unreached features.
const NotProcessed = "feature not processed"

// run carries the state of one Classify call.
type run struct {
	opts     Options
	k        geometry.Kernel
	drainage *core.FeatureSet
	boundary *core.FeatureSet

	scanner   *sweep.Scanner
	active    *sweep.ActiveOrder
	store     *relation.Store
	column    decimal.Decimal
	started   bool
	verticals []*core.Segment // vertical segments of the current column

	log    core.Log
	report *Report
}

// Classify derives flow, Strahler order and Shreve magnitude for the
// drainage features bounded by boundary. Classification fields are reset
// first, so a feature set may be classified again.
//
// The Report is always returned. The error is non-nil exactly when
// Report.Code is fatal; it wraps the matching sentinel of this package or of
// package tree.
func Classify(drainage, boundary *core.FeatureSet, opts ...Option) (*Report, error) {
	// 1. Validate input
	if drainage == nil {
		return &Report{Code: UnexpectedTopology}, ErrNilFeatureSet
	}
	if boundary == nil {
		boundary = core.NewFeatureSet(core.SetBoundary)
	}

	// 2. Apply options
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	if o.err != nil {
		return &Report{Code: UnexpectedTopology, Strahler: o.Strahler}, o.err
	}
	k, err := geometry.New(o.Tolerance)
	if err != nil {
		return &Report{Code: UnexpectedTopology, Strahler: o.Strahler}, err
	}

	r := newRun(drainage, boundary, o, k)
	drainage.Reset()

	start := time.Now()
	err = r.execute()
	r.report.Messages = r.log.Lines()
	if err != nil {
		r.report.Code = codeOf(err)
	}
	hydroflow.Logger().Info("basin: classified",
		"code", r.report.Code.String(),
		"features", drainage.Len(),
		"outlets", r.report.Outlets,
		"classified", r.report.Classified,
		"elapsed", time.Since(start))

	return r.report, err
}

func newRun(drainage, boundary *core.FeatureSet, o Options, k geometry.Kernel) *run {
	return &run{
		opts:     o,
		k:        k,
		drainage: drainage,
		boundary: boundary,
		scanner:  sweep.NewScanner(k),
		active:   sweep.NewActiveOrder(k),
		store:    relation.NewStore(),
		report:   &Report{Strahler: o.Strahler},
	}
}

// execute runs the stages in order and stops at the first fatal one.
func (r *run) execute() error {
	r.buildEvents()
	r.sweep()
	if err := r.validateTopology(); err != nil {
		return err
	}
	if err := r.buildTree(); err != nil {
		return err
	}
	r.validateCompleteness()

	return nil
}

func (r *run) buildEvents() {
	n := r.scanner.AddSegments(r.drainage.Features)
	n += r.scanner.AddSegments(r.boundary.Features)
	r.scanner.Sort()
	hydroflow.Logger().Debug("basin: events built", "events", n)
}

func (r *run) validateTopology() error {
	r.report.Relations = len(r.store.Relations())
	r.report.Outlets = len(r.store.Mouths())
	if !r.store.HasAnomalies() {
		return nil
	}
	r.report.Anomalies = r.store.ReportUnexpectedRelations(&r.log)
	hydroflow.Logger().Warn("basin: unexpected topology", "anomalies", r.report.Anomalies)

	return fmt.Errorf("%w: %d touch or cross relations", ErrUnexpectedTopology, r.report.Anomalies)
}

func (r *run) buildTree() error {
	r.store.BuildIndexes()

	if mouths := r.store.Mouths(); r.opts.SingleOutlet && len(mouths) > 1 {
		for _, m := range mouths {
			r.log.Append("outlet: feature %d at %s", m.Source.FeatureID, m.At)
		}
		r.log.Append("multiple outlets found: %d", len(mouths))
		return fmt.Errorf("%w: %d", ErrMultipleOutlets, len(mouths))
	}

	topts := []tree.Option{
		tree.WithKernel(r.k),
		tree.WithStrahler(r.opts.Strahler),
		tree.WithShreve(r.opts.Shreve),
		tree.WithLog(&r.log),
	}
	if r.opts.FailOnTooManyTributaries {
		topts = append(topts, tree.WithFailOnTooManyTributaries())
	}

	res, err := tree.Build(r.store, r.drainage, topts...)
	if res != nil {
		r.report.Strahler = res.Mode
		r.report.WideConfluences = res.WideConfluences
		r.report.Classified = res.Classified
	}

	return err
}

// validateCompleteness flags eligible features the trees never reached.
func (r *run) validateCompleteness() {
	for _, f := range r.drainage.Features {
		if !f.Eligible() || r.classified(f) {
			continue
		}
		if note, _ := r.drainage.Observation(f.ID); !strings.Contains(note, NotProcessed) {
			r.drainage.Observe(f.ID, NotProcessed)
		}
		r.log.Append("feature %d: %s", f.ID, NotProcessed)
		r.report.Unprocessed = append(r.report.Unprocessed, f.ID)
	}

	if len(r.report.Unprocessed) > 0 {
		r.report.Code = CompletedWithWarnings
		hydroflow.Logger().Warn("basin: features not processed", "count", len(r.report.Unprocessed))
		return
	}
	r.report.Code = Success
}

func (r *run) classified(f *core.Feature) bool {
	if f.Flow == core.FlowUnset {
		return false
	}
	if r.opts.Strahler != tree.StrahlerOff && f.Strahler == 0 {
		return false
	}
	if r.opts.Shreve && f.Shreve == 0 {
		return false
	}
	return true
}
