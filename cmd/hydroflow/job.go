package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/katalvlaran/hydroflow"
	"github.com/katalvlaran/hydroflow/basin"
	"github.com/katalvlaran/hydroflow/config"
	"github.com/katalvlaran/hydroflow/core"
	"github.com/katalvlaran/hydroflow/loader"
)

// job is one classification run with its outcome.
type job struct {
	id     string
	params *config.Params

	report  *basin.Report
	written int64
	elapsed time.Duration
}

func newJob(p *config.Params) *job {
	return &job{id: uuid.NewString(), params: p}
}

// run reads the layers, classifies and exports. Only I/O and configuration
// failures are returned; a fatal classification is reported in j.report.
func (j *job) run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := j.params
	if p.Input.Drainage == "" {
		return fmt.Errorf("run %s: no drainage layer configured", j.id)
	}
	log := hydroflow.Logger().With("run", j.id)
	start := time.Now()

	// 1. Inputs
	tol, err := p.Tol()
	if err != nil {
		return err
	}
	format, err := loader.ParseFormat(p.Input.Format)
	if err != nil {
		return fmt.Errorf("run %s: input: %w", j.id, err)
	}
	drainage, err := loader.Read(p.Input.Drainage, format, core.SetDrainage, tol)
	if err != nil {
		return err
	}
	var boundary *core.FeatureSet
	if p.Input.Boundary != "" {
		if boundary, err = loader.Read(p.Input.Boundary, format, core.SetBoundary, tol); err != nil {
			return err
		}
	}

	// 2. Classification
	opts, err := p.Options()
	if err != nil {
		return err
	}
	log.Info("hydroflow: run started",
		"tolerance", tol.String(),
		"drainage", p.Input.Drainage,
		"boundary", p.Input.Boundary,
		"features", drainage.Len(),
		"strahler", p.Strahler,
		"shreve", p.Shreve)
	if j.report, err = basin.Classify(drainage, boundary, opts...); err != nil {
		log.Warn("hydroflow: classification failed", "code", j.report.Code.String(), "err", err)
	}

	// 3. Output
	if p.Output.Path != "" && !j.report.Code.Fatal() {
		out, err := loader.ParseFormat(p.Output.Format)
		if err != nil {
			return fmt.Errorf("run %s: output: %w", j.id, err)
		}
		if err := loader.Write(p.Output.Path, out, drainage, p.Fields()); err != nil {
			return err
		}
		if fi, err := os.Stat(p.Output.Path); err == nil {
			j.written = fi.Size()
		}
	}
	j.elapsed = time.Since(start)

	log.Info("hydroflow: run finished",
		"code", j.report.Code.String(),
		"classified", j.report.Classified,
		"elapsed", j.elapsed)

	return nil
}

// header returns the lines that open the diagnostics of a run.
func (j *job) header() []string {
	p := j.params
	lines := []string{
		fmt.Sprintf("run: %s", j.id),
		fmt.Sprintf("tolerance: %s", p.Tolerance),
		fmt.Sprintf("drainage: %s", p.Input.Drainage),
	}
	if p.Input.Boundary != "" {
		lines = append(lines, fmt.Sprintf("boundary: %s", p.Input.Boundary))
	}
	if j.report != nil {
		lines = append(lines, fmt.Sprintf("strahler: %s", j.report.Strahler))
	}
	lines = append(lines, fmt.Sprintf("shreve: %t", p.Shreve))

	return lines
}

// print writes the header, the diagnostics and a one-line summary.
func (j *job) print(w io.Writer) {
	for _, l := range j.header() {
		fmt.Fprintln(w, l)
	}
	if j.report == nil {
		return
	}
	for _, m := range j.report.Messages {
		fmt.Fprintln(w, m)
	}

	r := j.report
	fmt.Fprintf(w, "result: %s (%s events, %s relations, %s outlets, %s features classified",
		r.Code,
		humanize.Comma(int64(r.Events)),
		humanize.Comma(int64(r.Relations)),
		humanize.Comma(int64(r.Outlets)),
		humanize.Comma(int64(r.Classified)))
	if n := len(r.Unprocessed); n > 0 {
		fmt.Fprintf(w, ", %s not processed", humanize.Comma(int64(n)))
	}
	fmt.Fprintln(w, ")")
	if j.written > 0 {
		fmt.Fprintf(w, "wrote %s to %s in %s\n", humanize.Bytes(uint64(j.written)), j.params.Output.Path, j.elapsed.Round(time.Millisecond))
	}
}
