package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/hydroflow/config"
)

type CmdBatch struct {
	global *GlobalOptions

	Jobs int `short:"j" long:"jobs" default:"4" description:"Number of runs classified at once"`
}

func init() {
	_, err := parser.AddCommand("batch",
		"Classify several networks",
		"Run every TOML or YAML run file given as argument, several at once. "+
			"Log settings come from the global flags, not from the run files.",
		&CmdBatch{global: &globalOpts})
	if err != nil {
		panic(err)
	}
}

func (cmd CmdBatch) Usage() string {
	return "run-file..."
}

func (cmd CmdBatch) Execute(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no run files, Usage: %s", cmd.Usage())
	}
	if err := cmd.global.setupLogging(config.LogConfig{}); err != nil {
		return err
	}

	// 1. Load every run file before starting any work
	jobs := make([]*job, len(args))
	for i, path := range args {
		p, err := config.Load(path)
		if err != nil {
			return err
		}
		jobs[i] = newJob(p)
	}

	// 2. Classify, at most cmd.Jobs at a time
	g, ctx := errgroup.WithContext(context.Background())
	if cmd.Jobs > 0 {
		g.SetLimit(cmd.Jobs)
	}
	for _, j := range jobs {
		j := j
		g.Go(func() error { return j.run(ctx) })
	}
	err := g.Wait()

	// 3. Report in argument order
	failed := 0
	for i, j := range jobs {
		if j.report == nil {
			continue
		}
		fmt.Fprintf(os.Stdout, "== %s\n", args[i])
		j.print(os.Stdout)
		if j.report.Code.Fatal() {
			failed++
		}
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%s of %s runs succeeded\n",
		humanize.Comma(int64(len(jobs)-failed)), humanize.Comma(int64(len(jobs))))
	if failed > 0 {
		return fmt.Errorf("%d runs failed", failed)
	}

	return nil
}
