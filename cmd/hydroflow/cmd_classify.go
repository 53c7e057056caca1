package main

import (
	"context"
	"fmt"
	"os"

	"github.com/katalvlaran/hydroflow/config"
)

type CmdClassify struct {
	global *GlobalOptions

	Config       string `short:"c" long:"config" description:"TOML or YAML run file; flags override it"`
	Drainage     string `short:"d" long:"drainage" description:"Drainage layer (.shp, .geojson)"`
	Boundary     string `short:"b" long:"boundary" description:"Watershed boundary layer"`
	Output       string `short:"o" long:"output" description:"Classified drainage layer"`
	Format       string `long:"format" description:"Input format: auto, shapefile or geojson"`
	Tolerance    string `short:"t" long:"tolerance" description:"Fuzz radius of geometric comparisons"`
	Strahler     string `long:"strahler" description:"off, strict or relaxed"`
	NoShreve     bool   `long:"no-shreve" description:"Skip Shreve magnitude"`
	SingleOutlet bool   `long:"single-outlet" description:"Fail when the network has more than one outlet"`
	FailOnWide   bool   `long:"fail-on-wide-confluence" description:"Fail on confluences of more than two tributaries"`
}

func init() {
	_, err := parser.AddCommand("classify",
		"Classify one drainage network",
		"Orient every reach downstream and compute Strahler order and Shreve magnitude",
		&CmdClassify{global: &globalOpts})
	if err != nil {
		panic(err)
	}
}

// params loads the run file, if any, and applies the flags over it.
func (cmd *CmdClassify) params() (*config.Params, error) {
	p := config.Default()
	if cmd.Config != "" {
		loaded, err := config.Load(cmd.Config)
		if err != nil {
			return nil, err
		}
		p = *loaded
	}

	for dst, src := range map[*string]string{
		&p.Input.Drainage: cmd.Drainage,
		&p.Input.Boundary: cmd.Boundary,
		&p.Output.Path:    cmd.Output,
		&p.Input.Format:   cmd.Format,
		&p.Tolerance:      cmd.Tolerance,
		&p.Strahler:       cmd.Strahler,
	} {
		if src != "" {
			*dst = src
		}
	}
	if cmd.NoShreve {
		p.Shreve = false
	}
	p.SingleOutlet = p.SingleOutlet || cmd.SingleOutlet
	p.FailOnTooManyTributaries = p.FailOnTooManyTributaries || cmd.FailOnWide

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (cmd CmdClassify) Execute(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	p, err := cmd.params()
	if err != nil {
		return err
	}
	if err := cmd.global.setupLogging(p.Log); err != nil {
		return err
	}

	j := newJob(p)
	if err := j.run(context.Background()); err != nil {
		return err
	}
	j.print(os.Stdout)

	if j.report.Code.Fatal() {
		return fmt.Errorf("classification failed: %s", j.report.Code)
	}
	return nil
}
