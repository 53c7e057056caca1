// Command hydroflow classifies drainage networks: it orients every stream
// reach downstream and computes Strahler order and Shreve magnitude.
//
// Usage:
//
//	hydroflow classify -d streams.shp -b watershed.shp -o classified.geojson
//	hydroflow classify -c run.toml
//	hydroflow batch -j 4 a.toml b.yaml c.toml
package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/katalvlaran/hydroflow"
	"github.com/katalvlaran/hydroflow/config"
)

// GlobalOptions apply to every command.
type GlobalOptions struct {
	LogLevel   string `long:"log-level" description:"debug, info, warn or error (default info)"`
	Logfile    string `long:"logfile" description:"Write the log to a rotating file instead of stderr"`
	MaxLogSize int    `long:"max-log-size" default:"10" description:"Rotate the log file after this many megabytes"`
	MaxLogAge  int    `long:"max-log-age" default:"30" description:"Delete rotated log files after this many days"`
}

var globalOpts = GlobalOptions{}
var parser = flags.NewParser(&globalOpts, flags.HelpFlag|flags.PassDoubleDash)

// logConfig merges the global flags over the log section of a config file.
func (g *GlobalOptions) logConfig(file config.LogConfig) config.LogConfig {
	c := file
	if g.Logfile != "" {
		c.Logfile = g.Logfile
		c.MaxSize = g.MaxLogSize
		c.MaxAge = g.MaxLogAge
	}
	if g.LogLevel != "" {
		c.Level = g.LogLevel
	}

	return c
}

// setupLogging installs the process logger.
func (g *GlobalOptions) setupLogging(file config.LogConfig) error {
	l, err := g.logConfig(file).NewLogger(os.Stderr)
	if err != nil {
		return err
	}
	hydroflow.SetLogger(l)

	return nil
}

func run() error {
	_, err := parser.Parse()
	if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
		parser.WriteHelp(os.Stdout)
		return nil
	}
	return err
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
