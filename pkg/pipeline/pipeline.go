// Package pipeline provides the read → render → emit pipeline of tex2svg.
//
// A conversion is a single linear run through these stages:
//
//  1. Read: drain the input stream into one string
//  2. Initialize: configure the renderer (exactly once)
//  3. Render: typeset the expression and extract the <svg> element
//  4. Emit: write the SVG and a trailing newline
//
// Empty input stops the run before the renderer is touched. Every failure
// ends the run; nothing is retried and nothing is written to the output
// unless rendering succeeded.
//
// # Usage
//
//	runner := pipeline.NewRunner(mathjax.NewNodeRenderer("", logger), logger)
//	result, err := runner.Execute(ctx, os.Stdin, os.Stdout, pipeline.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
package pipeline

import (
	"time"

	"github.com/matzehuels/tex2svg/pkg/mathjax"
)

// Stage identifies a step of the conversion.
type Stage int

const (
	StageReading Stage = iota
	StageInitializing
	StageRendering
	StageEmitting
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageReading:
		return "reading"
	case StageInitializing:
		return "initializing"
	case StageRendering:
		return "rendering"
	case StageEmitting:
		return "emitting"
	case StageDone:
		return "done"
	}
	return "unknown"
}

// Options contains the configuration for one conversion.
type Options struct {
	// Config configures the renderer.
	Config mathjax.Config
	// Scale is the presentation scale factor. Zero means 1.
	Scale float64
	// Inline renders input that is not wrapped in delimiters in inline
	// mode. Delimited input always uses the mode of its delimiters.
	Inline bool

	// defaulted tracks whether SetDefaults has been called.
	defaulted bool
}

// SetDefaults fills a zero Config and a zero Scale with the package
// defaults. Inline is left as given. It is idempotent.
func (o *Options) SetDefaults() {
	if o.defaulted {
		return
	}
	if o.Config.Input == "" && o.Config.Output == "" {
		o.Config = mathjax.DefaultConfig()
	}
	if o.Scale == 0 {
		o.Scale = mathjax.DefaultRenderOptions().Scale
	}
	o.defaulted = true
}

// Validate checks the render options. The renderer configuration is
// validated by the renderer itself during initialization.
func (o *Options) Validate() error {
	return o.renderOptions(!o.Inline).Validate()
}

// renderOptions returns the per-render options for the given mode.
func (o *Options) renderOptions(display bool) mathjax.RenderOptions {
	return mathjax.RenderOptions{Scale: o.Scale, Display: display}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// SVG is the emitted markup, without the trailing newline.
	SVG string

	// Display reports the mode the expression was rendered in.
	Display bool

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	InputBytes  int
	OutputBytes int
	ReadTime    time.Duration
	InitTime    time.Duration
	RenderTime  time.Duration
}
