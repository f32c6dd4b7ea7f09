// Package cli implements the tex2svg command-line interface.
//
// The root command reads a LaTeX expression from stdin, renders it with
// MathJax, and writes the SVG to stdout. Nothing but the SVG is ever written
// to stdout; logs and the failure diagnostic go to stderr. The CLI is built
// using cobra and logs via the charmbracelet/log library.
//
// # Logging
//
// Only warnings and errors are logged by default so the tool stays quiet in
// pipelines. --verbose (-v) enables debug output for every pipeline stage.
// Loggers are passed through context.Context.
//
// # Example
//
//	echo '\frac{a}{b} = c' | tex2svg > fraction.svg
package cli

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tex2svg/pkg/mathjax"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "tex2svg"

	// defaultScale is the presentation scale factor (MathJax's own default).
	defaultScale = 1.0
)

// Log levels exported for use in main.go.
const (
	LogDebug   = log.DebugLevel
	LogDefault = log.WarnLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// rendererFactory builds the renderer for one conversion.
type rendererFactory func(opts *convertOpts, logger *log.Logger) mathjax.Renderer

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	newRenderer rendererFactory
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:      newLogger(w, level),
		newRenderer: newNodeRenderer,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// newNodeRenderer is the production renderer: MathJax under Node.js.
func newNodeRenderer(opts *convertOpts, logger *log.Logger) mathjax.Renderer {
	r := mathjax.NewNodeRenderer(opts.node, logger)
	r.ModulePath = opts.nodePath
	return r
}
