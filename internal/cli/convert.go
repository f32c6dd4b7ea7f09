package cli

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tex2svg/pkg/errors"
	"github.com/matzehuels/tex2svg/pkg/mathjax"
	"github.com/matzehuels/tex2svg/pkg/observability"
	"github.com/matzehuels/tex2svg/pkg/pipeline"
)

// convertOpts holds the command-line flags of the conversion.
type convertOpts struct {
	scale    float64  // presentation scale factor
	inline   bool     // render bare input in inline mode
	packages []string // extra TeX packages
	node     string   // node executable
	nodePath string   // module directory exported as NODE_PATH
	lenient  bool     // typeset TeX errors instead of failing
	progress bool     // show a spinner on a terminal stderr
}

func (o *convertOpts) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&o.scale, "scale", o.scale, "presentation scale factor")
	cmd.Flags().BoolVar(&o.inline, "inline", false, "render bare input in inline (text) mode instead of display mode")
	cmd.Flags().StringSliceVarP(&o.packages, "package", "p", nil, "additional TeX package(s) to enable (repeatable, comma-separated)")
	cmd.Flags().StringVar(&o.node, "node", mathjax.DefaultCommand, "Node.js executable")
	cmd.Flags().StringVar(&o.nodePath, "node-path", "", "directory containing the mathjax npm package")
	cmd.Flags().BoolVar(&o.lenient, "lenient", false, "typeset TeX errors in the SVG instead of failing")
	cmd.Flags().BoolVar(&o.progress, "progress", false, "show a spinner on stderr while MathJax works (terminals only)")
}

// validate checks flag values before any input is read.
func (o *convertOpts) validate() error {
	if err := errors.ValidateScale(o.scale); err != nil {
		return err
	}
	for _, p := range o.packages {
		if err := errors.ValidatePackageName(p); err != nil {
			return err
		}
	}
	return nil
}

// pipelineOptions translates the flags into pipeline options.
func (o *convertOpts) pipelineOptions() pipeline.Options {
	cfg := mathjax.DefaultConfig().WithPackages(o.packages...)
	cfg.Strict = !o.lenient
	return pipeline.Options{
		Config: cfg,
		Scale:  o.scale,
		Inline: o.inline,
	}
}

// runConvert executes the read → render → emit pipeline on the command's
// stdin and stdout.
func (c *CLI) runConvert(cmd *cobra.Command, opts *convertOpts) error {
	if err := opts.validate(); err != nil {
		return err
	}
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	var spin *Spinner
	if opts.progress && isTerminal(cmd.ErrOrStderr()) {
		spin = newSpinnerWithContext(ctx, cmd.ErrOrStderr(), "Typesetting with MathJax…")
	}
	observability.SetPipelineHooks(newCLIHooks(logger, spin))
	defer observability.Reset()

	prog := newProgress(logger)
	renderer := c.newRenderer(opts, logger)
	runner := pipeline.NewRunner(renderer, logger)
	result, err := runner.Execute(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), opts.pipelineOptions())
	if spin != nil {
		spin.Stop()
		if spin.Cancelled() {
			logger.Debug("interrupted while typesetting")
		}
	}
	if err != nil {
		logRendererStderr(logger, renderer)
		return err
	}

	prog.done("Rendered SVG")
	logger.Debug("conversion stats",
		"input_bytes", result.Stats.InputBytes,
		"output_bytes", result.Stats.OutputBytes,
		"init", result.Stats.InitTime,
		"render", result.Stats.RenderTime)
	return nil
}

// stderrReporter is implemented by renderers that capture the diagnostic
// output of a child process.
type stderrReporter interface {
	Stderr() string
}

var _ stderrReporter = (*mathjax.NodeRenderer)(nil)

// logRendererStderr logs the renderer's captured stderr at debug level.
func logRendererStderr(logger *log.Logger, r mathjax.Renderer) {
	sr, ok := r.(stderrReporter)
	if !ok {
		return
	}
	if s := strings.TrimSpace(sr.Stderr()); s != "" {
		logger.Debug("renderer stderr", "output", s)
	}
}

// isTerminal reports whether w is a terminal file.
func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
