package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tex2svg/pkg/errors"
	"github.com/matzehuels/tex2svg/pkg/input"
	"github.com/matzehuels/tex2svg/pkg/mathjax"
	"github.com/matzehuels/tex2svg/pkg/observability"
)

// Runner executes conversions with a renderer.
//
// A Runner owns its renderer for the duration of Execute and closes it
// before returning, so each Runner performs one conversion.
type Runner struct {
	Renderer mathjax.Renderer
	Logger   *log.Logger
}

// NewRunner creates a runner for the given renderer.
// If logger is nil, log.Default() is used.
func NewRunner(r mathjax.Renderer, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Renderer: r, Logger: logger}
}

// Execute reads a LaTeX expression from in, renders it, and writes the SVG
// followed by a newline to out.
//
// out is written at most once, and only after rendering succeeded. Errors
// carry the codes from package errors: EMPTY_INPUT when in holds only
// whitespace, INIT_FAILED and RENDER_FAILED from the renderer, OUTPUT_FAILED
// when the write fails. Context cancellation is returned unchanged.
func (r *Runner) Execute(ctx context.Context, in io.Reader, out io.Writer, opts Options) (*Result, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	result := &Result{}

	// Stage 1: Read
	r.stage(StageReading)
	readStart := time.Now()
	text, err := input.Collect(ctx, in)
	result.Stats.ReadTime = time.Since(readStart)
	result.Stats.InputBytes = len(text)
	hooks.OnReadComplete(ctx, len(text), result.Stats.ReadTime, err)
	if err != nil {
		return nil, err
	}
	if input.IsBlank(text) {
		return nil, errors.New(errors.ErrCodeEmptyInput, "no LaTeX input provided on stdin")
	}

	tex, display := text, !opts.Inline
	if body, isDisplay, ok := opts.Config.Unwrap(text); ok {
		if input.IsBlank(body) {
			return nil, errors.New(errors.ErrCodeEmptyInput, "math delimiters enclose no LaTeX")
		}
		tex, display = body, isDisplay
		r.Logger.Debug("stripped math delimiters", "display", display)
	}
	r.Logger.Debug("read input", "bytes", result.Stats.InputBytes, "duration", result.Stats.ReadTime)

	defer func() {
		if cerr := r.Renderer.Close(); cerr != nil {
			r.Logger.Warn("closing renderer", "err", cerr)
		}
	}()

	// Stage 2: Initialize
	r.stage(StageInitializing)
	hooks.OnInitStart(ctx)
	initStart := time.Now()
	err = r.Renderer.Init(ctx, opts.Config)
	result.Stats.InitTime = time.Since(initStart)
	hooks.OnInitComplete(ctx, result.Stats.InitTime, err)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("renderer ready", "duration", result.Stats.InitTime)

	// Stage 3: Render
	r.stage(StageRendering)
	hooks.OnRenderStart(ctx, len(tex), display)
	renderStart := time.Now()
	svg, err := r.render(ctx, tex, opts.renderOptions(display))
	result.Stats.RenderTime = time.Since(renderStart)
	hooks.OnRenderComplete(ctx, len(svg), result.Stats.RenderTime, err)
	if err != nil {
		return nil, err
	}
	result.SVG = svg
	result.Display = display
	r.Logger.Debug("rendered", "bytes", len(svg), "display", display, "duration", result.Stats.RenderTime)

	// Stage 4: Emit
	r.stage(StageEmitting)
	n, err := io.WriteString(out, svg+"\n")
	result.Stats.OutputBytes = n
	hooks.OnEmit(ctx, n, err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeOutput, err, "write svg")
	}

	r.stage(StageDone)
	return result, nil
}

// render runs the renderer and extracts the serialized <svg> element.
func (r *Runner) render(ctx context.Context, tex string, opts mathjax.RenderOptions) (string, error) {
	doc, err := r.Renderer.Render(ctx, tex, opts)
	if err != nil {
		return "", err
	}
	return doc.Serialize()
}

func (r *Runner) stage(s Stage) {
	r.Logger.Debug("stage", "stage", s)
}
