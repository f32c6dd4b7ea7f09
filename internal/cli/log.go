package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tex2svg/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Prefix:          appName,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Rendered SVG (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// cliHooks reports pipeline events as debug logs and drives the optional
// spinner, which runs from renderer start-up until the render finishes.
type cliHooks struct {
	logger  *log.Logger
	spinner *Spinner
}

var _ observability.PipelineHooks = (*cliHooks)(nil)

func newCLIHooks(l *log.Logger, s *Spinner) *cliHooks {
	return &cliHooks{logger: l, spinner: s}
}

func (h *cliHooks) OnReadComplete(_ context.Context, n int, d time.Duration, err error) {
	h.logger.Debug("stdin drained", "bytes", n, "duration", d, "err", err)
}

func (h *cliHooks) OnInitStart(context.Context) {
	h.logger.Debug("starting mathjax")
	if h.spinner != nil {
		h.spinner.Start()
	}
}

func (h *cliHooks) OnInitComplete(_ context.Context, d time.Duration, err error) {
	h.logger.Debug("mathjax initialized", "duration", d, "err", err)
	if err != nil && h.spinner != nil {
		h.spinner.Stop()
	}
}

func (h *cliHooks) OnRenderStart(_ context.Context, n int, display bool) {
	h.logger.Debug("rendering", "bytes", n, "display", display)
}

func (h *cliHooks) OnRenderComplete(_ context.Context, n int, d time.Duration, err error) {
	h.logger.Debug("render finished", "bytes", n, "duration", d, "err", err)
	if h.spinner != nil {
		h.spinner.Stop()
	}
}

func (h *cliHooks) OnEmit(_ context.Context, n int, err error) {
	h.logger.Debug("svg written", "bytes", n, "err", err)
}
