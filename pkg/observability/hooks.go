// Package observability provides hooks for instrumenting a conversion.
//
// Libraries call the registered hooks at each step of the pipeline; the
// default implementation does nothing. Consumers register their own
// implementation once at startup, before any conversion runs.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnRenderStart(ctx, len(tex), display)
//	// ... render ...
//	observability.Pipeline().OnRenderComplete(ctx, len(svg), duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the conversion pipeline.
type PipelineHooks interface {
	// OnReadComplete fires once standard input is drained (or failed).
	OnReadComplete(ctx context.Context, bytes int, duration time.Duration, err error)

	// Renderer initialization events
	OnInitStart(ctx context.Context)
	OnInitComplete(ctx context.Context, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, inputBytes int, display bool)
	OnRenderComplete(ctx context.Context, outputBytes int, duration time.Duration, err error)

	// OnEmit fires after the SVG was written (or the write failed).
	OnEmit(ctx context.Context, bytes int, err error)
}

// =============================================================================
// No-op Implementation
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnReadComplete(context.Context, int, time.Duration, error)   {}
func (NoopPipelineHooks) OnInitStart(context.Context)                                 {}
func (NoopPipelineHooks) OnInitComplete(context.Context, time.Duration, error)        {}
func (NoopPipelineHooks) OnRenderStart(context.Context, int, bool)                    {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, int, time.Duration, error) {}
func (NoopPipelineHooks) OnEmit(context.Context, int, error)                          {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Reset restores the hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
}
