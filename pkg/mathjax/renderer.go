// Package mathjax adapts the MathJax typesetting library for use from Go.
//
// MathJax is treated as an opaque capability behind the [Renderer]
// interface: it is initialized once with a [Config], asked to convert TeX
// with [RenderOptions], and hands back a [Document] whose <svg> element is
// extracted with [Document.Serialize]. The TeX parser, layout engine and SVG
// generator all live inside MathJax.
//
// [NodeRenderer] runs MathJax in a Node.js child process and talks to it over
// newline-delimited JSON on the child's stdin and stdout:
//
//	→ {"op":"init","config":{...}}
//	← {"ok":true}
//	→ {"op":"render","tex":"a+b=c","scale":1,"display":true}
//	← {"ok":true,"markup":"<mjx-container ...><svg ...>...</svg></mjx-container>"}
//
// Failures come back as {"ok":false,"error":"..."}. Errors during Init carry
// the INIT_FAILED code, errors during Render carry RENDER_FAILED.
package mathjax

import "context"

// Renderer is a TeX-to-SVG typesetting engine.
//
// Init must succeed exactly once before Render is called. Close releases
// whatever the renderer holds and is safe to call on an uninitialized or
// failed renderer.
type Renderer interface {
	Init(ctx context.Context, cfg Config) error
	Render(ctx context.Context, tex string, opts RenderOptions) (*Document, error)
	Close() error
}
