package mathjax

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/tex2svg/pkg/errors"
)

const (
	helperEnv     = "TEX2SVG_HELPER_DRIVER"
	helperModeEnv = "TEX2SVG_HELPER_MODE"
)

// TestHelperDriver is not a real test. The renderer tests re-execute the test
// binary with helperEnv set, and this function then plays the part of the
// node driver.
func TestHelperDriver(t *testing.T) {
	if os.Getenv(helperEnv) != "1" {
		return
	}
	runHelperDriver(os.Getenv(helperModeEnv), os.Stdin, os.Stdout)
	os.Exit(0)
}

func runHelperDriver(mode string, in io.Reader, out io.Writer) {
	send := func(resp response) {
		b, _ := json.Marshal(resp)
		fmt.Fprintf(out, "%s\n", b)
	}

	var load []string
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 1<<20), 1<<20)
	for sc.Scan() {
		var req request
		if err := json.Unmarshal(sc.Bytes(), &req); err != nil {
			send(response{Error: "bad request: " + err.Error()})
			continue
		}
		switch req.Op {
		case "init":
			switch mode {
			case "initfail":
				send(response{Error: "Cannot find module 'mathjax'"})
				continue
			case "crash":
				fmt.Fprintln(os.Stderr, "node: internal assertion failed")
				os.Exit(3)
			case "garbage":
				fmt.Fprintln(out, "this is not json")
				continue
			}
			load = req.Config.Loader.Load
			send(response{OK: true})
		case "render":
			if mode == "hang" {
				time.Sleep(time.Hour)
			}
			if strings.Contains(req.TeX, `\notarealcommand`) {
				send(response{Error: `Undefined control sequence \notarealcommand`})
				continue
			}
			if req.TeX == `\frac{a}` {
				send(response{Error: `Missing argument for \frac`})
				continue
			}
			if mode == "nosvg" {
				send(response{OK: true, Markup: `<mjx-container jax="SVG"></mjx-container>`})
				continue
			}
			send(response{OK: true, Markup: fakeMarkup(req, load)})
		default:
			send(response{Error: "unknown op " + req.Op})
		}
	}
}

// fakeMarkup produces a container with one path per input rune, which keeps
// it deterministic and lets tests see what reached the driver.
func fakeMarkup(req request, load []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<mjx-container class="MathJax" jax="SVG" display="%t">`, req.Display)
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" data-scale="%g" data-load="%s" viewBox="0 -750 1000 1000"><g>`,
		req.Scale, strings.Join(load, ","))
	for _, r := range req.TeX {
		fmt.Fprintf(&b, `<path data-c="%X" d="M0 0"></path>`, r)
	}
	b.WriteString(`</g></svg></mjx-container>`)
	return b.String()
}

func newHelperRenderer(t *testing.T, mode string) *NodeRenderer {
	t.Helper()
	r := NewNodeRenderer(os.Args[0], log.New(io.Discard))
	r.Args = []string{"-test.run=^TestHelperDriver$", "--"}
	r.Env = []string{helperEnv + "=1", helperModeEnv + "=" + mode}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestNodeRendererRender(t *testing.T) {
	ctx := context.Background()
	r := newHelperRenderer(t, "ok")

	require.NoError(t, r.Init(ctx, DefaultConfig()))

	doc, err := r.Render(ctx, "a+b=c", DefaultRenderOptions())
	require.NoError(t, err)
	assert.True(t, doc.Display())

	svg, err := doc.Serialize()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.Contains(t, svg, `data-load="input/tex,output/svg,[tex]/color,[tex]/boldsymbol"`)
	assert.Contains(t, svg, `data-scale="1"`)
	for _, c := range []string{"61", "2B", "62", "3D", "63"} {
		assert.Contains(t, svg, `data-c="`+c+`"`)
	}
}

func TestNodeRendererInlineAndScale(t *testing.T) {
	ctx := context.Background()
	r := newHelperRenderer(t, "ok")
	require.NoError(t, r.Init(ctx, DefaultConfig()))

	doc, err := r.Render(ctx, "x", RenderOptions{Scale: 2.5, Display: false})
	require.NoError(t, err)
	assert.False(t, doc.Display())

	svg, err := doc.Serialize()
	require.NoError(t, err)
	assert.Contains(t, svg, `data-scale="2.5"`)
}

func TestNodeRendererRenderErrors(t *testing.T) {
	ctx := context.Background()
	r := newHelperRenderer(t, "ok")
	require.NoError(t, r.Init(ctx, DefaultConfig()))

	tests := []struct {
		tex  string
		want string
	}{
		{`\notarealcommand{x}`, "Undefined control sequence"},
		{`\frac{a}`, "Missing argument"},
	}

	for _, tt := range tests {
		t.Run(tt.tex, func(t *testing.T) {
			_, err := r.Render(ctx, tt.tex, DefaultRenderOptions())
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeRender))
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	// The renderer stays usable after a rejected expression.
	_, err := r.Render(ctx, "y", DefaultRenderOptions())
	assert.NoError(t, err)
}

func TestNodeRendererNoSVG(t *testing.T) {
	ctx := context.Background()
	r := newHelperRenderer(t, "nosvg")
	require.NoError(t, r.Init(ctx, DefaultConfig()))

	doc, err := r.Render(ctx, "x", DefaultRenderOptions())
	require.NoError(t, err)
	_, err = doc.Serialize()
	assert.True(t, errors.Is(err, errors.ErrCodeRender))
}

func TestNodeRendererInitErrors(t *testing.T) {
	tests := []struct {
		mode string
		want string
	}{
		{"initfail", "Cannot find module"},
		{"crash", "internal assertion failed"},
		{"garbage", "malformed reply"},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			r := newHelperRenderer(t, tt.mode)
			err := r.Init(context.Background(), DefaultConfig())
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInit), "code = %v", errors.GetCode(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNodeRendererMissingCommand(t *testing.T) {
	r := NewNodeRenderer("tex2svg-no-such-node-binary", log.New(io.Discard))
	t.Cleanup(func() { _ = r.Close() })

	err := r.Init(context.Background(), DefaultConfig())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInit))
	assert.Contains(t, errors.UserMessage(err), "not found")
}

func TestNodeRendererInvalidConfig(t *testing.T) {
	r := newHelperRenderer(t, "ok")
	cfg := DefaultConfig()
	cfg.Output = "chtml"

	err := r.Init(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInit))
	assert.Nil(t, r.cmd, "no process should be started for a bad config")
}

func TestNodeRendererInitTwice(t *testing.T) {
	ctx := context.Background()
	r := newHelperRenderer(t, "ok")
	require.NoError(t, r.Init(ctx, DefaultConfig()))

	err := r.Init(ctx, DefaultConfig())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInit))
}

func TestNodeRendererRenderBeforeInit(t *testing.T) {
	r := newHelperRenderer(t, "ok")

	_, err := r.Render(context.Background(), "x", DefaultRenderOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInternal))
}

func TestNodeRendererBadScale(t *testing.T) {
	ctx := context.Background()
	r := newHelperRenderer(t, "ok")
	require.NoError(t, r.Init(ctx, DefaultConfig()))

	_, err := r.Render(ctx, "x", RenderOptions{Scale: -1, Display: true})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidOption))
}

func TestNodeRendererContextTimeout(t *testing.T) {
	r := newHelperRenderer(t, "hang")
	require.NoError(t, r.Init(context.Background(), DefaultConfig()))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := r.Render(ctx, "x", DefaultRenderOptions())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.NoError(t, r.Close())
}

func TestNodeRendererCloseIdempotent(t *testing.T) {
	r := newHelperRenderer(t, "ok")
	assert.NoError(t, r.Close(), "close before init")

	require.NoError(t, r.Init(context.Background(), DefaultConfig()))
	assert.NoError(t, r.Close())
	assert.NoError(t, r.Close())
}
