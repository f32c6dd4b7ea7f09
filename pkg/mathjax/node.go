package mathjax

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tex2svg/pkg/errors"
)

// DefaultCommand is the Node.js executable looked up on PATH.
const DefaultCommand = "node"

// closeTimeout bounds how long Close waits for the child to exit after its
// stdin is closed before killing it.
const closeTimeout = 5 * time.Second

//go:embed driver.js
var driverScript string

// NodeRenderer runs MathJax inside a Node.js child process.
// The mathjax npm package must be resolvable by node, either from the
// working directory's node_modules or from ModulePath.
//
// A NodeRenderer serves a single conversion; it is not safe for concurrent
// use.
type NodeRenderer struct {
	// Command is the node executable. Defaults to DefaultCommand.
	Command string
	// Args are passed to Command before the driver script.
	Args []string
	// ModulePath, if set, is exported to the child as NODE_PATH.
	ModulePath string
	// Env is appended to the inherited environment of the child.
	Env []string
	// Logger receives debug output. Defaults to log.Default().
	Logger *log.Logger

	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  *bufio.Reader
	stderr  syncBuffer
	ready   bool
	waitErr error
	waited  chan struct{}
}

// NewNodeRenderer creates a renderer that runs command (DefaultCommand if
// empty).
func NewNodeRenderer(command string, logger *log.Logger) *NodeRenderer {
	if command == "" {
		command = DefaultCommand
	}
	if logger == nil {
		logger = log.Default()
	}
	return &NodeRenderer{Command: command, Logger: logger}
}

// request is one line sent to the driver.
type request struct {
	Op      string        `json:"op"`
	Config  *driverConfig `json:"config,omitempty"`
	TeX     string        `json:"tex,omitempty"`
	Scale   float64       `json:"scale,omitempty"`
	Display bool          `json:"display"`
}

// response is one line received from the driver.
type response struct {
	OK     bool   `json:"ok"`
	Markup string `json:"markup,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Init starts the child process and configures MathJax.
// Every failure, including a missing node binary, a missing mathjax package
// or a rejected configuration, is returned as an INIT_FAILED error.
func (r *NodeRenderer) Init(ctx context.Context, cfg Config) error {
	if r.cmd != nil {
		return errors.New(errors.ErrCodeInit, "renderer already initialized")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := r.start(); err != nil {
		return err
	}

	dc := cfg.driverConfig()
	r.logger().Debug("configuring mathjax", "load", dc.Loader.Load, "strict", dc.Strict)

	resp, err := r.roundTrip(ctx, request{Op: "init", Config: &dc})
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		return errors.Wrap(errors.ErrCodeInit, err, "start mathjax")
	}
	if !resp.OK {
		return errors.Wrap(errors.ErrCodeInit, fmt.Errorf("%s", resp.Error), "mathjax initialization")
	}
	r.ready = true
	return nil
}

// Render typesets tex and returns the parsed result.
// TeX errors reported by MathJax and unusable output are RENDER_FAILED.
func (r *NodeRenderer) Render(ctx context.Context, tex string, opts RenderOptions) (*Document, error) {
	if !r.ready {
		return nil, errors.New(errors.ErrCodeInternal, "render called before successful init")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	resp, err := r.roundTrip(ctx, request{Op: "render", TeX: tex, Scale: opts.Scale, Display: opts.Display})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeRender, err, "mathjax")
	}
	if !resp.OK {
		return nil, errors.Wrap(errors.ErrCodeRender, fmt.Errorf("%s", resp.Error), "mathjax")
	}
	return ParseDocument(resp.Markup)
}

// Close shuts the child down and waits for it to exit.
func (r *NodeRenderer) Close() error {
	if r.cmd == nil {
		return nil
	}
	_ = r.stdin.Close()

	select {
	case <-r.waited:
	case <-time.After(closeTimeout):
		r.logger().Debug("renderer did not exit, killing", "pid", r.cmd.Process.Pid)
		_ = r.cmd.Process.Kill()
		<-r.waited
	}
	r.ready = false
	return nil
}

// Stderr returns what the child has written to its stderr so far.
func (r *NodeRenderer) Stderr() string {
	return r.stderr.String()
}

func (r *NodeRenderer) start() error {
	path, err := exec.LookPath(r.Command)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInit, err, "%s not found; tex2svg needs Node.js with the mathjax package installed (npm install mathjax@3)", r.Command)
	}

	args := append(append([]string{}, r.Args...), "-e", driverScript)
	cmd := exec.Command(path, args...)
	cmd.Env = append(os.Environ(), r.Env...)
	if r.ModulePath != "" {
		cmd.Env = append(cmd.Env, "NODE_PATH="+r.ModulePath)
	}
	cmd.Stderr = &r.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInit, err, "renderer stdin")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInit, err, "renderer stdout")
	}

	r.logger().Debug("starting renderer", "cmd", path, "node_path", r.ModulePath)
	if err := cmd.Start(); err != nil {
		return errors.Wrap(errors.ErrCodeInit, err, "start %s", path)
	}

	r.cmd = cmd
	r.stdin = stdin
	r.stdout = bufio.NewReader(stdout)
	r.waited = make(chan struct{})
	go func() {
		// A reply still unread when the child dies is dropped; that only
		// happens on a crash, and exitError reports stderr instead.
		r.waitErr = cmd.Wait()
		close(r.waited)
	}()
	return nil
}

// roundTrip sends req and waits for one response line.
// If ctx ends first the child is killed and ctx.Err() is returned.
func (r *NodeRenderer) roundTrip(ctx context.Context, req request) (response, error) {
	line, err := json.Marshal(req)
	if err != nil {
		return response{}, err
	}

	type result struct {
		line []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		if _, err := r.stdin.Write(append(line, '\n')); err != nil {
			ch <- result{err: err}
			return
		}
		b, err := r.stdout.ReadBytes('\n')
		ch <- result{line: b, err: err}
	}()

	select {
	case <-ctx.Done():
		_ = r.cmd.Process.Kill()
		return response{}, ctx.Err()
	case res := <-ch:
		if res.err != nil {
			return response{}, r.exitError(res.err)
		}
		var resp response
		if err := json.Unmarshal(res.line, &resp); err != nil {
			return response{}, fmt.Errorf("malformed reply %q: %w", truncate(string(res.line), 120), err)
		}
		return resp, nil
	}
}

// exitError describes a broken pipe to the child, including its exit status
// and stderr once it has exited.
func (r *NodeRenderer) exitError(err error) error {
	select {
	case <-r.waited:
	case <-time.After(closeTimeout):
		return fmt.Errorf("renderer stopped responding: %w", err)
	}
	msg := strings.TrimSpace(r.stderr.String())
	if r.waitErr != nil {
		err = r.waitErr
	}
	if msg != "" {
		return fmt.Errorf("renderer exited: %w: %s", err, truncate(msg, 500))
	}
	return fmt.Errorf("renderer exited: %w", err)
}

func (r *NodeRenderer) logger() *log.Logger {
	if r.Logger == nil {
		return log.Default()
	}
	return r.Logger
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

// syncBuffer is a bytes.Buffer safe for the exec copy goroutine to write
// while the renderer reads it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
