package mathjax

import (
	"sort"
	"strings"

	"github.com/matzehuels/tex2svg/pkg/errors"
)

// Supported input and output jax.
const (
	InputTeX  = "tex"
	OutputSVG = "svg"
)

// builtinPackages are compiled into MathJax's input/tex component and need
// no extra loader entry.
var builtinPackages = map[string]bool{
	"base":         true,
	"ams":          true,
	"newcommand":   true,
	"noundefined":  true,
	"require":      true,
	"autoload":     true,
	"configmacros": true,
}

// Delimiter is a pair of marker strings surrounding math content.
type Delimiter struct {
	Open  string
	Close string
}

// Config describes how the renderer is set up: which input it accepts,
// which output it produces, how math regions are delimited, and which TeX
// extension packages are enabled.
type Config struct {
	Input       string
	Output      string
	InlineMath  []Delimiter
	DisplayMath []Delimiter
	Packages    []string

	// Strict makes TeX errors fail the render instead of being typeset as
	// red error text. It also disables the noundefined package so unknown
	// macros are errors.
	Strict bool
}

// DefaultConfig returns the configuration used by the command line tool.
func DefaultConfig() Config {
	return Config{
		Input:  InputTeX,
		Output: OutputSVG,
		InlineMath: []Delimiter{
			{Open: `$`, Close: `$`},
			{Open: `\(`, Close: `\)`},
		},
		DisplayMath: []Delimiter{
			{Open: `$$`, Close: `$$`},
			{Open: `\[`, Close: `\]`},
		},
		Packages: []string{"base", "ams", "color", "boldsymbol", "newcommand"},
		Strict:   true,
	}
}

// Validate reports a malformed configuration as an initialization error.
func (c Config) Validate() error {
	if c.Input != InputTeX {
		return errors.New(errors.ErrCodeInit, "unsupported input format %q (only %q)", c.Input, InputTeX)
	}
	if c.Output != OutputSVG {
		return errors.New(errors.ErrCodeInit, "unsupported output format %q (only %q)", c.Output, OutputSVG)
	}
	for _, d := range append(append([]Delimiter{}, c.InlineMath...), c.DisplayMath...) {
		if d.Open == "" || d.Close == "" {
			return errors.New(errors.ErrCodeInit, "delimiter pair %q…%q has an empty side", d.Open, d.Close)
		}
	}
	for _, p := range c.Packages {
		if err := errors.ValidatePackageName(p); err != nil {
			return errors.Wrap(errors.ErrCodeInit, err, "invalid package")
		}
	}
	return nil
}

// WithPackages returns a copy of c with extra packages appended, skipping
// names that are already enabled.
func (c Config) WithPackages(extra ...string) Config {
	seen := make(map[string]bool, len(c.Packages))
	pkgs := make([]string, 0, len(c.Packages)+len(extra))
	for _, p := range append(append([]string{}, c.Packages...), extra...) {
		if seen[p] {
			continue
		}
		seen[p] = true
		pkgs = append(pkgs, p)
	}
	c.Packages = pkgs
	return c
}

// Unwrap strips one recognized delimiter pair surrounding the whole of text.
// It returns the body, whether the pair was a display pair, and whether a
// pair was found at all. Longer openers are tried first so that "$$" wins
// over "$". A pair only matches when the body does not contain the closing
// marker itself, so "$a$ + $b$" is left alone.
func (c Config) Unwrap(text string) (body string, display bool, ok bool) {
	trimmed := strings.TrimSpace(text)

	type candidate struct {
		Delimiter
		display bool
	}
	var cands []candidate
	for _, d := range c.DisplayMath {
		cands = append(cands, candidate{d, true})
	}
	for _, d := range c.InlineMath {
		cands = append(cands, candidate{d, false})
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return len(cands[i].Open) > len(cands[j].Open)
	})

	for _, cand := range cands {
		if len(trimmed) < len(cand.Open)+len(cand.Close) {
			continue
		}
		if !strings.HasPrefix(trimmed, cand.Open) || !strings.HasSuffix(trimmed, cand.Close) {
			continue
		}
		inner := trimmed[len(cand.Open) : len(trimmed)-len(cand.Close)]
		if strings.Contains(inner, cand.Close) {
			continue
		}
		return inner, cand.display, true
	}
	return text, false, false
}

// driverConfig is the MathJax configuration object sent to the driver.
type driverConfig struct {
	Loader driverLoader `json:"loader"`
	TeX    driverTeX    `json:"tex"`
	Strict bool         `json:"strict"`
}

type driverLoader struct {
	Load []string `json:"load"`
}

type driverTeX struct {
	Packages    map[string][]string `json:"packages"`
	InlineMath  [][2]string         `json:"inlineMath"`
	DisplayMath [][2]string         `json:"displayMath"`
}

// driverConfig translates c into MathJax's own configuration shape.
// Packages outside the input/tex component get a "[tex]/name" loader entry;
// packages that are already part of the component are not re-added.
func (c Config) driverConfig() driverConfig {
	cfg := driverConfig{
		Loader: driverLoader{Load: []string{"input/" + c.Input, "output/" + c.Output}},
		TeX: driverTeX{
			Packages:    map[string][]string{"[+]": {}},
			InlineMath:  pairs(c.InlineMath),
			DisplayMath: pairs(c.DisplayMath),
		},
		Strict: c.Strict,
	}
	for _, p := range c.Packages {
		if builtinPackages[p] {
			continue
		}
		cfg.Loader.Load = append(cfg.Loader.Load, "[tex]/"+p)
		cfg.TeX.Packages["[+]"] = append(cfg.TeX.Packages["[+]"], p)
	}
	if c.Strict {
		cfg.TeX.Packages["[-]"] = []string{"noundefined"}
	}
	return cfg
}

func pairs(ds []Delimiter) [][2]string {
	out := make([][2]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, [2]string{d.Open, d.Close})
	}
	return out
}

// RenderOptions control a single conversion.
type RenderOptions struct {
	// Scale is the presentation scale factor; 1 is MathJax's default size.
	Scale float64
	// Display requests display-mode (block) layout instead of inline.
	Display bool
}

// DefaultRenderOptions returns scale 1 in display mode.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{Scale: 1, Display: true}
}

// Validate checks the scale factor.
func (o RenderOptions) Validate() error {
	return errors.ValidateScale(o.Scale)
}
