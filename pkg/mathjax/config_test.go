package mathjax

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/tex2svg/pkg/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, InputTeX, cfg.Input)
	assert.Equal(t, OutputSVG, cfg.Output)
	assert.True(t, cfg.Strict)
	assert.Contains(t, cfg.InlineMath, Delimiter{Open: "$", Close: "$"})
	assert.Contains(t, cfg.DisplayMath, Delimiter{Open: "$$", Close: "$$"})
	assert.Contains(t, cfg.DisplayMath, Delimiter{Open: `\[`, Close: `\]`})
	for _, p := range []string{"ams", "color", "boldsymbol", "newcommand"} {
		assert.Contains(t, cfg.Packages, p)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"wrong input", func(c *Config) { c.Input = "mathml" }},
		{"wrong output", func(c *Config) { c.Output = "chtml" }},
		{"empty open", func(c *Config) { c.InlineMath = append(c.InlineMath, Delimiter{Close: "$"}) }},
		{"empty close", func(c *Config) { c.DisplayMath = append(c.DisplayMath, Delimiter{Open: "$$"}) }},
		{"bad package", func(c *Config) { c.Packages = append(c.Packages, "../evil") }},
		{"empty package", func(c *Config) { c.Packages = append(c.Packages, "") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInit), "code = %v", errors.GetCode(err))
		})
	}
}

func TestWithPackages(t *testing.T) {
	cfg := DefaultConfig().WithPackages("mhchem", "ams", "mhchem", "physics")

	assert.Equal(t, []string{"base", "ams", "color", "boldsymbol", "newcommand", "mhchem", "physics"}, cfg.Packages)
	assert.Len(t, DefaultConfig().Packages, 5, "original must not be modified")
}

func TestUnwrap(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name        string
		in          string
		wantBody    string
		wantDisplay bool
		wantOK      bool
	}{
		{"bare", "a+b=c", "a+b=c", false, false},
		{"inline dollar", "$a+b$", "a+b", false, true},
		{"display dollars", "$$a+b$$", "a+b", true, true},
		{"display brackets", `\[\frac{a}{b}\]`, `\frac{a}{b}`, true, true},
		{"inline parens", `\(x^2\)`, "x^2", false, true},
		{"surrounding whitespace", "  $$ x $$\n", " x ", true, true},
		{"two inline regions", "$a$ + $b$", "$a$ + $b$", false, false},
		{"unbalanced", "$a+b", "$a+b", false, false},
		{"lone dollar pair", "$$", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, display, ok := cfg.Unwrap(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantDisplay, display)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestDriverConfig(t *testing.T) {
	dc := DefaultConfig().driverConfig()

	assert.Equal(t, []string{"input/tex", "output/svg", "[tex]/color", "[tex]/boldsymbol"}, dc.Loader.Load)
	assert.Equal(t, []string{"color", "boldsymbol"}, dc.TeX.Packages["[+]"])
	assert.Equal(t, []string{"noundefined"}, dc.TeX.Packages["[-]"])
	assert.Contains(t, dc.TeX.DisplayMath, [2]string{`\[`, `\]`})

	raw, err := json.Marshal(dc)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"loader": {"load": ["input/tex", "output/svg", "[tex]/color", "[tex]/boldsymbol"]},
		"tex": {
			"packages": {"[+]": ["color", "boldsymbol"], "[-]": ["noundefined"]},
			"inlineMath": [["$", "$"], ["\\(", "\\)"]],
			"displayMath": [["$$", "$$"], ["\\[", "\\]"]]
		},
		"strict": true
	}`, string(raw))
}

func TestDriverConfigLenient(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Strict = false

	dc := cfg.driverConfig()
	_, removed := dc.TeX.Packages["[-]"]
	assert.False(t, removed)
	assert.False(t, dc.Strict)
}

func TestRenderOptions(t *testing.T) {
	opts := DefaultRenderOptions()
	assert.Equal(t, 1.0, opts.Scale)
	assert.True(t, opts.Display)
	require.NoError(t, opts.Validate())

	opts.Scale = 0
	err := opts.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidOption))
}
