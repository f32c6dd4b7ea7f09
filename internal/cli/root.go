package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/tex2svg/pkg/buildinfo"
	"github.com/matzehuels/tex2svg/pkg/errors"
)

// RootCommand creates the root cobra command. The root command itself runs
// the conversion; completion is the only subcommand.
func (c *CLI) RootCommand() *cobra.Command {
	opts := convertOpts{scale: defaultScale}

	root := &cobra.Command{
		Use:   appName,
		Short: "Render a LaTeX math expression from stdin to SVG on stdout",
		Long: `tex2svg reads a LaTeX math expression from standard input, typesets it with
MathJax, and writes the resulting SVG to standard output.

The input may be bare TeX or wrapped in math delimiters: $...$ and \(...\)
select inline mode, $$...$$ and \[...\] select display mode. Bare input is
rendered in display mode unless --inline is given.

MathJax runs under Node.js; the mathjax npm package (version 3) must be
installed where node can find it, or in the directory given by --node-path.`,
		Example: `  echo 'a+b=c' | tex2svg > sum.svg
  echo '\frac{a}{b}' | tex2svg --scale 2
  tex2svg --inline -p mhchem < formula.tex`,
		Version:       buildinfo.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			c.Logger.Debug("build", "version", buildinfo.Version, "commit", buildinfo.Commit, "date", buildinfo.Date)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(cmd, &opts)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Wrap(errors.ErrCodeInvalidOption, err, "%s", cmd.UseLine())
	})
	opts.register(root)

	root.AddCommand(c.completionCommand())

	return root
}
