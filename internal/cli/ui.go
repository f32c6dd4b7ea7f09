package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/tex2svg/pkg/errors"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan = lipgloss.Color("36")  // Teal - activity
	colorRed  = lipgloss.Color("167") // Soft red - errors
	colorDim  = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	styleDim         = lipgloss.NewStyle().Foreground(colorDim)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
)

// =============================================================================
// Icons
// =============================================================================

const iconError = "✗"

// =============================================================================
// Status Output
// =============================================================================

// PrintError writes the one-line failure diagnostic for err to w.
// Colors are used only when w is a terminal.
func PrintError(w io.Writer, err error) {
	r := lipgloss.NewRenderer(w)
	icon := r.NewStyle().Foreground(colorRed).Render(iconError)
	fmt.Fprintln(w, icon+" "+errors.Diagnostic(err))
}
