package cli

import "github.com/charmbracelet/lipgloss"

// Color palette for stderr diagnostics.
var (
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - conflicts
	colorDim    = lipgloss.Color("240") // Dim gray - separators
)

var (
	// styleWarning for diagnostic section headers.
	styleWarning = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)

	// styleConflict for conflicting requirement lines.
	styleConflict = lipgloss.NewStyle().Foreground(colorRed)

	// styleDim for separator rules between diagnostic sections.
	styleDim = lipgloss.NewStyle().Foreground(colorDim)
)
