// Package output renders command results for the terminal. Styling is
// plain lipgloss; color is dropped automatically when stdout is not a
// terminal or NO_COLOR is set.
package output

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette
var (
	successColor = lipgloss.Color("10")
	errorColor   = lipgloss.Color("9")
	warningColor = lipgloss.Color("11")
	mutedColor   = lipgloss.Color("8")
	headingColor = lipgloss.Color("12")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(headingColor).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	pathStyle = lipgloss.NewStyle().
			Italic(true)

	listItemStyle = lipgloss.NewStyle().
			PaddingLeft(2)
)

// Status indicators
var (
	enabledIndicator   = successStyle.Render("✓")
	disabledIndicator  = mutedStyle.Render("○")
	errorIndicator     = errorStyle.Render("✗")
	unchangedIndicator = warningStyle.Render("=")
)
