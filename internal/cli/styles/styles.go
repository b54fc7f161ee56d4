// Package styles holds the lipgloss styles used to draw boards in the
// terminal
package styles

import (
	"charm.land/lipgloss/v2"

	"github.com/thenoetrevino/tablero/internal/config"
)

// Widths used when laying lists out side by side
const (
	ListWidth = 32
	CardWidth = ListWidth - 4
)

// Styles is a theme resolved into lipgloss styles
type Styles struct {
	Board   lipgloss.Style
	Meta    lipgloss.Style
	List    lipgloss.Style
	ListHdr lipgloss.Style
	Card    lipgloss.Style
	Title   lipgloss.Style
	Subtle  lipgloss.Style
	Value   lipgloss.Style
	Label   lipgloss.Style
	Alert   lipgloss.Style
	Empty   lipgloss.Style
}

// New resolves a theme. Missing colors fall back to the theme's preset.
func New(theme config.Theme) *Styles {
	theme.ApplyDefaults()

	return &Styles{
		Board: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(theme.Accent)),

		Meta: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Subtle)),

		List: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(theme.ListBorder)).
			Padding(0, 1).
			Width(ListWidth),

		ListHdr: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(theme.Accent)),

		Card: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(theme.CardBorder)).
			Width(CardWidth),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(theme.Title)),

		Subtle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Subtle)),

		Value: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Normal)),

		Label: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Label)),

		Alert: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(theme.Alert)),

		Empty: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Subtle)).
			Italic(true),
	}
}
