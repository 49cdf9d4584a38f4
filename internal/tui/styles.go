package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	primaryColor = lipgloss.Color("#4F46E5")
	mutedColor   = lipgloss.Color("#6B7280")
	userColor    = lipgloss.Color("#2563EB")
	errorColor   = lipgloss.Color("#DC2626")
	borderColor  = lipgloss.Color("#D1D5DB")
)

// Styles holds every lipgloss style the model renders with
type Styles struct {
	Header    lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	Timestamp lipgloss.Style
	Muted     lipgloss.Style
	Error     lipgloss.Style
	Input     lipgloss.Style
	Footer    lipgloss.Style
}

// DefaultStyles returns the default theme
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(primaryColor).
			Padding(0, 1),
		Tab: lipgloss.NewStyle().
			Foreground(mutedColor).
			Padding(0, 1),
		ActiveTab: lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Underline(true).
			Padding(0, 1),
		User: lipgloss.NewStyle().
			Bold(true).
			Foreground(userColor),
		Assistant: lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor),
		Timestamp: lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true),
		Muted: lipgloss.NewStyle().
			Foreground(mutedColor),
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(errorColor),
		Input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1),
		Footer: lipgloss.NewStyle().
			Foreground(mutedColor),
	}
}
