// Package theme holds the lipgloss styles shared by the shell and the TUI.
package theme

import (
	"slices"

	"github.com/charmbracelet/lipgloss"
)

var (
	Green       = lipgloss.Color("#00FF41")
	BrightGreen = lipgloss.Color("#39FF14")
	DarkGreen   = lipgloss.Color("#008F11")
	DimGreen    = lipgloss.Color("#003B00")
	Cyan        = lipgloss.Color("#00D4AA")
	Amber       = lipgloss.Color("#FFB000")
	DarkAmber   = lipgloss.Color("#8A5F00")
	Black       = lipgloss.Color("#0D0208")
	MidGray     = lipgloss.Color("#3a3a4e")
	White       = lipgloss.Color("#e0e0e0")
	Red         = lipgloss.Color("#FF4136")
)

// Theme is a set of styles for one colour scheme.
type Theme struct {
	Name string

	Banner    lipgloss.Style
	Header    lipgloss.Style
	Rule      lipgloss.Style
	Cell      lipgloss.Style
	Prompt    lipgloss.Style
	Success   lipgloss.Style
	Error     lipgloss.Style
	Help      lipgloss.Style
	StatusBar lipgloss.Style
	Selected  lipgloss.Style
	Border    lipgloss.Style
}

// Names lists the available themes. The first one is the default.
var Names = []string{"green", "amber", "plain"}

// Exists reports whether name is one of Names.
func Exists(name string) bool {
	return slices.Contains(Names, name)
}

// Named returns the theme called name, falling back to green. The plain
// theme applies no styling at all.
func Named(name string) Theme {
	switch name {
	case "plain":
		s := lipgloss.NewStyle()
		return Theme{
			Name: "plain", Banner: s, Header: s, Rule: s, Cell: s, Prompt: s,
			Success: s, Error: s, Help: s, StatusBar: s, Selected: s, Border: s,
		}
	case "amber":
		return build("amber", Amber, DarkAmber)
	default:
		return build("green", Green, DarkGreen)
	}
}

func build(name string, accent, dim lipgloss.Color) Theme {
	return Theme{
		Name: name,
		Banner: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),
		Header: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),
		Rule: lipgloss.NewStyle().
			Foreground(dim),
		Cell: lipgloss.NewStyle().
			Foreground(White),
		Prompt: lipgloss.NewStyle().
			Foreground(BrightGreen).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(Cyan),
		Error: lipgloss.NewStyle().
			Foreground(Red).
			Bold(true),
		Help: lipgloss.NewStyle().
			Foreground(dim),
		StatusBar: lipgloss.NewStyle().
			Background(dim).
			Foreground(Black).
			Bold(true).
			Padding(0, 1),
		Selected: lipgloss.NewStyle().
			Foreground(Black).
			Background(accent).
			Bold(true),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(dim).
			Padding(0, 1),
	}
}
