package cli

import "github.com/charmbracelet/lipgloss"

// Console colour palette, shared across the CLI and the Bubbletea
// progress UI for consistent branding.
var (
	ConsoleBlue   = lipgloss.Color("#4A90D9")
	ConsoleCyan   = lipgloss.Color("#2EC4C4")
	ConsoleAmber  = lipgloss.Color("#FFA500")
	ConsoleGreen  = lipgloss.Color("#00AA00")
	WarmGray      = lipgloss.Color("#888888")
)
