package ui

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle ANSI 6 (Cyan) for titles, readable on light and dark terminals
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)

	// UsageStyle ANSI 2 (Green) for usage lines and arguments
	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	// DescStyle ANSI 8 (Bright Black / Gray) keeps descriptions quieter than names
	DescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	// FlagStyle ANSI 3 (Yellow) for flags
	FlagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	// ThoughtStyle ANSI 6 (Cyan) for the model's thought stream
	ThoughtStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	// MetaStyle ANSI 8 (Gray) for per-thought metadata lines
	MetaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	// SeedStyle ANSI 5 (Magenta) for the opening seed text
	SeedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))

	// HumanStyle ANSI 4 (Blue) for recorded human injections
	HumanStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))

	// SummaryStyle ANSI 3 (Yellow) for compression summaries
	SummaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)
