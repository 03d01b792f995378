package ui

import "github.com/charmbracelet/lipgloss"

// Icon constants
const (
	HostIcon    = "👑"
	TurnIcon    = "🎯"
	WheelIcon   = "🎡"
	CorrectIcon = "✅"
	WrongIcon   = "❌"
)

// Lipgloss Styles
var (
	docStyle      = lipgloss.NewStyle().Margin(1, 2)
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	correctStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	wrongStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	wordStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Padding(0, 2).Border(lipgloss.DoubleBorder())
	categoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	urgentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true)
)
