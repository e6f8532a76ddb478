package tui

import "github.com/charmbracelet/lipgloss"

type uiTheme struct {
	root          lipgloss.Style
	header        lipgloss.Style
	title         lipgloss.Style
	completeBadge lipgloss.Style
	panel         lipgloss.Style
	inputPanel    lipgloss.Style
	footer        lipgloss.Style
	status        lipgloss.Style
	errorStatus   lipgloss.Style
	userLabel     lipgloss.Style
	agentLabel    lipgloss.Style
	userBubble    lipgloss.Style
	agentBubble   lipgloss.Style
	completion    lipgloss.Style
	startFrame    lipgloss.Style
	startTitle    lipgloss.Style
	startButton   lipgloss.Style
	muted         lipgloss.Style
}

func newTheme() uiTheme {
	pink := lipgloss.Color("#ff71ce")
	blue := lipgloss.Color("#01cdfe")
	mint := lipgloss.Color("#05ffa1")
	panelBg := lipgloss.Color("#1b0f35")
	text := lipgloss.Color("#f3f3ff")
	muted := lipgloss.Color("#9ca3d8")
	ink := lipgloss.Color("#22062f")

	return uiTheme{
		root: lipgloss.NewStyle().
			Foreground(text).
			Padding(0, 1),
		header: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Padding(0, 1),
		title: lipgloss.NewStyle().
			Foreground(mint).
			Bold(true),
		completeBadge: lipgloss.NewStyle().
			Background(mint).
			Foreground(ink).
			Bold(true).
			Padding(0, 1),
		panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Padding(0, 1),
		inputPanel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(mint).
			Padding(0, 1),
		footer:      lipgloss.NewStyle().Foreground(muted),
		status:      lipgloss.NewStyle().Foreground(blue).Bold(true),
		errorStatus: lipgloss.NewStyle().Foreground(pink).Bold(true),
		userLabel:   lipgloss.NewStyle().Foreground(mint).Bold(true),
		agentLabel:  lipgloss.NewStyle().Foreground(pink).Bold(true),
		userBubble: lipgloss.NewStyle().
			Background(lipgloss.Color("#0f3d3e")).
			Foreground(text).
			Padding(0, 1),
		agentBubble: lipgloss.NewStyle().
			Background(panelBg).
			Foreground(text).
			Padding(0, 1),
		completion: lipgloss.NewStyle().
			Foreground(mint).
			Bold(true),
		startFrame: lipgloss.NewStyle().
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(pink).
			Padding(1, 4),
		startTitle: lipgloss.NewStyle().
			Foreground(blue).
			Bold(true),
		startButton: lipgloss.NewStyle().
			Background(pink).
			Foreground(ink).
			Bold(true).
			Padding(0, 2),
		muted: lipgloss.NewStyle().Foreground(muted),
	}
}
