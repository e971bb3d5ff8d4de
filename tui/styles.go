package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
const (
	colorPrimary   = "#7D56F4"
	colorSuccess   = "#04B575"
	colorError     = "#FF0000"
	colorInfo      = "#626262"
	colorHighlight = "#FAFAFA"
	colorBorder    = "#874BFD"
	colorN8N       = "#EA4B71"
	colorAuto      = "#3B82F6"
	colorMuted     = "#3C3C3C"
)

// Styles for the viewer
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorPrimary)).
			MarginTop(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorInfo))

	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorSuccess))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorError))

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorInfo))

	HighlightStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorHighlight)).
			Background(lipgloss.Color(colorPrimary)).
			Padding(0, 1)

	ButtonStyle = HighlightStyle

	ButtonDisabledStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(colorInfo)).
				Background(lipgloss.Color(colorMuted)).
				Padding(0, 1)

	TabActiveN8NStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color(colorHighlight)).
				Background(lipgloss.Color(colorN8N)).
				Padding(0, 2)

	TabActiveAutomationStyle = TabActiveN8NStyle.
					Background(lipgloss.Color(colorAuto))

	TabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(colorInfo)).
				Padding(0, 2)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorMuted)).
			Padding(0, 1).
			MarginRight(1)

	CardSelectedStyle = CardStyle.
				BorderForeground(lipgloss.Color(colorBorder))

	CardTitleStyle = lipgloss.NewStyle().
			Bold(true)

	MetricStyle = lipgloss.NewStyle().
			MarginRight(2)

	LinkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorPrimary)).
			Underline(true)

	AlertStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color(colorError)).
			Padding(1, 3)

	LoadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorPrimary)).
			Padding(1, 2)
)
