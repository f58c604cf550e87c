package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary = lipgloss.Color("#7aa2f7")
	ColorSuccess = lipgloss.Color("#9ece6a")
	ColorWarning = lipgloss.Color("#e0af68")
	ColorError   = lipgloss.Color("#f7768e")
	ColorMuted   = lipgloss.Color("#565f89")
	ColorFg      = lipgloss.Color("#c0caf5")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true).
			Underline(true).
			Padding(0, 1)

	InactiveTabStyle = lipgloss.NewStyle().
				Foreground(ColorMuted).
				Padding(0, 1)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	FocusedStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	ButtonStyle = lipgloss.NewStyle().
			Foreground(ColorFg).
			Border(lipgloss.NormalBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 2)

	FocusedButtonStyle = ButtonStyle.
				BorderForeground(ColorPrimary).
				Foreground(ColorPrimary).
				Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)
)
