package browser

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.Color("#7D56F4")
	colorMuted  = lipgloss.Color("241")
	colorWarn   = lipgloss.Color("#E5A50A")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(colorAccent).
			Padding(0, 1)

	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorMuted)
	normalStyle   = lipgloss.NewStyle()
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	dimStyle      = lipgloss.NewStyle().Foreground(colorMuted)
	statusStyle   = lipgloss.NewStyle().Foreground(colorWarn)
	helpStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	labelStyle    = lipgloss.NewStyle().Bold(true).Width(14)

	selectedBorderStyle = lipgloss.NewStyle().Foreground(colorAccent)
)

const iconDot = "•"
