package lipgloss

import "github.com/charmbracelet/lipgloss"

var (
	Red     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F56"))
	Green   = lipgloss.NewStyle().Foreground(lipgloss.Color("#27C93F"))
	Yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFBD2E"))
	BlueSky = lipgloss.NewStyle().Foreground(lipgloss.Color("#00BFFF"))
	Info    = lipgloss.NewStyle().Foreground(lipgloss.Color("#61AFEF")).Bold(true)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#61AFEF")).
			Padding(0, 1)
)
