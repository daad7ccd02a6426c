package ui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	ColorGreenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true)
	ColorRedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
	ColorYellowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true)
	ColorBlueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00BFFF")).Bold(true)
	ColorGreyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

	// Reference outcome styles
	CreatedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true)
	UpdatedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00BFFF")).Bold(true)
	UnchangedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	ConflictStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Bold(true)
	FailedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444")).Bold(true)

	SectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Underline(true)
)

// Icons
const (
	IconCheck     = "✓"
	IconCross     = "✗"
	IconWarning   = "!"
	IconArrow     = "→"
	IconUnchanged = "="
)

func Green(s string) string {
	return ColorGreenStyle.Render(s)
}

func Red(s string) string {
	return ColorRedStyle.Render(s)
}

func Yellow(s string) string {
	return ColorYellowStyle.Render(s)
}

func Blue(s string) string {
	return ColorBlueStyle.Render(s)
}

func Grey(s string) string {
	return ColorGreyStyle.Render(s)
}

// Layout rendering functions
func Section(text string) string {
	return SectionStyle.Render(text)
}
