package main

import "github.com/charmbracelet/lipgloss"

var (
	// Color palette
	primaryColor = lipgloss.Color("#7D56F4")
	successColor = lipgloss.Color("#04B575")
	errorColor   = lipgloss.Color("#FF4B4B")
	mutedColor   = lipgloss.Color("#666666")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	passStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(successColor)

	failStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(errorColor)

	detailStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

// render applies s unless --no-color is set.
func render(s lipgloss.Style, text string) string {
	if noColor {
		return text
	}
	return s.Render(text)
}

// verdict renders PASS or FAIL.
func verdict(ok bool) string {
	if ok {
		return render(passStyle, "PASS")
	}
	return render(failStyle, "FAIL")
}
