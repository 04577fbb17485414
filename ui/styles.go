package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	dimColor     = lipgloss.Color("7")
	accentColor  = lipgloss.Color("12")
	successColor = lipgloss.Color("10")
	warningColor = lipgloss.Color("11")
	dangerColor  = lipgloss.Color("9")

	// User message style
	UserStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)
	// NO .Background() = transparent!

	// Assistant message style
	AssistantStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	// System/placeholder style
	DimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	TitleStyle = lipgloss.NewStyle().
			Bold(true)

	StatusStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	// Credential presence indicators in the title bar
	KeyPresentStyle = lipgloss.NewStyle().
			Foreground(successColor)
	KeyMissingStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)

	FlashStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)
)

// FormatFooter formats a footer string with alternating keys and descriptions.
// Keys keep the default color, descriptions are rendered in assistant blue+bold.
// Usage: FormatFooter("Enter", "Save", "Esc", "Cancel")
func FormatFooter(parts ...string) string {
	descStyle := lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	var result []string
	for i := 0; i+1 < len(parts); i += 2 {
		result = append(result, parts[i]+" "+descStyle.Render(parts[i+1]))
	}
	return strings.Join(result, "  ")
}

// formatStatusBar is FormatFooter for the main chat, with descriptions in
// user green.
func formatStatusBar(parts ...string) string {
	descStyle := lipgloss.NewStyle().Foreground(successColor).Bold(true)
	var result []string
	for i := 0; i+1 < len(parts); i += 2 {
		if parts[i] == "" {
			continue
		}
		result = append(result, parts[i]+" "+descStyle.Render(parts[i+1]))
	}
	return StatusStyle.Render(strings.Join(result, "  "))
}
