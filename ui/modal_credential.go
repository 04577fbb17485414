package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
)

// NewCredentialInput creates a masked textinput for API key entry.
// The draft only lives in this widget and is reset once the prompt closes.
func NewCredentialInput(placeholder string) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.Width = 50
	input.CharLimit = 512
	input.EchoMode = textinput.EchoPassword
	input.EchoCharacter = '•'
	return input
}

// RenderCredentialModal renders the API key prompt. errorMsg is the session's
// current error, shown under the input.
func RenderCredentialModal(input textinput.Model, hasCredential bool, errorMsg, footer string, width, height int) string {
	if width < 20 || height < 10 {
		return "Terminal too small"
	}

	modalWidth := modalWidthFor(70, width)

	title := "🔑 OpenRouter API Key"
	intro := "Paste your OpenRouter API key to start chatting."
	if hasCredential {
		intro = "Paste a new key to replace the one in your keychain."
	}

	lines := []string{
		centerTextLine(intro, modalWidth),
		centerTextLine(DimStyle.Render("It is stored in the system keychain, never on disk by vaultchat."), modalWidth),
		"",
		centerTextLine(input.View(), modalWidth),
	}

	if errorMsg != "" {
		styledErr := lipgloss.NewStyle().
			Foreground(dangerColor).
			Bold(true).
			Render("⚠ " + truncateToWidth(errorMsg, modalWidth-4))
		lines = append(lines, "", centerTextLine(styledErr, modalWidth))
	}

	return RenderThreeSectionModal(title, lines, footer, ModalTypeInfo, modalWidth, width, height)
}
