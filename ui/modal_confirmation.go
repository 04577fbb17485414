package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// confirmAction identifies what a y/n confirmation will do.
type confirmAction int

const (
	confirmNone confirmAction = iota
	confirmClearHistory
	confirmClearCredential
)

type ConfirmationState struct {
	Active  bool
	Title   string
	Message string
	action  confirmAction
}

func newConfirmation(action confirmAction) ConfirmationState {
	switch action {
	case confirmClearHistory:
		return ConfirmationState{
			Active:  true,
			Title:   "Clear Conversation?",
			Message: "This deletes the whole chat history from disk.\nIt cannot be undone.",
			action:  action,
		}
	case confirmClearCredential:
		return ConfirmationState{
			Active:  true,
			Title:   "Remove API Key?",
			Message: "The key will be deleted from the system keychain.\nYour conversation is kept.",
			action:  action,
		}
	default:
		return ConfirmationState{}
	}
}

func RenderConfirmationModal(state ConfirmationState, width, height int) string {
	modalWidth := modalWidthFor(60, width)

	messageStyle := lipgloss.NewStyle().
		Width(modalWidth).
		Align(lipgloss.Center)

	var lines []string
	for _, line := range strings.Split(state.Message, "\n") {
		lines = append(lines, messageStyle.Render(line))
	}

	return RenderThreeSectionModal(
		state.Title,
		lines,
		FormatFooter("y", "Yes", "n", "No"),
		ModalTypeWarning,
		modalWidth,
		width,
		height,
	)
}
