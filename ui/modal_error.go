package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ErrorModal is a standalone program for showing a fatal startup error
// (unreadable config, data directory not writable) before the chat starts.
type ErrorModal struct {
	title   string
	message string
	width   int
	height  int
}

func NewErrorModal(title, message string) ErrorModal {
	return ErrorModal{
		title:   title,
		message: message,
	}
}

func (m ErrorModal) Init() tea.Cmd {
	return nil
}

func (m ErrorModal) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m ErrorModal) View() string {
	if m.width < 20 || m.height < 10 {
		return "Terminal too small"
	}
	return RenderAcknowledgeModal(m.title, m.message, "Press Enter to quit", ModalTypeError, m.width, m.height)
}

// renderErrorOverlay shows the session's current error over the chat.
func renderErrorOverlay(message, dismissKey string, width, height int) string {
	return RenderAcknowledgeModal(
		"⚠ Something went wrong",
		message,
		FormatFooter(dismissKey, "Dismiss"),
		ModalTypeError,
		width,
		height,
	)
}
