package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"vaultchat/config"
	appmodel "vaultchat/model"
)

const flashDuration = 2 * time.Second

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	// Spinner ticks only keep going while a request is out
	if tick, ok := msg.(spinner.TickMsg); ok {
		if !a.state.Busy {
			return a, nil
		}
		a.loadingSpinner, cmd = a.loadingSpinner.Update(tick)
		a.updateViewportContent(true)
		return a, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

		// Reserve space for title (1 line), separator (1 line), textarea (3 lines), and status bar (1 line)
		viewportHeight := a.height - 6
		if viewportHeight < 1 {
			viewportHeight = 1
		}
		a.viewport.Width = a.width
		a.viewport.Height = viewportHeight
		a.textarea.SetWidth(a.width)

		a.ready = true
		cmds = append(cmds, a.renderPending())
		a.updateViewportContent(true)
		return a, tea.Batch(cmds...)

	case tea.KeyMsg:
		return a.handleKey(msg)

	case completionDoneMsg:
		// Errors are already in the session state; nothing else to do with them
		_ = a.session.FinishSend(msg.Pending, msg.Reply, msg.Err)
		a.syncState()
		a.updateViewportContent(true)
		return a, a.renderPending()

	case markdownRenderedMsg:
		if msg.Width != a.renderedWidth {
			// Stale: the window was resized while rendering
			return a, nil
		}
		a.rendered[msg.MessageID] = msg.Rendered
		a.updateViewportContent(false)
		return a, nil

	case clipboardCopiedMsg:
		if msg.Err != nil {
			config.Log.WithError(msg.Err).WithField("component", "ui").Warn("clipboard write failed")
			return a, a.setFlash("Copy failed: clipboard unavailable")
		}
		return a, a.setFlash("Copied to clipboard")

	case flashClearMsg:
		if msg.ID == a.flashID {
			a.flash = ""
		}
		return a, nil
	}

	return a, nil
}

func (a AppView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()
	kb := a.keys

	if msg.Type == tea.KeyCtrlC || kb.Matches(keyStr, config.ActionQuit) {
		return a, tea.Quit
	}

	if a.showHelp {
		if kb.Matches(keyStr, config.ActionHelp) || kb.Matches(keyStr, config.ActionDismiss) {
			a.showHelp = false
		}
		return a, nil
	}

	if a.state.CredentialPromptVisible {
		return a.handleCredentialPrompt(msg)
	}

	if a.confirmation.Active {
		return a.handleConfirmation(msg)
	}

	if a.state.Error != "" {
		if keyStr == "enter" || kb.Matches(keyStr, config.ActionDismiss) {
			a.session.DismissError()
			a.syncState()
		}
		return a, nil
	}

	switch {
	case kb.Matches(keyStr, config.ActionSend):
		return a.send()

	case kb.Matches(keyStr, config.ActionCredentialPrompt):
		a.session.RequestCredentialEntry()
		a.syncState()
		return a, nil

	case kb.Matches(keyStr, config.ActionClearCredential):
		a.confirmation = newConfirmation(confirmClearCredential)
		return a, nil

	case kb.Matches(keyStr, config.ActionClearHistory):
		if a.state.Busy {
			return a, a.setFlash("Wait for the current reply before clearing history")
		}
		a.confirmation = newConfirmation(confirmClearHistory)
		return a, nil

	case kb.Matches(keyStr, config.ActionCopyReply):
		text, ok := lastReply(a.state.Messages)
		if !ok {
			return a, a.setFlash("No reply to copy yet")
		}
		return a, copyToClipboard(text)

	case kb.Matches(keyStr, config.ActionCopyConversation):
		if len(a.state.Messages) == 0 {
			return a, a.setFlash("Nothing to copy yet")
		}
		return a, copyToClipboard(conversationText(a.state.Messages))

	case kb.Matches(keyStr, config.ActionHelp):
		a.showHelp = true
		return a, nil

	case kb.Matches(keyStr, config.ActionScrollUp):
		a.viewport.HalfPageUp()
		return a, nil

	case kb.Matches(keyStr, config.ActionScrollDown):
		a.viewport.HalfPageDown()
		return a, nil

	case kb.Matches(keyStr, config.ActionPageUp):
		a.viewport.PageUp()
		return a, nil

	case kb.Matches(keyStr, config.ActionPageDown):
		a.viewport.PageDown()
		return a, nil

	case kb.Matches(keyStr, config.ActionScrollToTop):
		a.viewport.GotoTop()
		return a, nil

	case kb.Matches(keyStr, config.ActionScrollToBottom):
		a.viewport.GotoBottom()
		return a, nil
	}

	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	if v := a.textarea.Value(); v != a.state.Input {
		a.session.SetInput(v)
		a.state.Input = v
	}
	return a, cmd
}

func (a AppView) send() (tea.Model, tea.Cmd) {
	a.session.SetInput(a.textarea.Value())

	p, err := a.session.BeginSend()
	a.syncState()
	if err != nil {
		// Validation failures are shown through the session error
		return a, nil
	}

	a.updateViewportContent(true)
	return a, tea.Batch(a.session.DispatchCmd(a.ctx, p), a.loadingSpinner.Tick)
}

func (a AppView) handleCredentialPrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "enter":
		// Failure keeps the prompt open with the error inside it
		_ = a.session.SetCredential(a.credentialInput.Value())
		a.syncState()
		return a, nil

	case a.keys.Matches(msg.String(), config.ActionDismiss):
		a.session.CancelCredentialPrompt()
		a.session.DismissError()
		a.syncState()
		return a, nil
	}

	var cmd tea.Cmd
	a.credentialInput, cmd = a.credentialInput.Update(msg)
	return a, cmd
}

func (a AppView) handleConfirmation(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		action := a.confirmation.action
		a.confirmation = ConfirmationState{}

		switch action {
		case confirmClearHistory:
			_ = a.session.ClearHistory()
			a.rendered = make(map[string]string)
		case confirmClearCredential:
			_ = a.session.ClearCredential()
		}
		a.syncState()
		a.updateViewportContent(true)
		return a, nil

	case "n", "N", "esc":
		a.confirmation = ConfirmationState{}
		return a, nil
	}

	return a, nil
}

func (a *AppView) setFlash(text string) tea.Cmd {
	a.flashID++
	a.flash = text
	id := a.flashID
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashClearMsg{ID: id}
	})
}

func copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		return clipboardCopiedMsg{Err: clipboard.WriteAll(text)}
	}
}

func lastReply(messages []appmodel.Message) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == appmodel.RoleAssistant {
			return messages[i].Content, true
		}
	}
	return "", false
}

// conversationText formats the whole conversation as plain text.
func conversationText(messages []appmodel.Message) string {
	var allText strings.Builder
	for _, msg := range messages {
		role := string(msg.Role)
		switch msg.Role {
		case appmodel.RoleUser:
			role = "You"
		case appmodel.RoleAssistant:
			role = "Assistant"
		}
		allText.WriteString(fmt.Sprintf("%s:\n%s\n\n", role, msg.Content))
	}
	return strings.TrimRight(allText.String(), "\n") + "\n"
}
