package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"vaultchat/config"
	appmodel "vaultchat/model"
)

// AppView is the bubbletea model for the chat window. It owns no chat state
// of its own: everything it draws comes from the Session, and every user
// action is forwarded to a Session method on the Update goroutine.
type AppView struct {
	session   *appmodel.Session
	keys      *config.KeyBindingsConfig
	modelName string
	ctx       context.Context

	// UI Components
	viewport        viewport.Model
	textarea        textarea.Model
	credentialInput textinput.Model
	loadingSpinner  spinner.Model

	// Window state
	width  int
	height int
	ready  bool

	// Last state pulled from the session
	state appmodel.State

	showHelp     bool
	confirmation ConfirmationState

	// Markdown cache keyed by message ID, valid for renderedWidth
	rendered      map[string]string
	renderedWidth int

	// Transient status-bar notice
	flash   string
	flashID int
}

func NewAppView(ctx context.Context, session *appmodel.Session, keys *config.KeyBindingsConfig, modelName string) AppView {
	if keys == nil {
		keys = config.DefaultKeybindings()
	}

	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)

	// Enter alone is the send action; newline needs the configured binding
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys(keys.GetActionKey(config.ActionNewLine)))

	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = AssistantStyle

	a := AppView{
		session:         session,
		keys:            keys,
		modelName:       modelName,
		ctx:             ctx,
		viewport:        viewport.New(0, 0),
		textarea:        ta,
		credentialInput: NewCredentialInput("sk-or-..."),
		loadingSpinner:  sp,
		rendered:        make(map[string]string),
	}
	a.syncState()
	return a
}

func (a AppView) Init() tea.Cmd {
	// Markdown waits for the first WindowSizeMsg to know the width
	return tea.Batch(textarea.Blink, textinput.Blink)
}

func (a AppView) View() string {
	if !a.ready {
		return "Loading vaultchat..."
	}

	// Layers, top first: help, credential prompt, confirmation, error
	if a.showHelp {
		return a.renderHelpModal(a.width, a.height)
	}

	if a.state.CredentialPromptVisible {
		footer := FormatFooter("Enter", "Save", a.keys.DisplayActionKey(config.ActionDismiss), "Cancel")
		return RenderCredentialModal(a.credentialInput, a.state.HasCredential, a.state.Error, footer, a.width, a.height)
	}

	if a.confirmation.Active {
		return RenderConfirmationModal(a.confirmation, a.width, a.height)
	}

	if a.state.Error != "" {
		return renderErrorOverlay(a.state.Error, a.keys.DisplayActionKey(config.ActionDismiss), a.width, a.height)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		a.renderTitleBar(),
		"",
		a.viewport.View(),
		a.textarea.View(),
		a.renderStatusBar(),
	)
}

func (a AppView) renderTitleBar() string {
	name := AssistantStyle.Render("vaultchat")
	modelText := TitleStyle.Render(fmt.Sprintf(" - %s", a.modelName))

	keyText := KeyMissingStyle.Render(" | no API key")
	if a.state.HasCredential {
		keyText = KeyPresentStyle.Render(" | key in keychain")
	}

	countText := DimStyle.Render(fmt.Sprintf(" | %d messages", len(a.state.Messages)))

	title := name + modelText + keyText + countText
	if a.state.Busy {
		title += " " + a.loadingSpinner.View()
	}
	if config.Debug {
		title += DimStyle.Render(" | debug log on")
	}

	if lipgloss.Width(title) > a.width {
		return truncateToWidth(fmt.Sprintf("vaultchat - %s", a.modelName), a.width)
	}
	return title
}

func (a AppView) renderStatusBar() string {
	if a.flash != "" {
		return FlashStyle.Render(a.flash)
	}

	kb := a.keys
	return formatStatusBar(
		kb.DisplayActionKey(config.ActionSend), "Send",
		kb.DisplayActionKey(config.ActionNewLine), "New Line",
		kb.DisplayActionKey(config.ActionCopyReply), "Copy",
		kb.DisplayActionKey(config.ActionCredentialPrompt), "API Key",
		kb.DisplayActionKey(config.ActionClearHistory), "Clear",
		kb.DisplayActionKey(config.ActionHelp), "Help",
		kb.DisplayActionKey(config.ActionQuit), "Quit",
	)
}

// syncState pulls the session state after an operation and mirrors it into
// the widgets that show it.
func (a *AppView) syncState() {
	prev := a.state
	a.state = a.session.State()

	if a.textarea.Value() != a.state.Input {
		a.textarea.SetValue(a.state.Input)
	}

	switch {
	case a.state.CredentialPromptVisible && !prev.CredentialPromptVisible:
		a.credentialInput.Reset()
		a.credentialInput.Focus()
		a.textarea.Blur()
	case !a.state.CredentialPromptVisible && prev.CredentialPromptVisible:
		// The draft never outlives the prompt
		a.credentialInput.Reset()
		a.credentialInput.Blur()
		a.textarea.Focus()
	case a.state.CredentialPromptVisible:
		a.credentialInput.Focus()
	}
}
