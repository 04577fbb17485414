package ui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultchat/config"
	appmodel "vaultchat/model"
	"vaultchat/provider/testutil"
)

type viewFixture struct {
	secrets   *testutil.MemorySecretStore
	archive   *testutil.MemoryArchive
	completer *testutil.MockCompleter
	view      AppView
}

func newViewFixture(t *testing.T, secrets *testutil.MemorySecretStore, completer *testutil.MockCompleter) *viewFixture {
	t.Helper()
	f := &viewFixture{
		secrets:   secrets,
		archive:   testutil.NewMemoryArchive(),
		completer: completer,
	}
	session := appmodel.NewSession(f.secrets, f.archive, f.completer)
	f.view = NewAppView(context.Background(), session, config.DefaultKeybindings(), "test/model")
	f.update(t, tea.WindowSizeMsg{Width: 100, Height: 40})
	return f
}

func (f *viewFixture) update(t *testing.T, msg tea.Msg) tea.Cmd {
	t.Helper()
	next, cmd := f.view.Update(msg)
	view, ok := next.(AppView)
	require.True(t, ok)
	f.view = view
	return cmd
}

func (f *viewFixture) typeText(t *testing.T, text string) {
	t.Helper()
	f.update(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

// runUntil executes cmd, expanding batches, and returns the first message
// of type T it produces.
func runUntil[T tea.Msg](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	var zero T
	if cmd == nil {
		t.Fatalf("expected a command producing %T", zero)
	}
	switch msg := cmd().(type) {
	case T:
		return msg
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			if found, ok := c().(T); ok {
				return found
			}
		}
	}
	t.Fatalf("command did not produce %T", zero)
	return zero
}

func keyMsg(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func TestAppViewWindowSize(t *testing.T) {
	f := newViewFixture(t, testutil.NewMemorySecretStoreWith(testutil.TestAPIKey), testutil.NewMockCompleter())

	assert.True(t, f.view.ready)
	assert.Equal(t, 100, f.view.viewport.Width)
	assert.Equal(t, 34, f.view.viewport.Height)
	assert.Contains(t, f.view.View(), "vaultchat")
}

func TestAppViewSendFlow(t *testing.T) {
	f := newViewFixture(t, testutil.NewMemorySecretStoreWith(testutil.TestAPIKey), testutil.NewReplyingCompleter("Hello!"))

	f.typeText(t, "Hi")
	assert.Equal(t, "Hi", f.view.session.State().Input)

	cmd := f.update(t, keyMsg(tea.KeyEnter))
	require.True(t, f.view.state.Busy)
	require.Len(t, f.view.state.Messages, 1)
	assert.Equal(t, "", f.view.textarea.Value())

	done := runUntil[completionDoneMsg](t, cmd)
	require.NoError(t, done.Err)

	f.update(t, done)
	state := f.view.session.State()
	assert.False(t, state.Busy)
	require.Len(t, state.Messages, 2)
	assert.Equal(t, "Hello!", state.Messages[1].Content)
	assert.Equal(t, 1, f.completer.CallCount())
}

func TestAppViewFailedSendRestoresInput(t *testing.T) {
	f := newViewFixture(t, testutil.NewMemorySecretStoreWith(testutil.TestAPIKey),
		testutil.NewFailingCompleter(&appmodel.RemoteError{StatusCode: 401, Message: "invalid key"}))

	f.typeText(t, "Hi")
	done := runUntil[completionDoneMsg](t, f.update(t, keyMsg(tea.KeyEnter)))
	f.update(t, done)

	assert.Empty(t, f.view.state.Messages)
	assert.Equal(t, "Hi", f.view.textarea.Value())
	assert.Contains(t, f.view.state.Error, "invalid key")

	// Any key other than dismiss is swallowed by the error overlay
	f.typeText(t, "x")
	assert.Equal(t, "Hi", f.view.textarea.Value())

	f.update(t, keyMsg(tea.KeyEsc))
	assert.Empty(t, f.view.state.Error)
}

func TestAppViewCredentialPrompt(t *testing.T) {
	secrets := testutil.NewMemorySecretStore()
	f := newViewFixture(t, secrets, testutil.NewMockCompleter())

	require.True(t, f.view.state.CredentialPromptVisible)
	assert.True(t, f.view.credentialInput.Focused())

	f.typeText(t, testutil.TestAPIKey)
	assert.NotContains(t, f.view.View(), testutil.TestAPIKey)

	f.update(t, keyMsg(tea.KeyEnter))

	stored, ok := secrets.Value()
	require.True(t, ok)
	assert.Equal(t, testutil.TestAPIKey, stored)
	assert.False(t, f.view.state.CredentialPromptVisible)
	assert.True(t, f.view.state.HasCredential)
	assert.Empty(t, f.view.credentialInput.Value())
}

func TestAppViewCredentialPromptCancelDropsDraft(t *testing.T) {
	f := newViewFixture(t, testutil.NewMemorySecretStoreWith(testutil.TestAPIKey), testutil.NewMockCompleter())

	f.update(t, keyMsg(tea.KeyCtrlK))
	require.True(t, f.view.state.CredentialPromptVisible)

	f.typeText(t, "sk-half-typed")
	f.update(t, keyMsg(tea.KeyEsc))

	assert.False(t, f.view.state.CredentialPromptVisible)
	assert.Empty(t, f.view.credentialInput.Value())
	assert.Equal(t, 0, f.secrets.SetCalls)
}

func TestAppViewClearHistoryConfirmation(t *testing.T) {
	f := newViewFixture(t, testutil.NewMemorySecretStoreWith(testutil.TestAPIKey), testutil.NewReplyingCompleter("Hello!"))

	f.typeText(t, "Hi")
	f.update(t, runUntil[completionDoneMsg](t, f.update(t, keyMsg(tea.KeyEnter))))
	require.Len(t, f.view.state.Messages, 2)

	f.update(t, keyMsg(tea.KeyCtrlL))
	require.True(t, f.view.confirmation.Active)

	f.typeText(t, "n")
	assert.False(t, f.view.confirmation.Active)
	assert.Len(t, f.view.state.Messages, 2)

	f.update(t, keyMsg(tea.KeyCtrlL))
	f.typeText(t, "y")
	assert.False(t, f.view.confirmation.Active)
	assert.Empty(t, f.view.state.Messages)
	assert.Empty(t, f.archive.Stored())
}

func TestAppViewClearCredentialConfirmation(t *testing.T) {
	secrets := testutil.NewMemorySecretStoreWith(testutil.TestAPIKey)
	f := newViewFixture(t, secrets, testutil.NewMockCompleter())

	f.update(t, keyMsg(tea.KeyCtrlX))
	f.typeText(t, "y")

	_, ok := secrets.Value()
	assert.False(t, ok)
	assert.False(t, f.view.state.HasCredential)
	assert.True(t, f.view.state.CredentialPromptVisible)
}

func TestAppViewHelpToggle(t *testing.T) {
	f := newViewFixture(t, testutil.NewMemorySecretStoreWith(testutil.TestAPIKey), testutil.NewMockCompleter())

	f.update(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h"), Alt: true})
	require.True(t, f.view.showHelp)
	assert.Contains(t, f.view.View(), "Keyboard Shortcuts")

	f.update(t, keyMsg(tea.KeyEsc))
	assert.False(t, f.view.showHelp)
}

func TestAppViewQuit(t *testing.T) {
	f := newViewFixture(t, testutil.NewMemorySecretStoreWith(testutil.TestAPIKey), testutil.NewMockCompleter())

	cmd := f.update(t, keyMsg(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestAppViewFlash(t *testing.T) {
	f := newViewFixture(t, testutil.NewMemorySecretStoreWith(testutil.TestAPIKey), testutil.NewMockCompleter())

	f.update(t, clipboardCopiedMsg{})
	assert.Equal(t, "Copied to clipboard", f.view.flash)

	stale := flashClearMsg{ID: f.view.flashID - 1}
	f.update(t, stale)
	assert.NotEmpty(t, f.view.flash)

	f.update(t, flashClearMsg{ID: f.view.flashID})
	assert.Empty(t, f.view.flash)

	f.update(t, clipboardCopiedMsg{Err: errors.New("no clipboard")})
	assert.Contains(t, f.view.flash, "Copy failed")
}

func TestAppViewCopyWithoutReply(t *testing.T) {
	f := newViewFixture(t, testutil.NewMemorySecretStoreWith(testutil.TestAPIKey), testutil.NewMockCompleter())

	f.update(t, keyMsg(tea.KeyCtrlY))
	assert.Equal(t, "No reply to copy yet", f.view.flash)
}

func TestAppViewMarkdownCache(t *testing.T) {
	f := newViewFixture(t, testutil.NewMemorySecretStoreWith(testutil.TestAPIKey), testutil.NewMockCompleter())

	f.update(t, markdownRenderedMsg{MessageID: "m1", Width: 100, Rendered: "rendered"})
	assert.Equal(t, "rendered", f.view.rendered["m1"])

	f.update(t, markdownRenderedMsg{MessageID: "m2", Width: 60, Rendered: "stale"})
	_, ok := f.view.rendered["m2"]
	assert.False(t, ok)
}
