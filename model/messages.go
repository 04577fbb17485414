package model

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// CompletionDoneMsg carries the outcome of a dispatched request back to the
// Update loop, where FinishSend must be applied.
type CompletionDoneMsg struct {
	Pending *PendingRequest
	Reply   Message
	Err     error
}

// ClipboardCopiedMsg reports the result of copying a reply.
type ClipboardCopiedMsg struct {
	Err error
}

// DispatchCmd runs Dispatch in a tea.Cmd goroutine.
func (s *Session) DispatchCmd(ctx context.Context, p *PendingRequest) tea.Cmd {
	return func() tea.Msg {
		reply, err := s.Dispatch(ctx, p)
		return CompletionDoneMsg{
			Pending: p,
			Reply:   reply,
			Err:     err,
		}
	}
}

// MarkdownRenderedMsg carries the terminal rendering of one message at a
// given viewport width.
type MarkdownRenderedMsg struct {
	MessageID string
	Width     int
	Rendered  string
}

// FlashClearMsg expires a transient status-bar notice.
type FlashClearMsg struct {
	ID int
}
