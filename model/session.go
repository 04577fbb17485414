package model

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"vaultchat/config"
)

// State is everything the view layer may observe.
type State struct {
	HasCredential           bool
	CredentialPromptVisible bool
	Messages                []Message
	Input                   string
	Busy                    bool
	Error                   string // empty when nothing to show
}

// PendingRequest is the transaction for one send: the snapshot that went
// upstream and the ID of the optimistically appended user message.
type PendingRequest struct {
	UserMessageID string
	Text          string
	Outbound      []ChatMessage
}

// Option configures a Session.
type Option func(*Session)

// WithStateObserver registers fn to be called with the new State after each
// operation, once persistence for that operation has completed.
func WithStateObserver(fn func(State)) Option {
	return func(s *Session) {
		s.observer = fn
	}
}

// Session owns the conversation and the credential-presence flag and
// coordinates the secret store, archive and completer.
//
// A Session is not safe for concurrent use. All methods except Dispatch must
// be called from the goroutine that owns it (the bubbletea Update loop or a
// CLI command). Dispatch only reads the PendingRequest and may run elsewhere.
type Session struct {
	secrets   SecretStore
	archive   Archive
	completer Completer
	observer  func(State)

	conversation  Conversation
	hasCredential bool
	promptVisible bool
	input         string
	busy          bool
	pending       *PendingRequest
	errMsg        string
}

// NewSession restores the archived conversation and checks whether a
// credential exists. Startup never writes to the archive.
func NewSession(secrets SecretStore, archive Archive, completer Completer, opts ...Option) *Session {
	s := &Session{
		secrets:   secrets,
		archive:   archive,
		completer: completer,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.conversation = conversationFromArchive(archive.Load())

	_, ok, err := secrets.Get()
	switch {
	case err != nil:
		s.errMsg = Describe(err)
		s.promptVisible = true
	case !ok:
		s.promptVisible = true
	default:
		s.hasCredential = true
	}

	s.log().WithFields(logrus.Fields{
		"messages":       s.conversation.Len(),
		"has_credential": s.hasCredential,
	}).Debug("session restored")

	return s
}

// State returns a snapshot for rendering.
func (s *Session) State() State {
	return State{
		HasCredential:           s.hasCredential,
		CredentialPromptVisible: s.promptVisible,
		Messages:                s.conversation.Messages(),
		Input:                   s.input,
		Busy:                    s.busy,
		Error:                   s.errMsg,
	}
}

// SetInput replaces the input buffer.
func (s *Session) SetInput(text string) {
	s.input = text
	s.publish()
}

// BeginSend validates the input buffer and, if accepted, appends the user
// message, persists it and marks the session busy.
func (s *Session) BeginSend() (*PendingRequest, error) {
	text := s.input

	switch {
	case s.busy:
		return nil, s.reject(&ValidationError{Reason: "Wait for the current reply before sending another message."})
	case strings.TrimSpace(text) == "":
		return nil, s.reject(&ValidationError{Reason: "Type a message before sending."})
	case !s.hasCredential:
		s.promptVisible = true
		return nil, s.reject(&ValidationError{Reason: "Add an API key before sending messages."})
	}

	user := NewMessage(RoleUser, text)
	saveErr := s.commit(s.conversation.Append(user))

	s.input = ""
	s.busy = true
	s.errMsg = ""
	if saveErr != nil {
		s.errMsg = Describe(saveErr)
	}

	p := &PendingRequest{
		UserMessageID: user.ID,
		Text:          text,
		Outbound:      s.conversation.Outbound(),
	}
	s.pending = p

	s.log().WithFields(logrus.Fields{
		"message_id": user.ID,
		"outbound":   len(p.Outbound),
	}).Debug("send started")

	s.publish()
	return p, nil
}

// Dispatch performs the network round trip for p. It touches no session
// state and may be called off the owner goroutine.
func (s *Session) Dispatch(ctx context.Context, p *PendingRequest) (Message, error) {
	return s.completer.Complete(ctx, p.Outbound)
}

// FinishSend applies the outcome of p: the reply is appended on success; on
// failure the user message is rolled back and its text restored to the input
// buffer. The returned error is err itself, or an archive error after a
// successful reply that could not be saved.
func (s *Session) FinishSend(p *PendingRequest, reply Message, err error) error {
	if p == nil || p != s.pending {
		s.log().Warn("ignoring result for a request that is no longer pending")
		return err
	}
	s.pending = nil
	s.busy = false

	if err == nil {
		if reply.ID == "" {
			reply.ID = NewMessage(reply.Role, "").ID
		}
		saveErr := s.commit(s.conversation.Append(reply))
		if saveErr != nil {
			s.errMsg = Describe(saveErr)
		}
		s.log().WithField("message_id", reply.ID).Debug("send completed")
		s.publish()
		return saveErr
	}

	if next, removed := s.conversation.Rollback(p.UserMessageID); removed {
		// The request error is what the user needs to see; a failed rollback
		// save is only logged.
		_ = s.commit(next)
	}
	s.input = p.Text
	s.errMsg = Describe(err)

	if errors.Is(err, ErrCredentialMissing) {
		s.hasCredential = false
		s.promptVisible = true
	}

	entry := s.log().WithError(err).WithField("message_id", p.UserMessageID)
	if IsRequestFailure(err) {
		entry.Info("send failed, rolled back")
	} else {
		// Keyring or caller errors, not an answer from the endpoint
		entry.Warn("send aborted, rolled back")
	}
	s.publish()
	return err
}

// Submit runs a whole send synchronously.
func (s *Session) Submit(ctx context.Context) (Message, error) {
	p, err := s.BeginSend()
	if err != nil {
		return Message{}, err
	}

	reply, err := s.Dispatch(ctx, p)
	ferr := s.FinishSend(p, reply, err)
	if err != nil {
		return Message{}, err
	}
	// ferr here can only be an archive error; the reply was still accepted.
	return reply, ferr
}

// SetCredential stores value in the secret store.
func (s *Session) SetCredential(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return s.reject(&ValidationError{Reason: "The API key cannot be empty."})
	}

	if err := s.secrets.Set(value); err != nil {
		return s.reject(err)
	}

	s.hasCredential = true
	s.promptVisible = false
	s.errMsg = ""
	s.log().Info("credential set")
	s.publish()
	return nil
}

// ClearCredential removes the stored key and reopens the prompt. The
// conversation is left alone.
func (s *Session) ClearCredential() error {
	if err := s.secrets.Clear(); err != nil {
		return s.reject(err)
	}

	s.hasCredential = false
	s.promptVisible = true
	s.log().Info("credential cleared")
	s.publish()
	return nil
}

// RequestCredentialEntry shows the credential prompt.
func (s *Session) RequestCredentialEntry() {
	s.promptVisible = true
	s.publish()
}

// CancelCredentialPrompt hides the credential prompt.
func (s *Session) CancelCredentialPrompt() {
	s.promptVisible = false
	s.publish()
}

// ClearHistory deletes the archive and empties the conversation. The result
// on disk is an empty archive even if the delete fails.
func (s *Session) ClearHistory() error {
	if s.busy {
		return s.reject(&ValidationError{Reason: "Wait for the current reply before clearing history."})
	}

	var firstErr error
	if err := s.archive.Delete(); err != nil {
		firstErr = &ArchiveError{Op: "delete", Err: err}
		s.log().WithError(err).Warn("failed to delete archive")
	}
	if err := s.commit(s.conversation.Clear()); err != nil && firstErr == nil {
		firstErr = err
	}

	if firstErr != nil {
		s.errMsg = Describe(firstErr)
	}
	s.log().Info("history cleared")
	s.publish()
	return firstErr
}

// DismissError clears the displayed error.
func (s *Session) DismissError() {
	s.errMsg = ""
	s.publish()
}

// commit persists next and then adopts it. A failed save is reported but
// next is adopted regardless: memory is authoritative.
func (s *Session) commit(next Conversation) error {
	var saveErr error
	if err := s.archive.Save(next.toArchive()); err != nil {
		saveErr = &ArchiveError{Op: "save", Err: err}
		s.log().WithError(err).Warn("failed to save archive")
	}
	s.conversation = next
	return saveErr
}

func (s *Session) reject(err error) error {
	s.errMsg = Describe(err)
	s.publish()
	return err
}

func (s *Session) publish() {
	if s.observer != nil {
		s.observer(s.State())
	}
}

func (s *Session) log() *logrus.Entry {
	return config.Log.WithField("component", "session")
}
