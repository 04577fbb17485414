package testutil

import (
	"context"
	"sync"

	"vaultchat/model"
	"vaultchat/storage"
)

// MemorySecretStore implements model.SecretStore in memory for testing.
type MemorySecretStore struct {
	mu    sync.Mutex
	value string
	set   bool

	// Injected failures
	SetErr   error
	GetErr   error
	ClearErr error

	// Call counters
	SetCalls   int
	GetCalls   int
	ClearCalls int
}

// NewMemorySecretStore creates an empty store.
func NewMemorySecretStore() *MemorySecretStore {
	return &MemorySecretStore{}
}

// NewMemorySecretStoreWith creates a store already holding value.
func NewMemorySecretStoreWith(value string) *MemorySecretStore {
	return &MemorySecretStore{value: value, set: true}
}

func (m *MemorySecretStore) Set(value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls++
	if m.SetErr != nil {
		return m.SetErr
	}
	m.value = value
	m.set = true
	return nil
}

func (m *MemorySecretStore) Get() (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	return m.value, m.set, nil
}

func (m *MemorySecretStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.value = ""
	m.set = false
	return nil
}

// Value returns the stored secret and whether one is present.
func (m *MemorySecretStore) Value() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, m.set
}

// MemoryArchive implements model.Archive in memory for testing.
type MemoryArchive struct {
	mu      sync.Mutex
	stored  []storage.Message
	present bool

	// Every slice passed to Save, in order, including failed saves
	Saves [][]storage.Message

	SaveErr     error
	DeleteErr   error
	DeleteCalls int
}

// NewMemoryArchive creates an archive with no stored file.
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{}
}

// NewMemoryArchiveWith creates an archive that already holds messages.
func NewMemoryArchiveWith(messages []storage.Message) *MemoryArchive {
	return &MemoryArchive{stored: cloneMessages(messages), present: true}
}

func (m *MemoryArchive) Save(messages []storage.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saves = append(m.Saves, cloneMessages(messages))
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.stored = cloneMessages(messages)
	m.present = true
	return nil
}

func (m *MemoryArchive) Load() []storage.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.present {
		return []storage.Message{}
	}
	return cloneMessages(m.stored)
}

func (m *MemoryArchive) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls++
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.stored = nil
	m.present = false
	return nil
}

// Stored returns what a fresh Load would see.
func (m *MemoryArchive) Stored() []storage.Message {
	return m.Load()
}

// SaveCount reports how many times Save was called.
func (m *MemoryArchive) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Saves)
}

func cloneMessages(in []storage.Message) []storage.Message {
	out := make([]storage.Message, len(in))
	copy(out, in)
	return out
}

// MockCompleter implements model.Completer for testing.
type MockCompleter struct {
	mu sync.Mutex

	// CompleteFunc handles each call; defaults to an assistant echo
	CompleteFunc func(ctx context.Context, messages []model.ChatMessage) (model.Message, error)

	// Outbound snapshots received, in order
	Calls [][]model.ChatMessage
}

// NewMockCompleter creates a completer that replies "Mock response".
func NewMockCompleter() *MockCompleter {
	m := &MockCompleter{}
	m.CompleteFunc = func(ctx context.Context, messages []model.ChatMessage) (model.Message, error) {
		return model.NewMessage(model.RoleAssistant, "Mock response"), nil
	}
	return m
}

// NewReplyingCompleter always answers with an assistant message carrying content.
func NewReplyingCompleter(content string) *MockCompleter {
	m := &MockCompleter{}
	m.CompleteFunc = func(ctx context.Context, messages []model.ChatMessage) (model.Message, error) {
		return model.NewMessage(model.RoleAssistant, content), nil
	}
	return m
}

// NewFailingCompleter always fails with err.
func NewFailingCompleter(err error) *MockCompleter {
	m := &MockCompleter{}
	m.CompleteFunc = func(ctx context.Context, messages []model.ChatMessage) (model.Message, error) {
		return model.Message{}, err
	}
	return m
}

func (m *MockCompleter) Complete(ctx context.Context, messages []model.ChatMessage) (model.Message, error) {
	m.mu.Lock()
	snapshot := make([]model.ChatMessage, len(messages))
	copy(snapshot, messages)
	m.Calls = append(m.Calls, snapshot)
	fn := m.CompleteFunc
	m.mu.Unlock()

	return fn(ctx, messages)
}

// CallCount reports how many requests were made.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent outbound snapshot, or nil.
func (m *MockCompleter) LastCall() []model.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return nil
	}
	return m.Calls[len(m.Calls)-1]
}
