package model

import (
	"context"

	"vaultchat/storage"
)

// Completer turns a conversation prefix into one assistant reply.
//
// This interface lives in the model package (not provider) so provider
// implementations can import model without a cycle.
type Completer interface {
	// Complete sends messages upstream and returns the synthesized reply.
	// Failures are one of ErrCredentialMissing, *TransportError,
	// *RemoteError, *DecodeError or ErrEmptyResponse.
	Complete(ctx context.Context, messages []ChatMessage) (Message, error)
}

// SecretStore persists the single API key. config.CredentialStore is the
// production implementation.
type SecretStore interface {
	Set(value string) error
	Get() (value string, ok bool, err error)
	Clear() error
}

// Archive mirrors the conversation to durable storage. storage.Archive is
// the production implementation.
type Archive interface {
	Save(messages []storage.Message) error
	Load() []storage.Message
	Delete() error
}
