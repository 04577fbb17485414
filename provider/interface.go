// Package provider implements the chat-completion protocol client.
//
// vaultchat talks to one OpenAI-compatible endpoint (OpenRouter by default).
// The client is stateless: every Complete call resolves the API key from the
// credential source, sends exactly one POST and maps the HTTP outcome onto the
// error kinds defined in the model package:
//
//   - no API key                      → model.ErrCredentialMissing (no request made)
//   - no HTTP response                → *model.TransportError
//   - non-2xx status                  → *model.RemoteError
//   - 2xx with an unreadable body     → *model.DecodeError
//   - 2xx with zero choices           → model.ErrEmptyResponse
//
// # Usage
//
//	client, err := provider.NewOpenRouterClient(provider.Config{
//	    Endpoint: "https://openrouter.ai/api/v1",
//	    Model:    "openai/gpt-4o-mini",
//	}, config.NewCredentialStore())
//	if err != nil {
//	    // handle error
//	}
//	reply, err := client.Complete(ctx, conversation.Outbound())
package provider

import (
	"net/http"

	"vaultchat/storage"
)

// Config holds endpoint configuration. It never carries the API key.
type Config struct {
	Endpoint   string
	Model      string
	Referer    string       // sent as HTTP-Referer
	Title      string       // sent as X-Title
	HTTPClient *http.Client // nil uses the SDK default transport
}

// CredentialSource resolves the API key at request time.
// config.CredentialStore satisfies it.
type CredentialSource interface {
	Get() (value string, ok bool, err error)
}

// UsageRecorder receives token accounting for successful completions.
// storage.UsageLedger satisfies it.
type UsageRecorder interface {
	Record(u storage.Usage) error
}
