package config

import (
	"errors"
	"fmt"
	"os/exec"

	"github.com/sirupsen/logrus"
	"github.com/zalando/go-keyring"
)

const (
	// CredentialService and CredentialAccount identify the single keyring
	// entry holding the OpenRouter API key.
	CredentialService = "vaultchat"
	CredentialAccount = "openrouter-api-key"
)

// Synthetic status codes for failures that carry no platform exit status.
const (
	StatusUnsupportedPlatform = -1
	StatusValueTooLarge       = -2
	StatusUnknown             = -3
)

// SecretStoreError reports a failed keyring operation. It deliberately
// carries no message from the platform and never the secret itself.
type SecretStoreError struct {
	Op     string // "set", "get" or "clear"
	Status int
}

func (e *SecretStoreError) Error() string {
	switch e.Status {
	case StatusUnsupportedPlatform:
		return fmt.Sprintf("keyring %s failed: no supported secret service on this system", e.Op)
	case StatusValueTooLarge:
		return fmt.Sprintf("keyring %s failed: value too large for the secret service", e.Op)
	default:
		return fmt.Sprintf("keyring %s failed (status %d)", e.Op, e.Status)
	}
}

func newSecretStoreError(op string, err error) *SecretStoreError {
	e := &SecretStoreError{Op: op, Status: StatusUnknown}

	var exitErr *exec.ExitError
	switch {
	case errors.Is(err, keyring.ErrUnsupportedPlatform):
		e.Status = StatusUnsupportedPlatform
	case errors.Is(err, keyring.ErrSetDataTooBig):
		e.Status = StatusValueTooLarge
	case errors.As(err, &exitErr):
		e.Status = exitErr.ExitCode()
	}

	return e
}

// CredentialStore keeps the API key in the OS keyring (macOS Keychain,
// Secret Service on Linux, Windows Credential Manager). The value is never
// written to any file this application manages.
//
// On macOS go-keyring runs `security add-generic-password` into the login
// keychain with the default access settings; no accessibility class is set,
// so the item follows the login keychain's own lock and backup behaviour.
type CredentialStore struct {
	service string
	account string
}

// NewCredentialStore returns the store for the application's fixed entry.
func NewCredentialStore() *CredentialStore {
	return NewCredentialStoreFor(CredentialService, CredentialAccount)
}

// NewCredentialStoreFor targets a custom (service, account) pair.
func NewCredentialStoreFor(service, account string) *CredentialStore {
	return &CredentialStore{
		service: service,
		account: account,
	}
}

// Set creates the entry or overwrites it in place.
func (c *CredentialStore) Set(value string) error {
	if err := keyring.Set(c.service, c.account, value); err != nil {
		serr := newSecretStoreError("set", err)
		c.log().WithField("status", serr.Status).Warn("failed to store credential")
		return serr
	}
	c.log().Debug("credential stored")
	return nil
}

// Get returns the stored value. A missing entry is reported as ok=false with
// no error; that is the normal first-run state.
func (c *CredentialStore) Get() (string, bool, error) {
	value, err := keyring.Get(c.service, c.account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		serr := newSecretStoreError("get", err)
		c.log().WithField("status", serr.Status).Warn("failed to read credential")
		return "", false, serr
	}
	return value, true, nil
}

// Has reports whether an entry exists without handing the value to the caller.
func (c *CredentialStore) Has() (bool, error) {
	_, ok, err := c.Get()
	return ok, err
}

// Clear removes the entry. Clearing an absent entry succeeds.
func (c *CredentialStore) Clear() error {
	err := keyring.Delete(c.service, c.account)
	if err == nil || errors.Is(err, keyring.ErrNotFound) {
		c.log().Debug("credential cleared")
		return nil
	}
	serr := newSecretStoreError("clear", err)
	c.log().WithField("status", serr.Status).Warn("failed to clear credential")
	return serr
}

func (c *CredentialStore) log() *logrus.Entry {
	return Log.WithFields(logrus.Fields{
		"component": "keyring",
		"service":   c.service,
		"account":   c.account,
	})
}
