package model

import (
	"errors"
	"fmt"

	"vaultchat/config"
)

// ErrCredentialMissing means no API key could be resolved when a request was
// about to be made.
var ErrCredentialMissing = errors.New("no API key configured")

// ErrEmptyResponse means the endpoint answered 2xx with zero choices.
var ErrEmptyResponse = errors.New("completion returned no choices")

// ValidationError rejects a local action before any state changes.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// TransportError means no HTTP response was obtained.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// RemoteError is a non-2xx answer from the endpoint.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error (HTTP %d): %s", e.StatusCode, e.Message)
}

// DecodeError is a 2xx answer whose body did not match the expected schema.
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode completion: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// ArchiveError wraps a failed archive write. The in-memory conversation stays
// authoritative when one occurs.
type ArchiveError struct {
	Op  string
	Err error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive %s failed: %v", e.Op, e.Err)
}

func (e *ArchiveError) Unwrap() error {
	return e.Err
}

// IsRequestFailure reports whether err came out of a completion attempt and
// therefore calls for a rollback.
func IsRequestFailure(err error) bool {
	var (
		transport *TransportError
		remote    *RemoteError
		decode    *DecodeError
	)
	return errors.Is(err, ErrCredentialMissing) ||
		errors.Is(err, ErrEmptyResponse) ||
		errors.As(err, &transport) ||
		errors.As(err, &remote) ||
		errors.As(err, &decode)
}

// Describe turns err into the sentence shown to the user. It only ever uses
// status codes, server-provided messages and local descriptions.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var (
		validation *ValidationError
		transport  *TransportError
		remote     *RemoteError
		decode     *DecodeError
		archive    *ArchiveError
		secret     *config.SecretStoreError
	)

	switch {
	case errors.As(err, &validation):
		return validation.Reason
	case errors.Is(err, ErrCredentialMissing):
		return "No API key is set. Press ctrl+k to add your OpenRouter key."
	case errors.As(err, &transport):
		return fmt.Sprintf("Could not reach the completion service: %s", config.Redact(transport.Cause.Error()))
	case errors.As(err, &remote):
		return fmt.Sprintf("The completion service returned an error (HTTP %d): %s", remote.StatusCode, config.Redact(remote.Message))
	case errors.As(err, &decode):
		return "The completion service sent a response that could not be read."
	case errors.Is(err, ErrEmptyResponse):
		return "The completion service returned an empty reply."
	case errors.As(err, &secret):
		return fmt.Sprintf("Could not access the system keychain (status %d).", secret.Status)
	case errors.As(err, &archive):
		return fmt.Sprintf("Could not save chat history: %v", archive.Err)
	default:
		return config.Redact(err.Error())
	}
}
