package chatseal

import (
	"errors"
	"fmt"

	"github.com/chatseal/client-go/internal/keysvc"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrClientClosed is returned when operations are attempted on a closed client.
	ErrClientClosed = errors.New("client has been closed")

	// ErrNotUnlocked is returned when an operation requires an unlocked
	// session. Recoverable by prompting the user to unlock.
	ErrNotUnlocked = errors.New("session is not unlocked")

	// ErrNoKey is returned when no content key is available for a chat and
	// none could be provisioned. Recoverable by retrying once workspace
	// context (or a grant) is available.
	ErrNoKey = errors.New("no content key available")

	// ErrMalformedPayload is returned when an encrypted payload is missing
	// required fields. Not retryable; the stored record is damaged upstream.
	ErrMalformedPayload = errors.New("malformed encrypted payload")

	// ErrAuthFailure is returned when decryption fails authentication:
	// the key was wrong, not missing. Triggers cache invalidation for the
	// chat; retryable after re-derivation.
	ErrAuthFailure = errors.New("decryption authentication failure")

	// ErrServiceUnavailable is returned when a crypto service call failed
	// or timed out. Retryable.
	ErrServiceUnavailable = errors.New("crypto service unavailable")

	// ErrUnrecoverable is returned when every fallback path has been
	// exhausted for a message. Terminal for that message; callers render
	// the cannot-decrypt placeholder.
	ErrUnrecoverable = errors.New("message cannot be decrypted")

	// ErrProfileNotFound is returned when a user has no crypto profile.
	ErrProfileNotFound = errors.New("user crypto profile not found")

	// ErrGrantNotFound is returned when a user holds no grant for a chat
	// at the requested key version.
	ErrGrantNotFound = errors.New("chat key grant not found")

	// ErrChatKeyNotFound is returned when a chat has no established key.
	ErrChatKeyNotFound = errors.New("chat key record not found")
)

// ChatSealError is implemented by all SDK errors.
type ChatSealError interface {
	error
	ChatSealError() // marker method
}

// UnlockError represents a failed unlock attempt. The session remains
// locked when this is returned.
type UnlockError struct {
	UserID string
	Reason string
	Err    error
}

func (e *UnlockError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unlock failed for %s: %s: %v", e.UserID, e.Reason, e.Err)
	}
	return fmt.Sprintf("unlock failed for %s: %s", e.UserID, e.Reason)
}

// Unwrap returns the underlying error.
func (e *UnlockError) Unwrap() error {
	return e.Err
}

// ChatSealError implements the ChatSealError interface.
func (e *UnlockError) ChatSealError() {}

// DecryptError represents a failure to decrypt a message payload.
type DecryptError struct {
	ChatID string
	// Stage is where decryption failed: "key", "payload", "primary",
	// "legacy".
	Stage string
	Err   error
}

func (e *DecryptError) Error() string {
	return fmt.Sprintf("decrypt failed at %s for chat %s: %v", e.Stage, e.ChatID, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecryptError) Unwrap() error {
	return e.Err
}

// ChatSealError implements the ChatSealError interface.
func (e *DecryptError) ChatSealError() {}

// ProvisionError represents a failed attempt to auto-provision a chat key
// on the send path.
type ProvisionError struct {
	ChatID      string
	WorkspaceID string
	Err         error
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("auto-provision chat key for %s in workspace %s: %v", e.ChatID, e.WorkspaceID, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProvisionError) Unwrap() error {
	return e.Err
}

// ChatSealError implements the ChatSealError interface.
func (e *ProvisionError) ChatSealError() {}

// wrapServiceError converts crypto service errors to public sentinel
// errors. This ensures that errors.Is() checks work with public sentinels
// regardless of which CryptoService implementation is plugged in.
func wrapServiceError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, keysvc.ErrProfileNotFound):
		return fmt.Errorf("%w: %v", ErrProfileNotFound, err)
	case errors.Is(err, keysvc.ErrGrantNotFound):
		return fmt.Errorf("%w: %v", ErrGrantNotFound, err)
	case errors.Is(err, keysvc.ErrChatKeyNotFound):
		return fmt.Errorf("%w: %v", ErrChatKeyNotFound, err)
	case errors.Is(err, keysvc.ErrDecryptFailed):
		return fmt.Errorf("%w: %v", ErrAuthFailure, err)
	case errors.Is(err, keysvc.ErrUnavailable):
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	return err
}

// isNotFound reports whether err is any of the not-found conditions,
// covering both public sentinels and service-internal errors.
func isNotFound(err error) bool {
	return errors.Is(err, ErrProfileNotFound) ||
		errors.Is(err, ErrGrantNotFound) ||
		errors.Is(err, ErrChatKeyNotFound) ||
		errors.Is(err, keysvc.ErrProfileNotFound) ||
		errors.Is(err, keysvc.ErrGrantNotFound) ||
		errors.Is(err, keysvc.ErrChatKeyNotFound)
}

// isAuthFailure reports whether err indicates a wrong key rather than a
// missing one. Only these failures invalidate cached keys.
func isAuthFailure(err error) bool {
	return errors.Is(err, ErrAuthFailure) || errors.Is(err, keysvc.ErrDecryptFailed)
}
