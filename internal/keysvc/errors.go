package keysvc

import "errors"

var (
	// ErrProfileNotFound indicates no crypto profile exists for the user.
	ErrProfileNotFound = errors.New("user crypto profile not found")

	// ErrChatKeyNotFound indicates no chat key record exists for the chat.
	ErrChatKeyNotFound = errors.New("chat key record not found")

	// ErrGrantNotFound indicates the user holds no grant for the chat at
	// the requested key version.
	ErrGrantNotFound = errors.New("chat key grant not found")

	// ErrDecryptFailed indicates an authenticated decryption failed. The
	// key was wrong or the ciphertext was tampered with; this is not a
	// missing-key condition.
	ErrDecryptFailed = errors.New("message decryption failed")

	// ErrUnavailable indicates the backing store failed. Retryable.
	ErrUnavailable = errors.New("crypto service unavailable")

	// ErrCorruptProfile indicates a stored profile is structurally invalid.
	ErrCorruptProfile = errors.New("corrupt user crypto profile")
)
