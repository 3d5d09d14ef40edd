package chatseal

import (
	"context"
)

// CryptoService is the trusted boundary for primitive key operations. The
// SDK ships an in-process implementation (the default built by [New]);
// deployments with an external key service plug in their own.
//
// All operations return typed errors and never panic across the boundary.
// Implementations should surface the conditions the pipeline distinguishes
// using the package sentinels: [ErrProfileNotFound], [ErrChatKeyNotFound],
// [ErrGrantNotFound], [ErrAuthFailure], and [ErrServiceUnavailable].
type CryptoService interface {
	// GetUserKeys returns the crypto profile for a user.
	GetUserKeys(ctx context.Context, userID string) (*UserCryptoProfile, error)

	// InitializeUser provisions a profile for a user that has none,
	// deriving the master key from the given password key. Returns the new
	// profile and the master key.
	InitializeUser(ctx context.Context, userID string, passwordKey []byte) (*UserCryptoProfile, []byte, error)

	// DeriveMasterKey derives a user's master key from the password key
	// and the profile's stored salt.
	DeriveMasterKey(ctx context.Context, passwordKey, salt []byte) ([]byte, error)

	// DeriveChatKey derives a chat content key via the standardized path.
	DeriveChatKey(ctx context.Context, chatID, workspaceID string) ([]byte, error)

	// DeriveLegacyChatKey derives a chat content key the way pre-v1
	// clients did. Used only as a decryption fallback.
	DeriveLegacyChatKey(ctx context.Context, chatID string) ([]byte, error)

	// CreateChatKey establishes the chat's key record if absent and
	// creates one grant per user for the record's key version, skipping
	// users that already hold one. Returns the number of grants created.
	CreateChatKey(ctx context.Context, chatID, ownerUserID string, userIDs []string, contentKey []byte) (int, error)

	// GetChatKeyRecord returns the chat's key record.
	GetChatKeyRecord(ctx context.Context, chatID string) (*ChatKeyRecord, error)

	// GetGrant returns the grant for (chatID, keyVersion, userID).
	GetGrant(ctx context.Context, chatID string, keyVersion int, userID string) (*ChatKeyGrant, error)

	// EncryptMessage encrypts plaintext under a content key with a fresh
	// IV, returning the ciphertext (with tag) and the IV.
	EncryptMessage(ctx context.Context, plaintext, contentKey []byte) (ciphertext, iv []byte, err error)

	// DecryptMessage decrypts a ciphertext under a content key. An
	// authentication failure must be distinguishable from other failures.
	DecryptMessage(ctx context.Context, ciphertext, iv, contentKey []byte) ([]byte, error)
}
