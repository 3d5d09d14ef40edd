// Package persist provides storage backends for the chatseal pipeline:
// user crypto profiles, chat key records, grants, and chat messages.
//
// Two backends ship with the SDK: an in-memory store for tests and
// short-lived sessions, and a Badger-backed store for durable local state.
// Key material passed to this package is either public (KEM public keys,
// wrapped grants) or sealed by the caller; raw master keys and content keys
// never reach a Store.
package persist

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrClosed is returned when operations are attempted on a closed store.
	ErrClosed = errors.New("store is closed")
)

// Profile is a user's crypto profile. Created on first unlock, immutable
// afterwards. The secret key is sealed under the user's master key before
// it gets here; the raw master key is never persisted.
type Profile struct {
	// UserID identifies the profile owner.
	UserID string `json:"user_id"`
	// MasterKeySalt is the per-user salt for master key derivation.
	MasterKeySalt []byte `json:"master_key_salt"`
	// KDF names the derivation scheme, e.g. "argon2id:v1".
	KDF string `json:"kdf"`
	// PublicKey is the user's ML-KEM-768 public key.
	PublicKey []byte `json:"public_key"`
	// SealedSecretKey is the ML-KEM-768 secret key sealed under the
	// user's master key (AES-256-GCM, nonce prepended).
	SealedSecretKey []byte `json:"sealed_secret_key"`
	// CreatedAt is when the profile was provisioned.
	CreatedAt time.Time `json:"created_at"`
}

// ChatKeyRecord identifies the active key generation for a chat.
type ChatKeyRecord struct {
	ChatID     string    `json:"chat_id"`
	KeyVersion int       `json:"key_version"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// Grant authorizes a user to obtain a chat's content key at a specific key
// version. Immutable once created; revocation is modeled as grant absence
// for a newer key version, never as deletion.
type Grant struct {
	ChatID     string `json:"chat_id"`
	KeyVersion int    `json:"key_version"`
	UserID     string `json:"user_id"`
	// WrappedKey is the content key wrapped to the user's public key.
	// Empty for grants written by clients that predate per-user wrapping;
	// holders of such grants re-derive the key instead.
	WrappedKey []byte    `json:"wrapped_key,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Message is a chat message as persisted by the message store. When
// IsEncrypted is set, Text is only a display cache for decrypted content
// and the Encryption* columns are authoritative.
type Message struct {
	ID          string `json:"id"`
	ChatID      string `json:"chat_id"`
	WorkspaceID string `json:"workspace_id,omitempty"`
	SenderID    string `json:"sender_id"`
	IsEncrypted bool   `json:"is_encrypted"`
	// Text is the plaintext display cache. Not authoritative when
	// IsEncrypted is set.
	Text string `json:"text,omitempty"`
	// TextIsPlaceholder marks Text as a rendering placeholder rather than
	// successfully decrypted content. A placeholder must never replace a
	// non-placeholder Text.
	TextIsPlaceholder    bool      `json:"text_is_placeholder,omitempty"`
	EncryptedText        string    `json:"encrypted_text,omitempty"`
	EncryptionIV         string    `json:"encryption_iv,omitempty"`
	EncryptionKeyVersion int       `json:"encryption_key_version,omitempty"`
	EncryptionAlgorithm  string    `json:"encryption_algorithm,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

// Store is the persistence interface for the pipeline's records. All
// implementations must be safe for concurrent use.
type Store interface {
	// SaveProfile stores a user profile. Existing profiles are overwritten;
	// callers enforce profile immutability.
	SaveProfile(p *Profile) error
	// GetProfile returns the profile for userID, or ErrNotFound.
	GetProfile(userID string) (*Profile, error)

	// SaveChatKeyRecord stores a chat key record.
	SaveChatKeyRecord(r *ChatKeyRecord) error
	// GetChatKeyRecord returns the record for chatID, or ErrNotFound.
	GetChatKeyRecord(chatID string) (*ChatKeyRecord, error)

	// SaveGrant stores a grant.
	SaveGrant(g *Grant) error
	// GetGrant returns the grant for (chatID, keyVersion, userID), or
	// ErrNotFound.
	GetGrant(chatID string, keyVersion int, userID string) (*Grant, error)

	// SaveMessage stores a message, overwriting any existing message with
	// the same ID.
	SaveMessage(m *Message) error
	// GetMessage returns the message with the given ID, or ErrNotFound.
	GetMessage(messageID string) (*Message, error)
	// ListMessages returns all messages for a chat ordered by creation time.
	ListMessages(chatID string) ([]*Message, error)

	// Close releases any resources held by the store.
	Close() error
}
