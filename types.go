package chatseal

import (
	"time"

	"github.com/google/uuid"

	"github.com/chatseal/client-go/internal/crypto"
	"github.com/chatseal/client-go/persist"
)

// UserCryptoProfile is a user's persisted crypto profile: the master key
// salt, derivation metadata, and the user's wrapping keypair (secret half
// sealed under the master key). Created on first unlock, immutable after.
type UserCryptoProfile = persist.Profile

// ChatKeyRecord identifies the active key generation for a chat.
type ChatKeyRecord = persist.ChatKeyRecord

// ChatKeyGrant authorizes a user to obtain a chat's content key at a
// specific key version.
type ChatKeyGrant = persist.Grant

// ChatMessage is a chat message as held by the message store.
type ChatMessage = persist.Message

// AlgorithmAESGCM is the algorithm identifier for AES-256-GCM payloads,
// the only algorithm current clients produce.
const AlgorithmAESGCM = crypto.AlgorithmAESGCM

// Rendering placeholders for the UI layer. These are display values only;
// a placeholder must never overwrite successfully decrypted text.
const (
	// PlaceholderLocked is rendered when the session is locked.
	PlaceholderLocked = "[encryption locked]"
	// PlaceholderDecrypting is rendered while an async decrypt is in flight.
	PlaceholderDecrypting = "[decrypting…]"
	// PlaceholderUnrecoverable is rendered when every decrypt path failed.
	PlaceholderUnrecoverable = "[cannot decrypt]"
)

// EncryptedPayload is the encrypted form of a message body. Immutable once
// produced.
type EncryptedPayload struct {
	// Ciphertext is the base64-encoded AEAD output (including the tag).
	Ciphertext string
	// IV is the base64-encoded nonce, unique per encryption.
	IV string
	// Algorithm identifies the AEAD used, e.g. "AES-256-GCM".
	Algorithm string
	// KeyVersion is the chat key generation the payload was encrypted under.
	KeyVersion int
}

// payloadFromMessage extracts the encrypted payload columns from a stored
// message. Returns nil for unencrypted messages.
func payloadFromMessage(m *ChatMessage) *EncryptedPayload {
	if m == nil || !m.IsEncrypted {
		return nil
	}
	return &EncryptedPayload{
		Ciphertext: m.EncryptedText,
		IV:         m.EncryptionIV,
		Algorithm:  m.EncryptionAlgorithm,
		KeyVersion: m.EncryptionKeyVersion,
	}
}

// applyPayload writes the encrypted payload columns onto a message record.
func applyPayload(m *ChatMessage, p *EncryptedPayload) {
	m.IsEncrypted = true
	m.EncryptedText = p.Ciphertext
	m.EncryptionIV = p.IV
	m.EncryptionAlgorithm = p.Algorithm
	m.EncryptionKeyVersion = p.KeyVersion
}

// newMessageID returns a fresh message identifier.
func newMessageID() string {
	return uuid.NewString()
}

// now returns the current UTC time. Indirection for tests.
var now = func() time.Time { return time.Now().UTC() }
