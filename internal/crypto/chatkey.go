package crypto

import (
	"crypto/sha256"
	"encoding/binary"
)

// DeriveChatKey derives a chat content key from the chat and workspace
// identifiers using HKDF-SHA-512 (the standardized path).
//
// The derivation uses:
//   - IKM: SHA-256 hash of the chat identifier
//   - Salt: SHA-256 hash of the workspace identifier
//   - Info: context string || id length (4 bytes BE) || chat id
func DeriveChatKey(chatID, workspaceID string) ([]byte, error) {
	ikm := sha256.Sum256([]byte(chatID))
	saltHash := sha256.Sum256([]byte(workspaceID))

	contextBytes := []byte(ChatKeyContext)
	idLength := make([]byte, 4)
	binary.BigEndian.PutUint32(idLength, uint32(len(chatID)))

	info := make([]byte, 0, len(contextBytes)+4+len(chatID))
	info = append(info, contextBytes...)
	info = append(info, idLength...)
	info = append(info, []byte(chatID)...)

	return DeriveKey(ikm[:], saltHash[:], info, AESKeySize)
}

// DeriveLegacyChatKey derives a chat content key the way pre-v1 clients
// did: a bare SHA-256 over a prefixed chat identifier, no workspace
// binding. Only used as a decryption fallback.
func DeriveLegacyChatKey(chatID string) []byte {
	sum := sha256.Sum256([]byte(LegacyChatKeyPrefix + chatID))
	return sum[:]
}
