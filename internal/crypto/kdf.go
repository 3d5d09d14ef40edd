package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// PasswordKey derives the transient password key from a user identifier and
// session credential. The result is never persisted; it exists only as the
// input to master key derivation.
func PasswordKey(userID, credential string) []byte {
	sum := sha256.Sum256([]byte(userID + ":" + credential))
	return sum[:]
}

// MasterKey derives a user's master key from the password key and the
// stored per-user salt using Argon2id.
func MasterKey(passwordKey, salt []byte) []byte {
	return argon2.IDKey(passwordKey, salt, argonTime, argonMemory, argonThreads, AESKeySize)
}

// GenerateSalt returns a fresh random master key salt.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}
