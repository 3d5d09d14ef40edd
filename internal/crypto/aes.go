package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
)

// GenerateNonce returns a fresh random AES-GCM nonce.
func GenerateNonce() ([]byte, error) {
	nonce := make([]byte, AESNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return nonce, nil
}

// EncryptAESGCM encrypts plaintext using AES-256-GCM with the given nonce.
// Returns ciphertext || tag; the nonce is not prepended because callers
// store it in a separate field.
func EncryptAESGCM(key, plaintext, nonce []byte) ([]byte, error) {
	if len(key) != AESKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), AESKeySize)
	}

	if len(nonce) != AESNonceSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidNonceSize, len(nonce), AESNonceSize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return gcm.Seal(nil, nonce, plaintext, nil), nil
}

// DecryptAESGCM decrypts ciphertext || tag using AES-256-GCM.
func DecryptAESGCM(key, nonce, ciphertext []byte) ([]byte, error) {
	if len(key) != AESKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), AESKeySize)
	}

	if len(nonce) != AESNonceSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidNonceSize, len(nonce), AESNonceSize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	return plaintext, nil
}

// SealAES encrypts data using AES-256-GCM with a fresh nonce.
// Returns: nonce (12 bytes) || ciphertext || tag (16 bytes). Used for
// sealing key material where the nonce travels with the blob.
func SealAES(key, plaintext []byte) ([]byte, error) {
	nonce, err := GenerateNonce()
	if err != nil {
		return nil, err
	}

	ciphertext, err := EncryptAESGCM(key, plaintext, nonce)
	if err != nil {
		return nil, err
	}

	return append(nonce, ciphertext...), nil
}

// OpenAES decrypts a blob produced by [SealAES].
func OpenAES(key, sealed []byte) ([]byte, error) {
	if len(sealed) < AESNonceSize+AESTagSize {
		return nil, fmt.Errorf("sealed data too short")
	}

	nonce := sealed[:AESNonceSize]
	ciphertext := sealed[AESNonceSize:]

	return DecryptAESGCM(key, nonce, ciphertext)
}
