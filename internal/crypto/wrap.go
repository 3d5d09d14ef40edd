package crypto

import (
	"crypto/sha256"
	"fmt"

	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
)

// WrapKey wraps a chat content key to a recipient's ML-KEM-768 public key.
//
// The wrap process:
//  1. ML-KEM-768 encapsulation against the recipient public key
//  2. HKDF-SHA-512 derivation of a key-encryption key from the shared secret
//  3. AES-256-GCM sealing of the content key
//
// The output layout is: KEM ciphertext || nonce || sealed content key.
func WrapKey(contentKey, recipientPublicKey []byte) ([]byte, error) {
	if len(recipientPublicKey) != MLKEMPublicKeySize {
		return nil, ErrInvalidPublicKeySize
	}

	scheme := mlkem768.Scheme()
	pub, err := scheme.UnmarshalBinaryPublicKey(recipientPublicKey)
	if err != nil {
		return nil, fmt.Errorf("unmarshal public key: %w", err)
	}

	ctKem, sharedSecret, err := scheme.Encapsulate(pub)
	if err != nil {
		return nil, fmt.Errorf("encapsulate: %w", err)
	}

	kek, err := deriveWrapKey(sharedSecret, ctKem)
	if err != nil {
		return nil, fmt.Errorf("derive wrap key: %w", err)
	}

	sealed, err := SealAES(kek, contentKey)
	if err != nil {
		return nil, fmt.Errorf("seal content key: %w", err)
	}

	return append(ctKem, sealed...), nil
}

// UnwrapKey recovers a chat content key from material produced by [WrapKey]
// using the recipient's keypair.
func UnwrapKey(wrapped []byte, keypair *Keypair) ([]byte, error) {
	if len(wrapped) < MLKEMCiphertextSize+AESNonceSize+AESTagSize {
		return nil, ErrInvalidWrappedKey
	}

	ctKem := wrapped[:MLKEMCiphertextSize]
	sealed := wrapped[MLKEMCiphertextSize:]

	var privKey mlkem768.PrivateKey
	if err := privKey.Unpack(keypair.SecretKey); err != nil {
		return nil, fmt.Errorf("unmarshal private key: %w", err)
	}

	sharedSecret := make([]byte, MLKEMSharedKeySize)
	privKey.DecapsulateTo(sharedSecret, ctKem)

	kek, err := deriveWrapKey(sharedSecret, ctKem)
	if err != nil {
		return nil, fmt.Errorf("derive wrap key: %w", err)
	}

	contentKey, err := OpenAES(kek, sealed)
	if err != nil {
		return nil, err
	}

	return contentKey, nil
}

// deriveWrapKey performs HKDF-SHA-512 derivation of the key-encryption key.
// The salt is the SHA-256 hash of the KEM ciphertext, binding the derived
// key to this particular encapsulation.
func deriveWrapKey(sharedSecret, ctKem []byte) ([]byte, error) {
	saltHash := sha256.Sum256(ctKem)
	return DeriveKey(sharedSecret, saltHash[:], []byte(WrapContext), AESKeySize)
}
