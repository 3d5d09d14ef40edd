package crypto

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func TestWrapUnwrapKey_RoundTrip(t *testing.T) {
	t.Parallel()
	keypair, err := GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}

	contentKey := make([]byte, AESKeySize)
	if _, err := rand.Read(contentKey); err != nil {
		t.Fatal(err)
	}

	wrapped, err := WrapKey(contentKey, keypair.PublicKey)
	if err != nil {
		t.Fatalf("WrapKey() error = %v", err)
	}
	if len(wrapped) != MLKEMCiphertextSize+AESNonceSize+AESKeySize+AESTagSize {
		t.Errorf("wrapped length = %d", len(wrapped))
	}

	unwrapped, err := UnwrapKey(wrapped, keypair)
	if err != nil {
		t.Fatalf("UnwrapKey() error = %v", err)
	}
	if !bytes.Equal(unwrapped, contentKey) {
		t.Error("unwrapped key does not match original")
	}
}

func TestUnwrapKey_WrongKeypair(t *testing.T) {
	t.Parallel()
	alice, err := GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}
	bob, err := GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}

	contentKey := make([]byte, AESKeySize)
	if _, err := rand.Read(contentKey); err != nil {
		t.Fatal(err)
	}

	wrapped, err := WrapKey(contentKey, alice.PublicKey)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := UnwrapKey(wrapped, bob); err == nil {
		t.Error("UnwrapKey() with wrong keypair should fail")
	}
}

func TestWrapKey_InvalidPublicKey(t *testing.T) {
	t.Parallel()
	contentKey := make([]byte, AESKeySize)

	if _, err := WrapKey(contentKey, make([]byte, 10)); err != ErrInvalidPublicKeySize {
		t.Errorf("WrapKey() error = %v, want ErrInvalidPublicKeySize", err)
	}
}

func TestUnwrapKey_Truncated(t *testing.T) {
	t.Parallel()
	keypair, err := GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}

	if _, err := UnwrapKey(make([]byte, MLKEMCiphertextSize), keypair); err != ErrInvalidWrappedKey {
		t.Errorf("UnwrapKey() error = %v, want ErrInvalidWrappedKey", err)
	}
}
