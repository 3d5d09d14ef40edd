package crypto

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func randomKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, AESKeySize)
	if _, err := rand.Read(key); err != nil {
		t.Fatal(err)
	}
	return key
}

func TestEncryptDecryptAESGCM_RoundTrip(t *testing.T) {
	t.Parallel()
	key := randomKey(t)

	tests := []struct {
		name      string
		plaintext []byte
	}{
		{"short message", []byte("hello")},
		{"empty message", []byte{}},
		{"binary data", []byte{0x00, 0xff, 0x10, 0x80}},
		{"long message", bytes.Repeat([]byte("chat "), 1000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nonce, err := GenerateNonce()
			if err != nil {
				t.Fatal(err)
			}

			ciphertext, err := EncryptAESGCM(key, tt.plaintext, nonce)
			if err != nil {
				t.Fatalf("EncryptAESGCM() error = %v", err)
			}
			if len(ciphertext) != len(tt.plaintext)+AESTagSize {
				t.Errorf("ciphertext length = %d, want %d", len(ciphertext), len(tt.plaintext)+AESTagSize)
			}

			plaintext, err := DecryptAESGCM(key, nonce, ciphertext)
			if err != nil {
				t.Fatalf("DecryptAESGCM() error = %v", err)
			}
			if !bytes.Equal(plaintext, tt.plaintext) {
				t.Errorf("decrypted = %q, want %q", plaintext, tt.plaintext)
			}
		})
	}
}

func TestEncryptAESGCM_InvalidSizes(t *testing.T) {
	t.Parallel()
	key := randomKey(t)
	nonce := make([]byte, AESNonceSize)

	if _, err := EncryptAESGCM(key[:16], []byte("x"), nonce); err == nil {
		t.Error("EncryptAESGCM() with short key should fail")
	}
	if _, err := EncryptAESGCM(key, []byte("x"), nonce[:8]); err == nil {
		t.Error("EncryptAESGCM() with short nonce should fail")
	}
}

func TestDecryptAESGCM_WrongKey(t *testing.T) {
	t.Parallel()
	key := randomKey(t)
	nonce, err := GenerateNonce()
	if err != nil {
		t.Fatal(err)
	}

	ciphertext, err := EncryptAESGCM(key, []byte("secret"), nonce)
	if err != nil {
		t.Fatal(err)
	}

	wrongKey := randomKey(t)
	if _, err := DecryptAESGCM(wrongKey, nonce, ciphertext); err != ErrDecryptionFailed {
		t.Errorf("DecryptAESGCM() with wrong key error = %v, want ErrDecryptionFailed", err)
	}
}

func TestDecryptAESGCM_Tampered(t *testing.T) {
	t.Parallel()
	key := randomKey(t)
	nonce, err := GenerateNonce()
	if err != nil {
		t.Fatal(err)
	}

	ciphertext, err := EncryptAESGCM(key, []byte("secret"), nonce)
	if err != nil {
		t.Fatal(err)
	}
	ciphertext[0] ^= 0x01

	if _, err := DecryptAESGCM(key, nonce, ciphertext); err != ErrDecryptionFailed {
		t.Errorf("DecryptAESGCM() with tampered ciphertext error = %v, want ErrDecryptionFailed", err)
	}
}

func TestSealOpenAES_RoundTrip(t *testing.T) {
	t.Parallel()
	key := randomKey(t)
	plaintext := []byte("sealed key material")

	sealed, err := SealAES(key, plaintext)
	if err != nil {
		t.Fatalf("SealAES() error = %v", err)
	}
	if len(sealed) != AESNonceSize+len(plaintext)+AESTagSize {
		t.Errorf("sealed length = %d, want %d", len(sealed), AESNonceSize+len(plaintext)+AESTagSize)
	}

	opened, err := OpenAES(key, sealed)
	if err != nil {
		t.Fatalf("OpenAES() error = %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Errorf("opened = %q, want %q", opened, plaintext)
	}
}

func TestOpenAES_TooShort(t *testing.T) {
	t.Parallel()
	key := randomKey(t)

	if _, err := OpenAES(key, make([]byte, AESNonceSize)); err == nil {
		t.Error("OpenAES() with short blob should fail")
	}
}

func TestGenerateNonce_Unique(t *testing.T) {
	t.Parallel()
	a, err := GenerateNonce()
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateNonce()
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(a, b) {
		t.Error("two generated nonces are equal")
	}
}
