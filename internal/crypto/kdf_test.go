package crypto

import (
	"bytes"
	"testing"
)

func TestPasswordKey(t *testing.T) {
	t.Parallel()
	a := PasswordKey("alice", "s3cret")
	b := PasswordKey("alice", "s3cret")
	if !bytes.Equal(a, b) {
		t.Error("password key not deterministic")
	}

	if bytes.Equal(a, PasswordKey("alice", "other")) {
		t.Error("different credentials produced the same password key")
	}
	if bytes.Equal(a, PasswordKey("bob", "s3cret")) {
		t.Error("different users produced the same password key")
	}
}

func TestMasterKey(t *testing.T) {
	t.Parallel()
	passwordKey := PasswordKey("alice", "s3cret")
	salt, err := GenerateSalt()
	if err != nil {
		t.Fatal(err)
	}

	a := MasterKey(passwordKey, salt)
	b := MasterKey(passwordKey, salt)
	if !bytes.Equal(a, b) {
		t.Error("master key not deterministic")
	}
	if len(a) != AESKeySize {
		t.Errorf("master key length = %d, want %d", len(a), AESKeySize)
	}

	otherSalt, err := GenerateSalt()
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(a, MasterKey(passwordKey, otherSalt)) {
		t.Error("different salts produced the same master key")
	}
}

func TestGenerateSalt(t *testing.T) {
	t.Parallel()
	a, err := GenerateSalt()
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != SaltSize {
		t.Errorf("salt length = %d, want %d", len(a), SaltSize)
	}

	b, err := GenerateSalt()
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(a, b) {
		t.Error("two generated salts are equal")
	}
}
