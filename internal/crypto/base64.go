package crypto

import (
	"encoding/base64"
)

// ToBase64 encodes bytes to standard base64 with padding. This is the
// encoding used for the persisted payload columns.
func ToBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// FromBase64 decodes standard base64 (with padding) to bytes.
func FromBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

// DecodeBase64 decodes base64 leniently, trying standard and URL-safe
// alphabets with and without padding. Payloads written by older clients
// used the URL-safe alphabet.
func DecodeBase64(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}

	data, err = base64.RawStdEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}

	data, err = base64.RawURLEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}

	return base64.URLEncoding.DecodeString(s)
}
