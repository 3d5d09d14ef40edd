package chatseal

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/chatseal/client-go/internal/crypto"
)

// Codec converts between plaintext and encrypted payloads, applying the
// fallback and placeholder policy the UI layer renders.
type Codec struct {
	svc         CryptoService
	km          *KeyManager
	dir         Directory
	workspaceID string
	log         *logrus.Logger
}

func newCodec(svc CryptoService, km *KeyManager, dir Directory, workspaceID string, log *logrus.Logger) *Codec {
	return &Codec{
		svc:         svc,
		km:          km,
		dir:         dir,
		workspaceID: workspaceID,
		log:         log,
	}
}

// Encrypt encrypts plaintext for a chat, provisioning the chat's key on
// first use when the workspace context is known.
//
// Concurrent sends to a keyless chat may race to provision; the race is
// safe because grant creation is idempotent.
func (c *Codec) Encrypt(ctx context.Context, plaintext, chatID string) (*EncryptedPayload, error) {
	if !c.km.Unlocked() {
		return nil, ErrNotUnlocked
	}

	key, err := c.km.contentKey(ctx, chatID)
	if isNotFound(err) && c.workspaceID != "" {
		if perr := c.autoProvision(ctx, chatID); perr != nil {
			return nil, perr
		}
		key, err = c.km.contentKey(ctx, chatID)
	}
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %v", ErrNoKey, err)
		}
		return nil, err
	}

	keyVersion := 1
	if record, rerr := c.svc.GetChatKeyRecord(ctx, chatID); rerr == nil {
		keyVersion = record.KeyVersion
	}

	ciphertext, iv, err := c.svc.EncryptMessage(ctx, []byte(plaintext), key)
	if err != nil {
		return nil, wrapServiceError(err)
	}

	return &EncryptedPayload{
		Ciphertext: crypto.ToBase64(ciphertext),
		IV:         crypto.ToBase64(iv),
		Algorithm:  AlgorithmAESGCM,
		KeyVersion: keyVersion,
	}, nil
}

// autoProvision creates the chat key for every current workspace member.
func (c *Codec) autoProvision(ctx context.Context, chatID string) error {
	members, err := c.dir.ListMembers(ctx, c.workspaceID)
	if err != nil {
		return &ProvisionError{ChatID: chatID, WorkspaceID: c.workspaceID, Err: err}
	}
	if len(members) == 0 {
		return &ProvisionError{ChatID: chatID, WorkspaceID: c.workspaceID, Err: fmt.Errorf("workspace has no members")}
	}

	c.log.WithFields(logrus.Fields{
		"chat":    chatID,
		"members": len(members),
	}).Info("auto-provisioning chat key")

	if err := c.km.CreateChatKey(ctx, chatID, members); err != nil {
		return &ProvisionError{ChatID: chatID, WorkspaceID: c.workspaceID, Err: err}
	}
	return nil
}

// Decrypt recovers the plaintext of an encrypted payload.
//
// Failure taxonomy: a locked session returns ErrNotUnlocked; a missing key
// returns ErrNoKey; a structurally invalid payload returns
// ErrMalformedPayload before any service call; and after the primary key
// and the one legacy fallback both fail authentication, the result is
// ErrUnrecoverable and the chat's cached key is invalidated so the next
// attempt re-derives.
func (c *Codec) Decrypt(ctx context.Context, payload *EncryptedPayload, chatID string) (string, error) {
	if !c.km.Unlocked() {
		return "", ErrNotUnlocked
	}

	key, err := c.km.contentKey(ctx, chatID)
	if err != nil {
		if isNotFound(err) {
			return "", &DecryptError{ChatID: chatID, Stage: "key", Err: fmt.Errorf("%w: %v", ErrNoKey, err)}
		}
		return "", &DecryptError{ChatID: chatID, Stage: "key", Err: err}
	}

	ciphertext, iv, err := decodePayload(payload)
	if err != nil {
		return "", &DecryptError{ChatID: chatID, Stage: "payload", Err: err}
	}

	plaintext, err := c.svc.DecryptMessage(ctx, ciphertext, iv, key)
	if err == nil {
		return string(plaintext), nil
	}
	if !isAuthFailure(err) {
		return "", &DecryptError{ChatID: chatID, Stage: "primary", Err: wrapServiceError(err)}
	}

	// The cached key failed authentication. Try the one legacy derivation
	// before giving up; material written by pre-v1 clients decrypts here.
	legacyKey, lerr := c.svc.DeriveLegacyChatKey(ctx, chatID)
	if lerr == nil {
		plaintext, lerr = c.svc.DecryptMessage(ctx, ciphertext, iv, legacyKey)
		if lerr == nil {
			c.log.WithField("chat", chatID).Debug("decrypted with legacy derivation")
			return string(plaintext), nil
		}
	}

	// Both attempts failed with the key present: the cached key is wrong.
	// Evict it so the next attempt re-derives instead of repeating the
	// same failure. Other chats' entries are untouched.
	c.km.cache.invalidate(chatID)

	return "", &DecryptError{
		ChatID: chatID,
		Stage:  "legacy",
		Err:    fmt.Errorf("%w: %w", ErrUnrecoverable, ErrAuthFailure),
	}
}

// decodePayload validates payload structure and decodes its fields.
// Malformed payloads fail here, before any key is used.
func decodePayload(payload *EncryptedPayload) (ciphertext, iv []byte, err error) {
	if payload == nil || payload.Ciphertext == "" || payload.IV == "" {
		return nil, nil, fmt.Errorf("%w: missing ciphertext or iv", ErrMalformedPayload)
	}
	if payload.Algorithm != "" && payload.Algorithm != AlgorithmAESGCM {
		return nil, nil, fmt.Errorf("%w: unsupported algorithm %q", ErrUnrecoverable, payload.Algorithm)
	}

	ciphertext, err = crypto.DecodeBase64(payload.Ciphertext)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: ciphertext: %v", ErrMalformedPayload, err)
	}
	iv, err = crypto.DecodeBase64(payload.IV)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: iv: %v", ErrMalformedPayload, err)
	}
	return ciphertext, iv, nil
}

// placeholderFor maps a decrypt failure to the placeholder the UI renders.
func placeholderFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotUnlocked):
		return PlaceholderLocked
	default:
		return PlaceholderUnrecoverable
	}
}
