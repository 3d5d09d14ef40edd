package keysvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chatseal/client-go/internal/crypto"
	"github.com/chatseal/client-go/persist"
)

// kdfScheme names the master key derivation used by newly created profiles.
const kdfScheme = "argon2id:v1"

// Service is the in-process crypto service. Safe for concurrent use; all
// state lives in the backing store.
type Service struct {
	store persist.Store
	log   *logrus.Logger
}

// New creates a local crypto service over the given store.
func New(store persist.Store, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.WarnLevel)
	}
	return &Service{store: store, log: log}
}

// storeErr wraps a storage failure as an unavailable-service error,
// preserving not-found conditions.
func storeErr(op string, err error) error {
	if errors.Is(err, persist.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}

// GetUserKeys returns the crypto profile for a user.
func (s *Service) GetUserKeys(ctx context.Context, userID string) (*persist.Profile, error) {
	p, err := s.store.GetProfile(userID)
	if err != nil {
		if errors.Is(err, persist.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, userID)
		}
		return nil, storeErr("get profile", err)
	}
	if len(p.MasterKeySalt) == 0 || len(p.PublicKey) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrCorruptProfile, userID)
	}
	return p, nil
}

// InitializeUser provisions a new crypto profile: generates the master key
// salt, derives the master key from the caller's password key, generates an
// ML-KEM keypair, and seals its secret key under the master key. Returns
// the stored profile and the derived master key. The master key is returned
// to the caller only; it is never persisted.
func (s *Service) InitializeUser(ctx context.Context, userID string, passwordKey []byte) (*persist.Profile, []byte, error) {
	salt, err := crypto.GenerateSalt()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	masterKey := crypto.MasterKey(passwordKey, salt)

	keypair, err := crypto.GenerateKeypair()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: generate keypair: %v", ErrUnavailable, err)
	}

	sealedSK, err := crypto.SealAES(masterKey, keypair.SecretKey)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: seal secret key: %v", ErrUnavailable, err)
	}

	profile := &persist.Profile{
		UserID:          userID,
		MasterKeySalt:   salt,
		KDF:             kdfScheme,
		PublicKey:       keypair.PublicKey,
		SealedSecretKey: sealedSK,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.store.SaveProfile(profile); err != nil {
		return nil, nil, storeErr("save profile", err)
	}

	s.log.WithField("user", userID).Info("initialized crypto profile")

	return profile, masterKey, nil
}

// DeriveMasterKey derives a user's master key from the password key and
// the profile's stored salt.
func (s *Service) DeriveMasterKey(ctx context.Context, passwordKey, salt []byte) ([]byte, error) {
	if len(salt) == 0 {
		return nil, fmt.Errorf("%w: empty salt", ErrCorruptProfile)
	}
	return crypto.MasterKey(passwordKey, salt), nil
}

// DeriveChatKey derives a chat content key via the standardized path.
func (s *Service) DeriveChatKey(ctx context.Context, chatID, workspaceID string) ([]byte, error) {
	key, err := crypto.DeriveChatKey(chatID, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("%w: derive chat key: %v", ErrUnavailable, err)
	}
	return key, nil
}

// DeriveLegacyChatKey derives a chat content key via the pre-v1 path.
func (s *Service) DeriveLegacyChatKey(ctx context.Context, chatID string) ([]byte, error) {
	return crypto.DeriveLegacyChatKey(chatID), nil
}

// CreateChatKey establishes a chat key record (at key version 1 if the chat
// has none) and creates one grant per user, wrapping the given content key
// to each user's public key. Users that already hold a grant at the
// record's key version are skipped, so the operation is idempotent.
// Returns the number of grants actually created.
func (s *Service) CreateChatKey(ctx context.Context, chatID, ownerUserID string, userIDs []string, contentKey []byte) (int, error) {
	record, err := s.store.GetChatKeyRecord(chatID)
	if errors.Is(err, persist.ErrNotFound) {
		record = &persist.ChatKeyRecord{
			ChatID:     chatID,
			KeyVersion: 1,
			CreatedBy:  ownerUserID,
			CreatedAt:  time.Now().UTC(),
		}
		if err := s.store.SaveChatKeyRecord(record); err != nil {
			return 0, storeErr("save chat key record", err)
		}
	} else if err != nil {
		return 0, storeErr("get chat key record", err)
	}

	created := 0
	for _, userID := range userIDs {
		_, err := s.store.GetGrant(chatID, record.KeyVersion, userID)
		if err == nil {
			continue // grant already exists
		}
		if !errors.Is(err, persist.ErrNotFound) {
			return created, storeErr("get grant", err)
		}

		grant := &persist.Grant{
			ChatID:     chatID,
			KeyVersion: record.KeyVersion,
			UserID:     userID,
			CreatedAt:  time.Now().UTC(),
		}

		// Wrap the content key to the user's public key. Users without a
		// profile yet get a derivation-only grant; their client re-derives
		// the key once they unlock.
		profile, perr := s.store.GetProfile(userID)
		if perr == nil && len(profile.PublicKey) > 0 {
			wrapped, werr := crypto.WrapKey(contentKey, profile.PublicKey)
			if werr != nil {
				return created, fmt.Errorf("%w: wrap key for %s: %v", ErrUnavailable, userID, werr)
			}
			grant.WrappedKey = wrapped
		} else if perr != nil && !errors.Is(perr, persist.ErrNotFound) {
			return created, storeErr("get profile", perr)
		}

		if err := s.store.SaveGrant(grant); err != nil {
			return created, storeErr("save grant", err)
		}
		created++
	}

	if created > 0 {
		s.log.WithFields(logrus.Fields{
			"chat":    chatID,
			"version": record.KeyVersion,
			"grants":  created,
		}).Debug("created chat key grants")
	}

	return created, nil
}

// GetChatKeyRecord returns the chat key record for a chat.
func (s *Service) GetChatKeyRecord(ctx context.Context, chatID string) (*persist.ChatKeyRecord, error) {
	r, err := s.store.GetChatKeyRecord(chatID)
	if err != nil {
		if errors.Is(err, persist.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrChatKeyNotFound, chatID)
		}
		return nil, storeErr("get chat key record", err)
	}
	return r, nil
}

// GetGrant returns the grant for (chatID, keyVersion, userID).
func (s *Service) GetGrant(ctx context.Context, chatID string, keyVersion int, userID string) (*persist.Grant, error) {
	g, err := s.store.GetGrant(chatID, keyVersion, userID)
	if err != nil {
		if errors.Is(err, persist.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s v%d for %s", ErrGrantNotFound, chatID, keyVersion, userID)
		}
		return nil, storeErr("get grant", err)
	}
	return g, nil
}

// EncryptMessage encrypts plaintext under a content key with a fresh IV.
// Returns the ciphertext (with auth tag) and the IV.
func (s *Service) EncryptMessage(ctx context.Context, plaintext, contentKey []byte) (ciphertext, iv []byte, err error) {
	iv, err = crypto.GenerateNonce()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	ciphertext, err = crypto.EncryptAESGCM(contentKey, plaintext, iv)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: encrypt: %v", ErrUnavailable, err)
	}
	return ciphertext, iv, nil
}

// DecryptMessage decrypts a ciphertext under a content key. An
// authentication failure surfaces as ErrDecryptFailed.
func (s *Service) DecryptMessage(ctx context.Context, ciphertext, iv, contentKey []byte) ([]byte, error) {
	plaintext, err := crypto.DecryptAESGCM(contentKey, iv, ciphertext)
	if err != nil {
		if errors.Is(err, crypto.ErrDecryptionFailed) {
			return nil, ErrDecryptFailed
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return plaintext, nil
}
