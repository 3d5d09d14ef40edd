package chatseal

import (
	"context"
	"fmt"
	"sync"

	"github.com/awnumar/memguard"
	"github.com/sirupsen/logrus"

	"github.com/chatseal/client-go/internal/crypto"
)

// session is the unlocked state: the session owner, their master key, and
// their unwrapping keypair. The master key lives in a locked memory buffer
// and is destroyed on lock; it never touches durable storage.
type session struct {
	userID    string
	masterKey *memguard.LockedBuffer
	keypair   *crypto.Keypair
}

// KeyManager owns the unlock/lock lifecycle and chat key provisioning for
// one client instance. All session state is held here, never in package
// globals.
type KeyManager struct {
	svc         CryptoService
	cache       *keyCache
	workspaceID string
	log         *logrus.Logger

	mu   sync.RWMutex
	sess *session
}

func newKeyManager(svc CryptoService, workspaceID string, log *logrus.Logger) *KeyManager {
	return &KeyManager{
		svc:         svc,
		cache:       newKeyCache(log),
		workspaceID: workspaceID,
		log:         log,
	}
}

// Unlock derives the session keys for a user from their session credential.
//
// Re-unlocking the session's current owner is a no-op that preserves the
// key cache. Unlocking a different user replaces the session and clears
// the cache. A user without a crypto profile gets one provisioned on first
// unlock.
func (m *KeyManager) Unlock(ctx context.Context, userID, credential string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess != nil && m.sess.userID == userID {
		return nil
	}

	passwordKey := crypto.PasswordKey(userID, credential)

	var masterKey []byte
	profile, err := m.svc.GetUserKeys(ctx, userID)
	switch {
	case err == nil:
		masterKey, err = m.svc.DeriveMasterKey(ctx, passwordKey, profile.MasterKeySalt)
		if err != nil {
			return &UnlockError{UserID: userID, Reason: "master key derivation failed", Err: wrapServiceError(err)}
		}
	case isNotFound(err):
		profile, masterKey, err = m.svc.InitializeUser(ctx, userID, passwordKey)
		if err != nil {
			return &UnlockError{UserID: userID, Reason: "profile provisioning failed", Err: wrapServiceError(err)}
		}
		m.log.WithField("user", userID).Info("provisioned crypto profile on first unlock")
	default:
		return &UnlockError{UserID: userID, Reason: "crypto service unreachable", Err: wrapServiceError(err)}
	}

	// Unseal the user's keypair. A wrong credential produces a wrong
	// master key, which fails authentication here.
	secretKey, err := crypto.OpenAES(masterKey, profile.SealedSecretKey)
	if err != nil {
		memguard.WipeBytes(masterKey)
		return &UnlockError{UserID: userID, Reason: "invalid credential or corrupted profile", Err: err}
	}

	keypair, err := crypto.KeypairFromSecretKey(secretKey)
	if err != nil {
		memguard.WipeBytes(masterKey)
		return &UnlockError{UserID: userID, Reason: "corrupted profile", Err: err}
	}

	// A different previous owner means their cached keys must go.
	if m.sess != nil {
		m.destroySessionLocked()
		m.cache.clear()
	}

	m.sess = &session{
		userID:    userID,
		masterKey: memguard.NewBufferFromBytes(masterKey),
		keypair:   keypair,
	}

	m.log.WithField("user", userID).Info("session unlocked")
	return nil
}

// Lock clears the session, the master key, and the key cache. Always
// succeeds; locking a locked session is a no-op.
func (m *KeyManager) Lock() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess == nil {
		return
	}

	userID := m.sess.userID
	m.destroySessionLocked()
	m.cache.clear()

	m.log.WithField("user", userID).Info("session locked")
}

// destroySessionLocked wipes session key material. Caller holds m.mu.
func (m *KeyManager) destroySessionLocked() {
	if m.sess == nil {
		return
	}
	m.sess.masterKey.Destroy()
	memguard.WipeBytes(m.sess.keypair.SecretKey)
	m.sess = nil
}

// Unlocked reports whether a session is active.
func (m *KeyManager) Unlocked() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess != nil
}

// Owner returns the unlocked session's user ID, or "" when locked.
func (m *KeyManager) Owner() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.sess == nil {
		return ""
	}
	return m.sess.userID
}

// currentSession returns the active session for key operations.
func (m *KeyManager) currentSession() (*session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.sess == nil {
		return nil, ErrNotUnlocked
	}
	return m.sess, nil
}

// CreateChatKey establishes the chat's content key and grants it to each
// of the given users. Users already holding a grant are skipped; calling
// this twice with the same inputs produces the same grant set as calling
// it once. Concurrent calls for the same chat are safe for the same
// reason: grant creation is idempotent, not serialized.
func (m *KeyManager) CreateChatKey(ctx context.Context, chatID string, userIDs []string) error {
	sess, err := m.currentSession()
	if err != nil {
		return err
	}

	contentKey, err := m.svc.DeriveChatKey(ctx, chatID, m.workspaceID)
	if err != nil {
		return wrapServiceError(err)
	}

	created, err := m.svc.CreateChatKey(ctx, chatID, sess.userID, userIDs, contentKey)
	if err != nil {
		return wrapServiceError(err)
	}

	// Evict so the next read picks up the freshly granted material.
	m.cache.invalidate(chatID)

	if created > 0 {
		m.log.WithFields(logrus.Fields{
			"chat":   chatID,
			"grants": created,
		}).Info("chat key created")
	}
	return nil
}

// contentKey returns the chat's content key, memoized in the key cache.
func (m *KeyManager) contentKey(ctx context.Context, chatID string) ([]byte, error) {
	if key, ok := m.cache.lookup(chatID); ok {
		return key, nil
	}

	key, err := m.resolveContentKey(ctx, chatID)
	if err != nil {
		return nil, err
	}

	m.cache.put(chatID, key)
	return key, nil
}

// resolveContentKey obtains a chat's content key for the session owner.
//
// The owner must hold a grant for the chat's current key version; without
// one, no derivation is attempted (the grant is the authorization
// boundary). With a grant, the strategies run in order:
//
//  1. unwrap the grant's wrapped key with the session keypair
//  2. standardized derivation from (chatID, workspaceID)
//  3. legacy derivation from chatID alone
//
// The chain stops at the first success.
func (m *KeyManager) resolveContentKey(ctx context.Context, chatID string) ([]byte, error) {
	sess, err := m.currentSession()
	if err != nil {
		return nil, err
	}

	record, err := m.svc.GetChatKeyRecord(ctx, chatID)
	if err != nil {
		return nil, wrapServiceError(err)
	}

	grant, err := m.svc.GetGrant(ctx, chatID, record.KeyVersion, sess.userID)
	if err != nil {
		return nil, wrapServiceError(err)
	}

	if len(grant.WrappedKey) > 0 {
		key, err := crypto.UnwrapKey(grant.WrappedKey, sess.keypair)
		if err == nil {
			return key, nil
		}
		m.log.WithFields(logrus.Fields{
			"chat": chatID,
			"err":  err,
		}).Warn("grant unwrap failed, falling back to derivation")
	}

	key, err := m.svc.DeriveChatKey(ctx, chatID, m.workspaceID)
	if err == nil {
		return key, nil
	}
	m.log.WithFields(logrus.Fields{
		"chat": chatID,
		"err":  err,
	}).Warn("standardized derivation failed, trying legacy path")

	key, lerr := m.svc.DeriveLegacyChatKey(ctx, chatID)
	if lerr != nil {
		return nil, fmt.Errorf("%w: %v", wrapServiceError(err), lerr)
	}
	return key, nil
}
