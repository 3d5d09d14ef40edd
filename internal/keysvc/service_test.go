package keysvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatseal/client-go/internal/crypto"
	"github.com/chatseal/client-go/persist"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store := persist.NewMemoryStore()
	t.Cleanup(func() { store.Close() })
	return New(store, nil)
}

func TestInitializeUser(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	passwordKey := crypto.PasswordKey("alice", "s3cret")

	profile, masterKey, err := svc.InitializeUser(ctx, "alice", passwordKey)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.UserID)
	assert.Equal(t, "argon2id:v1", profile.KDF)
	assert.Len(t, profile.MasterKeySalt, crypto.SaltSize)
	assert.Len(t, profile.PublicKey, crypto.MLKEMPublicKeySize)
	assert.Len(t, masterKey, crypto.AESKeySize)

	// The sealed secret key opens under the returned master key.
	secretKey, err := crypto.OpenAES(masterKey, profile.SealedSecretKey)
	require.NoError(t, err)
	assert.Len(t, secretKey, crypto.MLKEMSecretKeySize)

	// And the stored profile round-trips.
	got, err := svc.GetUserKeys(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, profile.PublicKey, got.PublicKey)
}

func TestGetUserKeys_NotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetUserKeys(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestDeriveMasterKey_MatchesInitialization(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	passwordKey := crypto.PasswordKey("alice", "s3cret")
	profile, masterKey, err := svc.InitializeUser(ctx, "alice", passwordKey)
	require.NoError(t, err)

	derived, err := svc.DeriveMasterKey(ctx, passwordKey, profile.MasterKeySalt)
	require.NoError(t, err)
	assert.Equal(t, masterKey, derived)

	_, err = svc.DeriveMasterKey(ctx, passwordKey, nil)
	assert.ErrorIs(t, err, ErrCorruptProfile)
}

func TestCreateChatKey_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	contentKey, err := svc.DeriveChatKey(ctx, "chat-1", "ws-1")
	require.NoError(t, err)

	created, err := svc.CreateChatKey(ctx, "chat-1", "alice", []string{"alice", "bob"}, contentKey)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	// Same call again: nothing new.
	created, err = svc.CreateChatKey(ctx, "chat-1", "alice", []string{"alice", "bob"}, contentKey)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	// Overlapping user set: only the new user gets a grant.
	created, err = svc.CreateChatKey(ctx, "chat-1", "alice", []string{"bob", "carol"}, contentKey)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	record, err := svc.GetChatKeyRecord(ctx, "chat-1")
	require.NoError(t, err)
	assert.Equal(t, 1, record.KeyVersion)
	assert.Equal(t, "alice", record.CreatedBy)
}

func TestCreateChatKey_WrapsToProfiles(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	// Alice has a profile, bob does not.
	passwordKey := crypto.PasswordKey("alice", "s3cret")
	profile, masterKey, err := svc.InitializeUser(ctx, "alice", passwordKey)
	require.NoError(t, err)

	contentKey, err := svc.DeriveChatKey(ctx, "chat-1", "ws-1")
	require.NoError(t, err)

	created, err := svc.CreateChatKey(ctx, "chat-1", "alice", []string{"alice", "bob"}, contentKey)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	aliceGrant, err := svc.GetGrant(ctx, "chat-1", 1, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, aliceGrant.WrappedKey)

	// The wrapped key unwraps to the content key with alice's keypair.
	secretKey, err := crypto.OpenAES(masterKey, profile.SealedSecretKey)
	require.NoError(t, err)
	keypair, err := crypto.KeypairFromSecretKey(secretKey)
	require.NoError(t, err)
	unwrapped, err := crypto.UnwrapKey(aliceGrant.WrappedKey, keypair)
	require.NoError(t, err)
	assert.Equal(t, contentKey, unwrapped)

	// Bob's grant is derivation-only.
	bobGrant, err := svc.GetGrant(ctx, "chat-1", 1, "bob")
	require.NoError(t, err)
	assert.Empty(t, bobGrant.WrappedKey)
}

func TestGetGrant_NotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetGrant(context.Background(), "chat-1", 1, "nobody")
	assert.ErrorIs(t, err, ErrGrantNotFound)

	_, err = svc.GetChatKeyRecord(context.Background(), "chat-1")
	assert.ErrorIs(t, err, ErrChatKeyNotFound)
}

func TestEncryptDecryptMessage(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	contentKey, err := svc.DeriveChatKey(ctx, "chat-1", "ws-1")
	require.NoError(t, err)

	ciphertext, iv, err := svc.EncryptMessage(ctx, []byte("hello"), contentKey)
	require.NoError(t, err)
	assert.Len(t, iv, crypto.AESNonceSize)

	plaintext, err := svc.DecryptMessage(ctx, ciphertext, iv, contentKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), plaintext)
}

func TestDecryptMessage_WrongKey(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	contentKey, err := svc.DeriveChatKey(ctx, "chat-1", "ws-1")
	require.NoError(t, err)
	ciphertext, iv, err := svc.EncryptMessage(ctx, []byte("hello"), contentKey)
	require.NoError(t, err)

	wrongKey, err := svc.DeriveChatKey(ctx, "chat-2", "ws-1")
	require.NoError(t, err)

	_, err = svc.DecryptMessage(ctx, ciphertext, iv, wrongKey)
	assert.ErrorIs(t, err, ErrDecryptFailed)
}
