package chatseal

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// GrantSynchronizer extends existing chat keys to newly admitted workspace
// members, reusing the key manager's grant primitives.
type GrantSynchronizer struct {
	svc CryptoService
	km  *KeyManager
	dir Directory
	log *logrus.Logger
}

func newGrantSynchronizer(svc CryptoService, km *KeyManager, dir Directory, log *logrus.Logger) *GrantSynchronizer {
	return &GrantSynchronizer{svc: svc, km: km, dir: dir, log: log}
}

// SyncNewMember grants a newly admitted member access to every chat in the
// workspace that already has an established key. Chats without a key, and
// chats the user already holds a grant for, are skipped; neither is an
// error. Returns the number of grants created; zero is a valid result for
// a workspace with no encrypted chats.
func (g *GrantSynchronizer) SyncNewMember(ctx context.Context, workspaceID, userID string) (int, error) {
	sess, err := g.km.currentSession()
	if err != nil {
		return 0, err
	}

	chats, err := g.dir.ListChats(ctx, workspaceID)
	if err != nil {
		return 0, fmt.Errorf("list workspace chats: %w", err)
	}

	granted := 0
	for _, chatID := range chats {
		record, err := g.svc.GetChatKeyRecord(ctx, chatID)
		if isNotFound(err) {
			continue // chat has no established key yet
		}
		if err != nil {
			return granted, wrapServiceError(err)
		}
		if record.KeyVersion != 1 {
			// Rotated chats need the rotation flow, not retroactive grants.
			continue
		}

		_, err = g.svc.GetGrant(ctx, chatID, record.KeyVersion, userID)
		if err == nil {
			continue // already granted
		}
		if !isNotFound(err) {
			return granted, wrapServiceError(err)
		}

		contentKey, err := g.svc.DeriveChatKey(ctx, chatID, workspaceID)
		if err != nil {
			return granted, wrapServiceError(err)
		}

		created, err := g.svc.CreateChatKey(ctx, chatID, sess.userID, []string{userID}, contentKey)
		if err != nil {
			return granted, wrapServiceError(err)
		}
		granted += created
	}

	g.log.WithFields(logrus.Fields{
		"workspace": workspaceID,
		"user":      userID,
		"granted":   granted,
	}).Info("synchronized grants for new member")

	return granted, nil
}
