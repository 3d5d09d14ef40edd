package chatseal

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/chatseal/client-go/internal/keysvc"
	"github.com/chatseal/client-go/persist"
)

// Client is the entry point for the chatseal pipeline. One instance per
// running client process; it owns the session state, the key cache, and
// the update queue.
type Client struct {
	svc    CryptoService
	store  MessageStore
	dir    Directory
	log    *logrus.Logger
	wsID   string
	km     *KeyManager
	codec  *Codec
	grants *GrantSynchronizer
	queue  *updateQueue

	// ownedStore is the persist store the client created itself and must
	// close. Nil when the caller supplied every collaborator.
	ownedStore persist.Store

	mu     sync.RWMutex
	closed bool
}

// New creates a client. With no options it runs fully in-process: an
// in-memory store, the local crypto service, and an empty static
// directory, enough for tests and single-process use. Production
// embedders plug in their own collaborators.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = logrus.New()
		cfg.logger.SetLevel(logrus.WarnLevel)
	}

	var owned persist.Store
	if cfg.persistStore == nil && (cfg.svc == nil || cfg.messageStore == nil) {
		cfg.persistStore = persist.NewMemoryStore()
		owned = cfg.persistStore
	}
	if cfg.svc == nil {
		cfg.svc = keysvc.New(cfg.persistStore, cfg.logger)
	}
	if cfg.messageStore == nil {
		cfg.messageStore = NewMessageStore(cfg.persistStore)
	}
	if cfg.dir == nil {
		cfg.dir = NewStaticDirectory()
	}

	km := newKeyManager(cfg.svc, cfg.workspaceID, cfg.logger)

	c := &Client{
		svc:        cfg.svc,
		store:      cfg.messageStore,
		dir:        cfg.dir,
		log:        cfg.logger,
		wsID:       cfg.workspaceID,
		km:         km,
		ownedStore: owned,
	}
	c.codec = newCodec(cfg.svc, km, cfg.dir, cfg.workspaceID, cfg.logger)
	c.grants = newGrantSynchronizer(cfg.svc, km, cfg.dir, cfg.logger)
	c.queue = newUpdateQueue(cfg.messageStore, cfg.logger)

	return c, nil
}

// checkClosed returns ErrClientClosed if the client has been closed.
func (c *Client) checkClosed() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClientClosed
	}
	return nil
}

// Unlock derives the session keys for a user. See [KeyManager.Unlock].
func (c *Client) Unlock(ctx context.Context, userID, credential string) error {
	if err := c.checkClosed(); err != nil {
		return err
	}
	return c.km.Unlock(ctx, userID, credential)
}

// Lock clears the session and all cached key material.
func (c *Client) Lock() {
	c.km.Lock()
}

// Unlocked reports whether a session is active.
func (c *Client) Unlocked() bool {
	return c.km.Unlocked()
}

// Owner returns the unlocked session's user ID, or "" when locked.
func (c *Client) Owner() string {
	return c.km.Owner()
}

// CreateChatKey establishes a chat's content key and grants it to the
// given users. See [KeyManager.CreateChatKey].
func (c *Client) CreateChatKey(ctx context.Context, chatID string, userIDs []string) error {
	if err := c.checkClosed(); err != nil {
		return err
	}
	return c.km.CreateChatKey(ctx, chatID, userIDs)
}

// SendMessage encrypts plaintext and stores the resulting message. The
// chat's key is auto-provisioned for all current workspace members when
// missing. Requires an unlocked session; there is no silent plaintext
// fallback; see [Client.SendPlaintext] for the explicit one.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) (*ChatMessage, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}

	payload, err := c.codec.Encrypt(ctx, text, chatID)
	if err != nil {
		return nil, err
	}

	msg := &ChatMessage{
		ID:          newMessageID(),
		ChatID:      chatID,
		WorkspaceID: c.wsID,
		SenderID:    c.km.Owner(),
		CreatedAt:   now(),
	}
	applyPayload(msg, payload)

	// The stored record carries only ciphertext. The plaintext is set on
	// the returned copy for the sender's immediate display.
	if err := c.store.SaveMessage(ctx, msg); err != nil {
		return nil, err
	}
	msg.Text = text
	return msg, nil
}

// SendPlaintext stores an unencrypted message. This is the explicit
// fallback for when encryption is unavailable; it is logged so the choice
// is observable, and it works with a locked session.
func (c *Client) SendPlaintext(ctx context.Context, chatID, senderID, text string) (*ChatMessage, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}

	c.log.WithField("chat", chatID).Warn("sending unencrypted message")

	msg := &ChatMessage{
		ID:          newMessageID(),
		ChatID:      chatID,
		WorkspaceID: c.wsID,
		SenderID:    senderID,
		IsEncrypted: false,
		Text:        text,
		CreatedAt:   now(),
	}
	if err := c.store.SaveMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Messages returns a chat's stored messages ordered by creation time,
// without decrypting anything.
func (c *Client) Messages(ctx context.Context, chatID string) ([]*ChatMessage, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	return c.store.ListMessages(ctx, chatID)
}

// DecryptMessage synchronously decrypts one stored message and returns its
// plaintext. Unencrypted messages return their text as-is.
func (c *Client) DecryptMessage(ctx context.Context, msg *ChatMessage) (string, error) {
	if err := c.checkClosed(); err != nil {
		return "", err
	}
	if !msg.IsEncrypted {
		return msg.Text, nil
	}
	return c.codec.Decrypt(ctx, payloadFromMessage(msg), msg.ChatID)
}

// DecryptMessages decrypts a batch of stored messages asynchronously,
// fire-and-forget per message. Each message first gets the transient
// decrypting placeholder, then its resolved plaintext (or a terminal
// placeholder) through the update queue. Results for different messages
// are independent; no ordering is guaranteed between them.
func (c *Client) DecryptMessages(ctx context.Context, msgs ...*ChatMessage) {
	if c.checkClosed() != nil {
		return
	}

	for _, msg := range msgs {
		if !msg.IsEncrypted {
			continue
		}

		c.queue.post(MessageUpdate{
			MessageID:   msg.ID,
			ChatID:      msg.ChatID,
			Text:        PlaceholderDecrypting,
			Placeholder: true,
		})

		msg := msg
		go func() {
			text, err := c.codec.Decrypt(ctx, payloadFromMessage(msg), msg.ChatID)
			if err != nil {
				c.queue.post(MessageUpdate{
					MessageID:   msg.ID,
					ChatID:      msg.ChatID,
					Text:        placeholderFor(err),
					Placeholder: true,
					Err:         err,
				})
				return
			}
			c.queue.post(MessageUpdate{
				MessageID: msg.ID,
				ChatID:    msg.ChatID,
				Text:      text,
			})
		}()
	}
}

// OnMessageUpdate registers a callback invoked for every applied message
// update. Returns an unsubscribe function.
func (c *Client) OnMessageUpdate(fn func(MessageUpdate)) func() {
	return c.queue.subscribe(fn)
}

// SyncNewMember grants a newly admitted workspace member access to the
// workspace's existing chat keys. See [GrantSynchronizer.SyncNewMember].
func (c *Client) SyncNewMember(ctx context.Context, workspaceID, userID string) (int, error) {
	if err := c.checkClosed(); err != nil {
		return 0, err
	}
	return c.grants.SyncNewMember(ctx, workspaceID, userID)
}

// Close locks the session, drains the update queue, and releases any
// resources the client owns.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.km.Lock()
	c.queue.close()

	if c.ownedStore != nil {
		return c.ownedStore.Close()
	}
	return nil
}
