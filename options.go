package chatseal

import (
	"github.com/sirupsen/logrus"

	"github.com/chatseal/client-go/persist"
)

// clientConfig holds configuration for the client.
type clientConfig struct {
	svc          CryptoService
	messageStore MessageStore
	persistStore persist.Store
	dir          Directory
	workspaceID  string
	logger       *logrus.Logger
}

// Option configures the client.
type Option func(*clientConfig)

// WithCryptoService plugs in a crypto service implementation. Without it
// the client runs the in-process service over the configured (or default
// in-memory) persist store.
func WithCryptoService(svc CryptoService) Option {
	return func(c *clientConfig) {
		c.svc = svc
	}
}

// WithMessageStore sets the message store. Without it the client uses an
// adapter over the configured persist store.
func WithMessageStore(store MessageStore) Option {
	return func(c *clientConfig) {
		c.messageStore = store
	}
}

// WithPersistStore sets the storage backend that backs the default crypto
// service and message store. Defaults to an in-memory store.
func WithPersistStore(store persist.Store) Option {
	return func(c *clientConfig) {
		c.persistStore = store
	}
}

// WithDirectory sets the workspace membership directory.
func WithDirectory(dir Directory) Option {
	return func(c *clientConfig) {
		c.dir = dir
	}
}

// WithWorkspace sets the active workspace context. Auto-provisioning of
// chat keys on send requires it; without a workspace the send path fails
// with ErrNoKey for keyless chats instead of provisioning.
func WithWorkspace(workspaceID string) Option {
	return func(c *clientConfig) {
		c.workspaceID = workspaceID
	}
}

// WithLogger sets the logger. Defaults to a warn-level logger. Key
// material is never logged at any level.
func WithLogger(logger *logrus.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}
