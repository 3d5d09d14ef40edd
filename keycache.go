package chatseal

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// keyCache memoizes unwrapped chat content keys for the duration of a
// session. It is owned by a KeyManager instance, never shared across
// sessions of different users.
//
// Invalidation is deliberately narrow: a single entry is evicted only when
// a decryption failed because the key was wrong (authentication failure).
// A missing key never evicts anything.
type keyCache struct {
	mu   sync.RWMutex
	keys map[string][]byte // chatID -> content key
	log  *logrus.Logger
}

func newKeyCache(log *logrus.Logger) *keyCache {
	return &keyCache{
		keys: make(map[string][]byte),
		log:  log,
	}
}

// lookup returns the memoized content key for a chat, if present.
func (c *keyCache) lookup(chatID string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key, ok := c.keys[chatID]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(key))
	copy(out, key)
	return out, true
}

// put memoizes a content key. Concurrent puts for the same chat are
// harmless: derivation is deterministic, so racing writers store the same
// key.
func (c *keyCache) put(chatID string, key []byte) {
	cp := make([]byte, len(key))
	copy(cp, key)
	c.mu.Lock()
	c.keys[chatID] = cp
	c.mu.Unlock()
}

// invalidate removes the entry for a single chat. Called only on
// authenticated-decryption failure.
func (c *keyCache) invalidate(chatID string) {
	c.mu.Lock()
	_, present := c.keys[chatID]
	delete(c.keys, chatID)
	c.mu.Unlock()
	if present {
		c.log.WithField("chat", chatID).Debug("invalidated cached content key")
	}
}

// clear drops every entry. Called on lock and when a different user
// unlocks.
func (c *keyCache) clear() {
	c.mu.Lock()
	c.keys = make(map[string][]byte)
	c.mu.Unlock()
}

// size returns the number of cached keys.
func (c *keyCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.keys)
}
