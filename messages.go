package chatseal

import (
	"context"
	"errors"
	"fmt"

	"github.com/chatseal/client-go/persist"
)

// MessageStore is the externally-owned message record store the pipeline
// reads and writes. The SDK ships an adapter over a persist.Store.
type MessageStore interface {
	// SaveMessage stores a message record.
	SaveMessage(ctx context.Context, m *ChatMessage) error

	// GetMessage returns a message by ID.
	GetMessage(ctx context.Context, messageID string) (*ChatMessage, error)

	// ListMessages returns a chat's messages ordered by creation time.
	ListMessages(ctx context.Context, chatID string) ([]*ChatMessage, error)

	// SetDisplayText updates a message's display text cache. When
	// placeholder is true the write is dropped if the message already has
	// non-placeholder text: a failed decrypt attempt must never clobber
	// previously decrypted content.
	SetDisplayText(ctx context.Context, messageID, text string, placeholder bool) error
}

// storeMessages adapts a persist.Store to the MessageStore interface.
type storeMessages struct {
	store persist.Store
}

// NewMessageStore wraps a persist.Store as a MessageStore.
func NewMessageStore(store persist.Store) MessageStore {
	return &storeMessages{store: store}
}

func (s *storeMessages) SaveMessage(ctx context.Context, m *ChatMessage) error {
	return s.store.SaveMessage(m)
}

func (s *storeMessages) GetMessage(ctx context.Context, messageID string) (*ChatMessage, error) {
	return s.store.GetMessage(messageID)
}

func (s *storeMessages) ListMessages(ctx context.Context, chatID string) ([]*ChatMessage, error) {
	return s.store.ListMessages(chatID)
}

func (s *storeMessages) SetDisplayText(ctx context.Context, messageID, text string, placeholder bool) error {
	m, err := s.store.GetMessage(messageID)
	if err != nil {
		if errors.Is(err, persist.ErrNotFound) {
			return fmt.Errorf("set display text: message %s: %w", messageID, err)
		}
		return err
	}

	// A placeholder never replaces real decrypted (or never-encrypted) text.
	if placeholder && m.Text != "" && !m.TextIsPlaceholder {
		return nil
	}

	m.Text = text
	m.TextIsPlaceholder = placeholder
	return s.store.SaveMessage(m)
}
