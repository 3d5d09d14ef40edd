package persist

import (
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store implementation. It is the zero-config
// default for tests and short-lived sessions; nothing survives the process.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
	records  map[string]*ChatKeyRecord
	grants   map[string]*Grant
	messages map[string]*Message
	closed   bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]*Profile),
		records:  make(map[string]*ChatKeyRecord),
		grants:   make(map[string]*Grant),
		messages: make(map[string]*Message),
	}
}

func grantKey(chatID string, keyVersion int, userID string) string {
	return fmt.Sprintf("%s/%d/%s", chatID, keyVersion, userID)
}

// SaveProfile stores a user profile.
func (s *MemoryStore) SaveProfile(p *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	cp := *p
	s.profiles[p.UserID] = &cp
	return nil
}

// GetProfile returns the profile for userID.
func (s *MemoryStore) GetProfile(userID string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	p, ok := s.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// SaveChatKeyRecord stores a chat key record.
func (s *MemoryStore) SaveChatKeyRecord(r *ChatKeyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	cp := *r
	s.records[r.ChatID] = &cp
	return nil
}

// GetChatKeyRecord returns the record for chatID.
func (s *MemoryStore) GetChatKeyRecord(chatID string) (*ChatKeyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	r, ok := s.records[chatID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

// SaveGrant stores a grant.
func (s *MemoryStore) SaveGrant(g *Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	cp := *g
	s.grants[grantKey(g.ChatID, g.KeyVersion, g.UserID)] = &cp
	return nil
}

// GetGrant returns the grant for (chatID, keyVersion, userID).
func (s *MemoryStore) GetGrant(chatID string, keyVersion int, userID string) (*Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	g, ok := s.grants[grantKey(chatID, keyVersion, userID)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *g
	return &cp, nil
}

// SaveMessage stores a message.
func (s *MemoryStore) SaveMessage(m *Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	cp := *m
	s.messages[m.ID] = &cp
	return nil
}

// GetMessage returns the message with the given ID.
func (s *MemoryStore) GetMessage(messageID string) (*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	m, ok := s.messages[messageID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m
	return &cp, nil
}

// ListMessages returns all messages for a chat ordered by creation time.
func (s *MemoryStore) ListMessages(chatID string) ([]*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	var out []*Message
	for _, m := range s.messages {
		if m.ChatID == chatID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Close marks the store closed. Subsequent operations return ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
