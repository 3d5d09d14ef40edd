package persist

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
)

// Key prefixes for the record buckets inside the Badger keyspace.
const (
	prefixProfile = "profile/"
	prefixChatKey = "chatkey/"
	prefixGrant   = "grant/"
	prefixMessage = "msg/"
)

// BadgerConfig configures a Badger-backed store.
type BadgerConfig struct {
	// Path is the directory for the Badger database.
	Path string
	// Logger receives store-level log output. Badger's own logger is
	// disabled; a nil Logger gets a default warn-level one.
	Logger *logrus.Logger
	// SyncWrites enables synchronous writes. Off by default; the records
	// here are either recoverable or re-derivable.
	SyncWrites bool
}

// BadgerStore is a Store implementation backed by a local Badger database.
type BadgerStore struct {
	db  *badger.DB
	log *logrus.Logger
}

// NewBadgerStore opens (or creates) a Badger database at the configured path.
func NewBadgerStore(config BadgerConfig) (*BadgerStore, error) {
	if config.Logger == nil {
		config.Logger = logrus.New()
		config.Logger.SetLevel(logrus.WarnLevel)
	}

	opts := badger.DefaultOptions(config.Path)
	opts.Logger = nil
	opts.SyncWrites = config.SyncWrites

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store at %s: %w", config.Path, err)
	}

	config.Logger.WithField("path", config.Path).Debug("badger store opened")

	return &BadgerStore{db: db, log: config.Logger}, nil
}

// set marshals a record and writes it under the given key.
func (s *BadgerStore) set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// get reads and unmarshals the record under the given key.
func (s *BadgerStore) get(key string, v any) error {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	if err == badger.ErrKeyNotFound {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	return nil
}

// SaveProfile stores a user profile.
func (s *BadgerStore) SaveProfile(p *Profile) error {
	return s.set(prefixProfile+p.UserID, p)
}

// GetProfile returns the profile for userID.
func (s *BadgerStore) GetProfile(userID string) (*Profile, error) {
	var p Profile
	if err := s.get(prefixProfile+userID, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveChatKeyRecord stores a chat key record.
func (s *BadgerStore) SaveChatKeyRecord(r *ChatKeyRecord) error {
	return s.set(prefixChatKey+r.ChatID, r)
}

// GetChatKeyRecord returns the record for chatID.
func (s *BadgerStore) GetChatKeyRecord(chatID string) (*ChatKeyRecord, error) {
	var r ChatKeyRecord
	if err := s.get(prefixChatKey+chatID, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// SaveGrant stores a grant.
func (s *BadgerStore) SaveGrant(g *Grant) error {
	return s.set(prefixGrant+grantKey(g.ChatID, g.KeyVersion, g.UserID), g)
}

// GetGrant returns the grant for (chatID, keyVersion, userID).
func (s *BadgerStore) GetGrant(chatID string, keyVersion int, userID string) (*Grant, error) {
	var g Grant
	if err := s.get(prefixGrant+grantKey(chatID, keyVersion, userID), &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// SaveMessage stores a message.
func (s *BadgerStore) SaveMessage(m *Message) error {
	return s.set(prefixMessage+m.ID, m)
}

// GetMessage returns the message with the given ID.
func (s *BadgerStore) GetMessage(messageID string) (*Message, error) {
	var m Message
	if err := s.get(prefixMessage+messageID, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMessages returns all messages for a chat ordered by creation time.
func (s *BadgerStore) ListMessages(chatID string) ([]*Message, error) {
	var out []*Message
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(prefixMessage)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var m Message
				if err := json.Unmarshal(val, &m); err != nil {
					return err
				}
				if m.ChatID == chatID {
					out = append(out, &m)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list messages for %s: %w", chatID, err)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Close closes the underlying Badger database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
