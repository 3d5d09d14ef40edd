package persist

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// StoreType selects a storage backend.
type StoreType string

const (
	// StoreTypeMemory keeps all records in process memory.
	StoreTypeMemory StoreType = "memory"
	// StoreTypeBadger persists records in a local Badger database.
	StoreTypeBadger StoreType = "badger"
)

// Config selects and configures a storage backend.
type Config struct {
	Type StoreType
	// Path is the database directory. Required for the badger backend.
	Path   string
	Logger *logrus.Logger
}

// NewStore creates a Store for the configured backend. An empty Type
// defaults to the in-memory backend.
func NewStore(config Config) (Store, error) {
	switch config.Type {
	case StoreTypeMemory, "":
		return NewMemoryStore(), nil
	case StoreTypeBadger:
		if config.Path == "" {
			return nil, fmt.Errorf("badger store requires a path")
		}
		return NewBadgerStore(BadgerConfig{
			Path:   config.Path,
			Logger: config.Logger,
		})
	default:
		return nil, fmt.Errorf("unknown store type: %q", config.Type)
	}
}
