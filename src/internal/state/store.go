package state

import (
	"fmt"

	"github.com/maksimkurb/keen-threatfeed/src/internal/config"
)

const (
	BackendFile    = config.StateBackendFile
	BackendLevelDB = config.StateBackendLevelDB
)

// Store is a durable string store addressed by section and key.
type Store interface {
	// Get returns the value and true, or "" and false when it was never written.
	Get(section, key string) (string, bool)
	// Set durably stores value under section and key.
	Set(section, key, value string) error
	Close() error
}

// Open opens the store for the given backend name. An empty backend means BackendFile.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "", BackendFile:
		return NewFileStore(path)
	case BackendLevelDB:
		return OpenLevelDBStore(path)
	default:
		return nil, fmt.Errorf("unknown state backend %q", backend)
	}
}
