package state

import (
	"errors"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	domainerrors "github.com/maksimkurb/keen-threatfeed/src/internal/errors"
	"github.com/maksimkurb/keen-threatfeed/src/internal/log"
)

// LevelDBStore keeps every value under the key "<section>/<key>".
// LevelDB holds an exclusive lock on its directory while open.
type LevelDBStore struct {
	db *leveldb.DB
}

func OpenLevelDBStore(path string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, domainerrors.NewStateError("failed to open leveldb state", err)
	}
	return &LevelDBStore{db: db}, nil
}

func (s *LevelDBStore) Get(section, key string) (string, bool) {
	value, err := s.db.Get(levelDBKey(section, key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return "", false
	} else if err != nil {
		log.Warnf("Failed to read %s.%s from leveldb state: %v", section, key, err)
		return "", false
	}
	return string(value), true
}

func (s *LevelDBStore) Set(section, key, value string) error {
	if err := s.db.Put(levelDBKey(section, key), []byte(value), &opt.WriteOptions{Sync: true}); err != nil {
		return domainerrors.NewStateError("failed to write leveldb state", err)
	}
	return nil
}

func (s *LevelDBStore) Close() error {
	return s.db.Close()
}

func levelDBKey(section, key string) []byte {
	return []byte(section + "/" + key)
}
