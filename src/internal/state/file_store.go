package state

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"

	domainerrors "github.com/maksimkurb/keen-threatfeed/src/internal/errors"
	"github.com/maksimkurb/keen-threatfeed/src/internal/log"
	"github.com/maksimkurb/keen-threatfeed/src/internal/utils"
)

const corruptSuffix = ".corrupt"

var errCorruptState = errors.New("state file is not valid TOML")

// FileStore keeps sections as TOML tables in a single file. Every call
// re-reads the file under a shared lock, and Set rewrites it atomically under
// an exclusive lock held on "<path>.lock".
type FileStore struct {
	mu   sync.Mutex
	path string
	lock *flock.Flock
}

func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, domainerrors.NewStateError("failed to create state directory", err)
	}
	return &FileStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(section, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.RLock(); err != nil {
		log.Warnf("Failed to lock state file %s: %v", s.path, err)
		return "", false
	}
	defer s.unlock()

	data, err := s.load()
	if err != nil {
		log.Warnf("Failed to read state file %s: %v", s.path, err)
		return "", false
	}

	value, ok := data[section][key]
	return value, ok
}

func (s *FileStore) Set(section, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return domainerrors.NewStateError("failed to lock state file", err)
	}
	defer s.unlock()

	data, err := s.load()
	if errors.Is(err, errCorruptState) {
		data, err = s.quarantine(err)
	}
	if err != nil {
		return domainerrors.NewStateError("failed to read state file", err)
	}

	if data[section] == nil {
		data[section] = make(map[string]string)
	}
	data[section][key] = value

	buf := bytes.Buffer{}
	if err := toml.NewEncoder(&buf).Encode(data); err != nil {
		return domainerrors.NewStateError("failed to encode state", err)
	}
	if err := utils.WriteFileAtomic(s.path, &buf, 0644); err != nil {
		return domainerrors.NewStateError("failed to write state file", err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return s.lock.Close()
}

// load reads the state file. Non-string values written by hand are kept in
// their TOML textual form.
func (s *FileStore) load() (map[string]map[string]string, error) {
	data := make(map[string]map[string]string)

	content, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return data, nil
	} else if err != nil {
		return nil, err
	}

	var raw map[string]interface{}
	if err := toml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorruptState, err)
	}

	for section, table := range raw {
		values, ok := table.(map[string]interface{})
		if !ok {
			log.Warnf("Ignoring non-table entry %q in state file %s", section, s.path)
			continue
		}
		data[section] = make(map[string]string, len(values))
		for key, value := range values {
			if str, ok := value.(string); ok {
				data[section][key] = str
			} else {
				data[section][key] = fmt.Sprint(value)
			}
		}
	}

	return data, nil
}

// quarantine moves an unparsable state file aside so the next write starts
// from an empty state instead of failing forever.
func (s *FileStore) quarantine(cause error) (map[string]map[string]string, error) {
	corruptPath := s.path + corruptSuffix
	if err := os.Rename(s.path, corruptPath); err != nil {
		return nil, fmt.Errorf("failed to move corrupt state file aside: %w", err)
	}
	log.Warnf("State file %s is corrupt (%v), moved to %s and starting over", s.path, cause, corruptPath)
	return make(map[string]map[string]string), nil
}

func (s *FileStore) unlock() {
	if err := s.lock.Unlock(); err != nil {
		log.Warnf("Failed to unlock state file %s: %v", s.path, err)
	}
}
