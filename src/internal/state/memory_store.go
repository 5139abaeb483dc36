package state

import "sync"

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]string)}
}

func (s *MemoryStore) Get(section, key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.data[section][key]
	return value, ok
}

func (s *MemoryStore) Set(section, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[section] == nil {
		s.data[section] = make(map[string]string)
	}
	s.data[section][key] = value
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
