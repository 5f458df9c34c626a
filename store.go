package authclient

import "sync"

var _ SessionStore = (*MemoryStore)(nil)

// MemoryStore is the default SessionStore: a mutex-guarded map whose
// contents last for the lifetime of the process, the Go analogue of
// tab-scoped browser storage.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *MemoryStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// Delete removes the given keys in one critical section so a multi-key
// clear is atomic with respect to concurrent readers.
func (s *MemoryStore) Delete(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, key)
	}
}
