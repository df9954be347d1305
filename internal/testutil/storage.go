package testutil

import (
	"context"
	"sort"
	"sync"
)

// MemoryStorage is an in-memory media.Storage. SaveErr, when set, fails
// every Save after FailAfter successful ones.
type MemoryStorage struct {
	mu        sync.Mutex
	files     map[string][]byte
	saves     int
	SaveErr   error
	FailAfter int
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{files: make(map[string][]byte)}
}

func (s *MemoryStorage) Save(_ context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil && s.saves >= s.FailAfter {
		return s.SaveErr
	}
	s.saves++
	s.files[name] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStorage) Remove(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, name)
	return nil
}

func (s *MemoryStorage) URL(name string) string {
	return "/media/" + name
}

// Get returns a stored file.
func (s *MemoryStorage) Get(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[name]
	return data, ok
}

// Names lists stored paths in order.
func (s *MemoryStorage) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
