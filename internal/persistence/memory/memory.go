package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"envelope/internal/persistence"
)

// Store keeps every key in process memory. Values are copied on the way in
// and out so callers never share buffers with the store.
type Store struct {
	mu   sync.Mutex
	data map[string][]byte
}

var _ persistence.Adapter = (*Store)(nil)

func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

// NewFromDir seeds the store from <dir>/<key>.json files. Missing files are
// skipped; an unreadable file is an error.
func NewFromDir(dir string) (*Store, error) {
	s := New()
	if dir == "" {
		return s, nil
	}
	for _, key := range persistence.AllKeys() {
		raw, err := os.ReadFile(filepath.Join(dir, key+".json"))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read seed %s: %w", key, err)
		}
		s.data[key] = raw
	}
	return s, nil
}

func (s *Store) Load(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *Store) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), data...)
	return nil
}

func (s *Store) Clear(_ context.Context, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

// Keys returns the keys currently held, in no particular order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.data))
	for k := range s.data {
		out = append(out, k)
	}
	return out
}
