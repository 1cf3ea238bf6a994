package store

import (
	"sync"

	"gorm.io/gorm"
)

// Store is the single shared handle to the active database connection.
// Services receive a *Store at construction time instead of reaching for a
// package global, and the ops endpoint can atomically swap the underlying
// connection (for example after a credential rotation) without restarting.
type Store struct {
	mu sync.RWMutex
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the current connection handle. Callers must not cache it across
// requests; fetch it per operation so swaps take effect.
func (s *Store) DB() *gorm.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db
}

// Swap installs a new connection handle and returns the previous one so the
// caller can close it after in-flight work drains.
func (s *Store) Swap(db *gorm.DB) *gorm.DB {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.db
	s.db = db
	return old
}
