package testutil

import (
	"sync"
	"time"
)

type entry struct {
	val     []byte
	expires time.Time
}

// Storage is an in-memory [fiber.Storage] with expiry. DeleteErr makes Delete fail.
type Storage struct {
	mu        sync.Mutex
	data      map[string]entry
	DeleteErr error
}

// NewStorage returns an empty storage.
func NewStorage() *Storage {
	return &Storage{data: map[string]entry{}}
}

func (s *Storage) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		delete(s.data, key)
		return nil, nil
	}
	return e.val, nil
}

func (s *Storage) Set(key string, val []byte, exp time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := entry{val: append([]byte(nil), val...)}
	if exp > 0 {
		e.expires = time.Now().Add(exp)
	}
	s.data[key] = e
	return nil
}

func (s *Storage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	delete(s.data, key)
	return nil
}

func (s *Storage) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = map[string]entry{}
	return nil
}

func (s *Storage) Close() error { return nil }

// Len returns the number of stored keys, expired ones included.
func (s *Storage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}
