package cache

import (
	"context"
	"sync"
	"time"

	appnotification "github.com/erp/notify/internal/application/notification"
)

// reservation holds the expiry of a claimed dispatch key
type reservation struct {
	expiresAt time.Time
}

// InMemoryIdempotencyStore tracks dispatch idempotency keys in a map.
// Suitable for single-instance deployments and testing.
type InMemoryIdempotencyStore struct {
	mu        sync.RWMutex
	entries   map[string]reservation
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryIdempotencyStore creates the store and starts a background
// goroutine that evicts expired reservations
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		entries:  make(map[string]reservation),
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// Reserve claims a dispatch key for the given TTL.
// Returns true if the key was newly claimed, false if a live reservation exists.
func (s *InMemoryIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, exists := s.entries[key]; exists {
		if time.Now().Before(r.expiresAt) {
			return false, nil
		}
		// Expired reservation, overwrite below
	}

	s.entries[key] = reservation{
		expiresAt: time.Now().Add(ttl),
	}

	return true, nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryIdempotencyStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryIdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, r := range s.entries {
		if now.After(r.expiresAt) {
			delete(s.entries, key)
		}
	}
}

// Size returns the number of live and expired reservations (for testing)
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

var _ appnotification.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
