package session

import (
	"context"
	"sync"
	"time"

	"github.com/suoapvs/alexcoffee/internal/cart"
)

type memoryEntry struct {
	cart    *cart.ShoppingCart
	expires time.Time
}

// MemoryStore keeps carts in process memory with TTL eviction. Carts
// are shared by pointer, so Save is a no-op: the cart's own mutex is
// the per-session write discipline.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	ttl     time.Duration
	done    chan struct{}
	once    sync.Once
}

// NewMemoryStore builds a memory store whose janitor evicts expired
// sessions every minute.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*memoryEntry),
		ttl:     ttl,
		done:    make(chan struct{}),
	}
	go s.janitor()
	return s
}

func (s *MemoryStore) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for id, entry := range s.entries {
				if now.After(entry.expires) {
					delete(s.entries, id)
				}
			}
			s.mu.Unlock()
		case <-s.done:
			return
		}
	}
}

// Get returns the session's cart, lazily creating an empty one. Each
// access extends the session's lifetime.
func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*cart.ShoppingCart, error) {
	now := time.Now()

	s.mu.RLock()
	entry, ok := s.entries[sessionID]
	s.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		s.mu.Lock()
		entry.expires = now.Add(s.ttl)
		s.mu.Unlock()
		return entry.cart, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Re-check under the write lock: a concurrent request may have
	// created the entry already.
	if entry, ok := s.entries[sessionID]; ok && now.Before(entry.expires) {
		entry.expires = now.Add(s.ttl)
		return entry.cart, nil
	}
	c := cart.New()
	s.entries[sessionID] = &memoryEntry{cart: c, expires: now.Add(s.ttl)}
	return c, nil
}

// Save is a no-op: memory sessions share the cart pointer.
func (s *MemoryStore) Save(ctx context.Context, sessionID string, c *cart.ShoppingCart) error {
	return nil
}

// Delete drops the session.
func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}

// Count returns the number of live sessions with a non-empty cart.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	now := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int
	for _, entry := range s.entries {
		if now.Before(entry.expires) && entry.cart.Size() > 0 {
			count++
		}
	}
	return count, nil
}

// Close stops the janitor.
func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}
