package services

import (
	"context"
	"sync"
	"time"

	domain "github.com/eventloft/api/internal/domain"
)

// CartStoreDeps configures the in-memory cart registry.
type CartStoreDeps struct {
	Clock func() time.Time
}

type cartEntry struct {
	mu         sync.Mutex
	cart       *domain.Cart
	lastAccess time.Time
}

// CartStore owns every live cart. Mutations are serialised per cart key while
// carts under different keys proceed in parallel; there is no global cart
// lock beyond the map itself.
type CartStore struct {
	mu      sync.RWMutex
	entries map[string]*cartEntry
	now     func() time.Time
}

// NewCartStore constructs an empty store.
func NewCartStore(deps CartStoreDeps) *CartStore {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &CartStore{
		entries: make(map[string]*cartEntry),
		now:     func() time.Time { return clock().UTC() },
	}
}

// WithCart runs fn against the cart for the key, creating the cart on first
// touch. fn receives a working copy; the copy is committed only when fn
// returns nil, so a failed operation leaves the previous state visible.
// The returned cart is a detached copy of the committed state.
func (s *CartStore) WithCart(ctx context.Context, key CartKey, fn func(cart *domain.Cart) error) (domain.Cart, error) {
	if key.IsZero() {
		return domain.Cart{}, ErrCartInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return domain.Cart{}, err
	}

	entry := s.entry(key)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := s.now()
	entry.lastAccess = now

	if fn == nil {
		return entry.cart.Clone(), nil
	}

	working := entry.cart.Clone()
	if err := fn(&working); err != nil {
		return entry.cart.Clone(), err
	}

	working.UpdatedAt = now
	entry.cart = &working
	return working.Clone(), nil
}

// Snapshot returns the last committed state of the cart without waiting on
// in-flight mutations to that key, beyond the brief entry lock.
func (s *CartStore) Snapshot(key CartKey) (domain.Cart, bool) {
	s.mu.RLock()
	entry, ok := s.entries[key.Resolve()]
	s.mu.RUnlock()
	if !ok {
		return domain.Cart{}, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.cart.Clone(), true
}

// Take removes the cart for the key and returns its final state. Used when a
// session cart is folded into a user cart.
func (s *CartStore) Take(key CartKey) (domain.Cart, bool) {
	resolved := key.Resolve()
	if resolved == "" {
		return domain.Cart{}, false
	}

	s.mu.Lock()
	entry, ok := s.entries[resolved]
	if ok {
		delete(s.entries, resolved)
	}
	s.mu.Unlock()
	if !ok {
		return domain.Cart{}, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.cart.Clone(), true
}

// EvictIdle drops carts untouched for longer than olderThan and reports how
// many were removed. Carts with an operation in flight are skipped.
func (s *CartStore) EvictIdle(olderThan time.Duration) int {
	if olderThan <= 0 {
		return 0
	}
	cutoff := s.now().Add(-olderThan)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, entry := range s.entries {
		if !entry.mu.TryLock() {
			continue
		}
		idle := entry.lastAccess.Before(cutoff)
		entry.mu.Unlock()
		if idle {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of live carts.
func (s *CartStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *CartStore) entry(key CartKey) *cartEntry {
	resolved := key.Resolve()

	s.mu.RLock()
	entry, ok := s.entries[resolved]
	s.mu.RUnlock()
	if ok {
		return entry
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.entries[resolved]; ok {
		return entry
	}

	now := s.now()
	entry = &cartEntry{
		cart: &domain.Cart{
			Key:       resolved,
			SessionID: key.SessionID,
			UserID:    key.UserID,
			CreatedAt: now,
			UpdatedAt: now,
		},
		lastAccess: now,
	}
	s.entries[resolved] = entry
	return entry
}
