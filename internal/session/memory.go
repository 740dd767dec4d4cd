package session

import (
	"context"
	"sync"
	"time"

	"github.com/hardikSrivastav/cal.it/internal/types"
)

// Compile-time interface check
var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps pending interactions in process memory. Expired entries
// are invisible to Get immediately and reclaimed by a periodic Sweep.
type MemoryStore struct {
	mu      sync.RWMutex
	pending map[string]types.PendingInteraction
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pending: make(map[string]types.PendingInteraction)}
}

// Get returns the user's pending interaction if present and unexpired.
func (s *MemoryStore) Get(_ context.Context, userID string) (*types.PendingInteraction, error) {
	s.mu.RLock()
	p, ok := s.pending[userID]
	s.mu.RUnlock()

	if !ok || p.Expired(time.Now().UTC()) {
		return nil, ErrNoPendingInteraction
	}
	return &p, nil
}

// Put stores the interaction, replacing any existing one for the user.
func (s *MemoryStore) Put(_ context.Context, p *types.PendingInteraction) error {
	s.mu.Lock()
	s.pending[p.UserID] = *p
	s.mu.Unlock()
	return nil
}

// Delete removes the user's pending interaction if present.
func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	delete(s.pending, userID)
	s.mu.Unlock()
	return nil
}

// Sweep removes every entry expired as of now and reports how many went.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for userID, p := range s.pending {
		if p.Expired(now) {
			delete(s.pending, userID)
			removed++
		}
	}
	return removed
}

// Len reports how many interactions are held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pending)
}
