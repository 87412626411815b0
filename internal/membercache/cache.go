package membercache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store caches the set of clinic ids a user belongs to. Reads tolerate bounded
// staleness; membership-changing writes invalidate the key explicitly.
type Store interface {
	Get(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, bool, error)
	Set(ctx context.Context, userID uuid.UUID, clinicIDs []uuid.UUID) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
	Close() error
}

type memoryEntry struct {
	clinicIDs []uuid.UUID
	expiresAt time.Time
}

type memoryStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]memoryEntry
	ttl     time.Duration
}

func NewMemoryStore(ttl time.Duration) Store {
	return &memoryStore{
		entries: make(map[uuid.UUID]memoryEntry),
		ttl:     ttl,
	}
}

func (s *memoryStore) Get(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, userID)
		s.mu.Unlock()
		return nil, false, nil
	}
	ids := make([]uuid.UUID, len(entry.clinicIDs))
	copy(ids, entry.clinicIDs)
	return ids, true, nil
}

func (s *memoryStore) Set(ctx context.Context, userID uuid.UUID, clinicIDs []uuid.UUID) error {
	ids := make([]uuid.UUID, len(clinicIDs))
	copy(ids, clinicIDs)
	s.mu.Lock()
	s.entries[userID] = memoryEntry{clinicIDs: ids, expiresAt: time.Now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Invalidate(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	delete(s.entries, userID)
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Close() error { return nil }
