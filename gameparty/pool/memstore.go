package pool

import (
	"context"
	"errors"
	"sync"
)

// MemoryStore keeps pools in process memory behind a per-campaign mutex.
// It satisfies the same contract as the Postgres-backed store and is the
// store of choice for single-process deployments and deterministic tests.
type MemoryStore struct {
	mu    sync.Mutex
	pools map[string]*CodePool
	locks map[string]*sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		pools: make(map[string]*CodePool),
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *MemoryStore) keyLock(campaignID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[campaignID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[campaignID] = lock
	}
	return lock
}

func (s *MemoryStore) AtomicUpdate(ctx context.Context, campaignID string, fn TransformFunc) (*CodePool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Holding the per-campaign mutex makes the update trivially serial, so
	// no CAS retry loop is needed here. Campaigns never block each other.
	lock := s.keyLock(campaignID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	current, ok := s.pools[campaignID]
	s.mu.Unlock()

	var next *CodePool
	if ok {
		if err := current.Validate(); err != nil {
			return nil, err
		}
		next = current.Clone()
	} else {
		next = NewCodePool(campaignID)
	}

	if err := fn(next); err != nil {
		if errors.Is(err, SkipUpdate) {
			return next, nil
		}
		return nil, err
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.pools[campaignID] = next
	s.mu.Unlock()
	return next.Clone(), nil
}

func (s *MemoryStore) Get(ctx context.Context, campaignID string) (*CodePool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	current, ok := s.pools[campaignID]
	s.mu.Unlock()

	if !ok {
		return NewCodePool(campaignID), nil
	}
	if err := current.Validate(); err != nil {
		return nil, err
	}
	return current.Clone(), nil
}
