package jobs

import (
	"context"
	"sync"

	"videogen/internal/domain"
)

// Store indexes job records by provider ID and by prompt hash. Lookups report
// a miss through the boolean result, never through the error.
type Store interface {
	// Put inserts or overwrites rec under both indexes as one atomic step.
	Put(ctx context.Context, rec domain.JobRecord) error
	GetByID(ctx context.Context, id string) (domain.JobRecord, bool, error)
	GetByHash(ctx context.Context, hash string) (domain.JobRecord, bool, error)
	// Update applies fn to the stored record and persists the result.
	Update(ctx context.Context, id string, fn func(*domain.JobRecord)) (domain.JobRecord, bool, error)
}

// MemoryStore keeps records for the lifetime of the process. There is no
// eviction.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]domain.JobRecord
	byHash map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[string]domain.JobRecord),
		byHash: make(map[string]string),
	}
}

func (s *MemoryStore) Put(ctx context.Context, rec domain.JobRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec = rec.Clone()
	s.mu.Lock()
	s.byID[rec.ID] = rec
	if rec.PromptHash != "" {
		s.byHash[rec.PromptHash] = rec.ID
	}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (domain.JobRecord, bool, error) {
	s.mu.RLock()
	rec, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok {
		return domain.JobRecord{}, false, nil
	}
	return rec.Clone(), true, nil
}

func (s *MemoryStore) GetByHash(ctx context.Context, hash string) (domain.JobRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byHash[hash]
	if !ok {
		return domain.JobRecord{}, false, nil
	}
	rec, ok := s.byID[id]
	// The ID may have been overwritten by a record with a different hash.
	if !ok || rec.PromptHash != hash {
		return domain.JobRecord{}, false, nil
	}
	return rec.Clone(), true, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, fn func(*domain.JobRecord)) (domain.JobRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.JobRecord{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[id]
	if !ok {
		return domain.JobRecord{}, false, nil
	}
	rec = rec.Clone()
	fn(&rec)
	rec.ID = id
	s.byID[id] = rec
	if rec.PromptHash != "" {
		s.byHash[rec.PromptHash] = id
	}
	return rec.Clone(), true, nil
}

// Len returns the number of records held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

var _ Store = (*MemoryStore)(nil)
