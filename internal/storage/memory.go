package storage

import (
	"context"
	"sync"

	"github.com/nkov/comment-triage/internal/models"
	"github.com/nkov/comment-triage/internal/taxonomy"
)

type MemoryStorage struct {
	mu       sync.RWMutex
	outcomes []*models.TriageOutcome
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) SaveOutcome(ctx context.Context, outcome *models.TriageOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.outcomes = append(s.outcomes, outcome)
	return nil
}

// ListOutcomes returns outcomes newest-first.
func (s *MemoryStorage) ListOutcomes(ctx context.Context, limit, offset int) ([]*models.TriageOutcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.outcomes)
	if offset >= n {
		return []*models.TriageOutcome{}, nil
	}

	result := make([]*models.TriageOutcome, 0, limit)
	for i := n - 1 - offset; i >= 0 && len(result) < limit; i-- {
		result = append(result, s.outcomes[i])
	}
	return result, nil
}

func (s *MemoryStorage) ClearOutcomes(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.outcomes = nil
	return nil
}

func (s *MemoryStorage) CategoryCounts(ctx context.Context) (map[taxonomy.Category]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[taxonomy.Category]int)
	for _, outcome := range s.outcomes {
		counts[outcome.Result.Label]++
	}
	return counts, nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
