package storage

import (
	"context"

	"github.com/nkov/comment-triage/internal/models"
	"github.com/nkov/comment-triage/internal/taxonomy"
)

// Storage keeps the dashboard's conversation history: the sequence of
// triage outcomes for the current operator session. The in-memory
// implementation is the default; Postgres is an optional drop-in with no
// extra durability guarantees claimed.
type Storage interface {
	SaveOutcome(ctx context.Context, outcome *models.TriageOutcome) error
	ListOutcomes(ctx context.Context, limit, offset int) ([]*models.TriageOutcome, error)
	ClearOutcomes(ctx context.Context) error
	CategoryCounts(ctx context.Context) (map[taxonomy.Category]int, error)
	Close() error
}
