package classifier

import (
	"context"
	"errors"
	"strings"

	"github.com/nkov/comment-triage/internal/models"
	"github.com/nkov/comment-triage/internal/taxonomy"
)

var (
	// ErrInvalidInput means the comment was empty or whitespace-only.
	ErrInvalidInput = errors.New("invalid input: comment is empty")
	// ErrUnavailable means the model call failed. The pipeline recovers from
	// it by downgrading the outcome to unclassified.
	ErrUnavailable = errors.New("classifier unavailable")
)

// Classifier maps free-text comments to the best-matching taxonomy category.
// Implementations must be safe for concurrent use after construction.
type Classifier interface {
	Classify(ctx context.Context, comment string) (models.ClassificationResult, error)
}

func validateComment(comment string) error {
	if strings.TrimSpace(comment) == "" {
		return ErrInvalidInput
	}
	return nil
}

// candidateLabels lists the five categories in declaration order, used by
// both implementations so tie-breaking stays deterministic.
func candidateLabels() []taxonomy.Category {
	return taxonomy.Order
}
