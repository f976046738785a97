package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nkov/comment-triage/internal/classifier"
	"github.com/nkov/comment-triage/internal/composer"
	"github.com/nkov/comment-triage/internal/crm"
	"github.com/nkov/comment-triage/internal/models"
	"github.com/nkov/comment-triage/internal/storage"
	"github.com/nkov/comment-triage/internal/taxonomy"
)

// Pipeline runs the triage sequence for one comment:
// classify -> compose -> notify -> record. One invocation per operator
// action, synchronous, always reaching a populated outcome.
type Pipeline struct {
	classifier classifier.Classifier
	composer   *composer.Composer
	notifier   crm.Notifier
	store      storage.Storage
	logger     *zap.Logger
	metrics    *Metrics
}

// New wires the pipeline. notifier may be nil (local-only mode) and
// metrics may be nil (no instrumentation).
func New(clf classifier.Classifier, cmp *composer.Composer, notifier crm.Notifier, store storage.Storage, logger *zap.Logger, metrics *Metrics) *Pipeline {
	return &Pipeline{
		classifier: clf,
		composer:   cmp,
		notifier:   notifier,
		store:      store,
		logger:     logger,
		metrics:    metrics,
	}
}

// Process triages one comment. Classifier unavailability downgrades the
// outcome to unclassified; a CRM failure is captured as a warning. Only
// invalid input and taxonomy defects return an error.
func (p *Pipeline) Process(ctx context.Context, comment, contactRef string) (*models.TriageOutcome, error) {
	// Input is validated before anything else so no CRM traffic can happen
	// for a rejected comment.
	if strings.TrimSpace(comment) == "" {
		return nil, classifier.ErrInvalidInput
	}

	started := time.Now()

	result, err := p.classifier.Classify(ctx, comment)
	switch {
	case err == nil:
	case errors.Is(err, classifier.ErrUnavailable):
		p.logger.Warn("Classifier unavailable, downgrading to unclassified", zap.Error(err))
		result = models.ClassificationResult{Label: taxonomy.Unclassified, Score: 0}
	default:
		return nil, fmt.Errorf("classify: %w", err)
	}

	reply, err := p.composer.Compose(result.Label, comment)
	if err != nil {
		// Only ErrUnknownCategory lands here; it is a defect and propagates.
		return nil, fmt.Errorf("compose: %w", err)
	}

	outcome := &models.TriageOutcome{
		ID:          uuid.New().String(),
		Comment:     comment,
		Result:      result,
		Reply:       reply,
		CRMStatus:   models.NotifySkipped,
		ProcessedAt: started,
	}
	if meta, err := taxonomy.Meta(result.Label); err == nil {
		outcome.Engagement = meta.EngagementScore
	}

	if p.notifier != nil {
		status, err := p.notifier.Notify(ctx, result.Label, contactRef)
		outcome.CRMStatus = status
		if err != nil {
			// Reported to the operator, never raised: the reply and label
			// the operator already earned stay intact.
			outcome.Warning = fmt.Sprintf("CRM dispatch failed: %v", err)
			p.logger.Error("CRM dispatch failed",
				zap.Error(err),
				zap.String("category", string(result.Label)),
				zap.String("contact_ref", contactRef))
		}
		if status == models.NotifySent {
			outcome.CRMAction = &models.CRMAction{
				Type:       models.ActionTag,
				Label:      result.Label,
				ContactRef: contactRef,
			}
		}
	}

	outcome.Duration = time.Since(started)

	// History is best-effort: a storage failure is logged, not raised.
	if err := p.store.SaveOutcome(ctx, outcome); err != nil {
		p.logger.Error("Failed to save outcome",
			zap.Error(err),
			zap.String("outcome_id", outcome.ID))
	}

	if p.metrics != nil {
		p.metrics.observe(outcome.Duration.Seconds(), string(result.Label), outcome.Warning != "")
	}

	p.logger.Info("Processed comment",
		zap.String("outcome_id", outcome.ID),
		zap.String("category", string(result.Label)),
		zap.Float64("score", result.Score),
		zap.String("crm_status", string(outcome.CRMStatus)),
		zap.Duration("duration", outcome.Duration))

	return outcome, nil
}

// History returns the most recent outcomes, newest-first.
func (p *Pipeline) History(ctx context.Context, limit, offset int) ([]*models.TriageOutcome, error) {
	return p.store.ListOutcomes(ctx, limit, offset)
}

// ClearHistory discards the session's conversation history.
func (p *Pipeline) ClearHistory(ctx context.Context) error {
	return p.store.ClearOutcomes(ctx)
}

// Stats returns the category distribution of the session history.
func (p *Pipeline) Stats(ctx context.Context) (map[taxonomy.Category]int, error) {
	return p.store.CategoryCounts(ctx)
}
