package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nkov/comment-triage/internal/classifier"
	"github.com/nkov/comment-triage/internal/composer"
	"github.com/nkov/comment-triage/internal/crm"
	"github.com/nkov/comment-triage/internal/models"
	"github.com/nkov/comment-triage/internal/storage"
	"github.com/nkov/comment-triage/internal/taxonomy"
)

type stubClassifier struct {
	result models.ClassificationResult
	err    error
}

func (s *stubClassifier) Classify(ctx context.Context, comment string) (models.ClassificationResult, error) {
	if s.err != nil {
		return models.ClassificationResult{}, s.err
	}
	return s.result, nil
}

type recordingNotifier struct {
	calls  []taxonomy.Category
	status models.NotifyStatus
	err    error
}

func (n *recordingNotifier) Notify(ctx context.Context, label taxonomy.Category, contactRef string) (models.NotifyStatus, error) {
	n.calls = append(n.calls, label)
	if n.err != nil {
		return models.NotifyFailed, n.err
	}
	return n.status, nil
}

func newPipeline(clf classifier.Classifier, notifier crm.Notifier) (*Pipeline, *storage.MemoryStorage) {
	store := storage.NewMemoryStorage()
	return New(clf, composer.New(), notifier, store, zap.NewNop(), nil), store
}

func TestProcessRejectsEmptyComment(t *testing.T) {
	notifier := &recordingNotifier{status: models.NotifySent}
	p, _ := newPipeline(classifier.NewKeywordClassifier(), notifier)

	_, err := p.Process(context.Background(), "   ", "contact-1")
	assert.ErrorIs(t, err, classifier.ErrInvalidInput)
	assert.Empty(t, notifier.calls, "no CRM call may happen for invalid input")
}

func TestProcessEndToEnd(t *testing.T) {
	p, _ := newPipeline(classifier.NewKeywordClassifier(), nil)

	cases := []struct {
		comment   string
		wantLabel taxonomy.Category
		wantReply string
	}{
		{
			comment:   "I love your product!",
			wantLabel: taxonomy.CategoryPraise,
			wantReply: "Thank you so much for your kind words! Your support means a lot to us.",
		},
		{
			comment:   "How much does this cost?",
			wantLabel: taxonomy.CategoryQuestion,
			wantReply: "Thanks for asking! We'll get back to you with more details.",
		},
	}

	for _, tc := range cases {
		outcome, err := p.Process(context.Background(), tc.comment, "")
		require.NoError(t, err)
		assert.Equal(t, tc.wantLabel, outcome.Result.Label)
		assert.Equal(t, tc.wantReply, outcome.Reply)
		assert.Equal(t, models.NotifySkipped, outcome.CRMStatus)
		assert.NotEmpty(t, outcome.ID)
	}
}

func TestProcessDowngradesWhenClassifierUnavailable(t *testing.T) {
	clf := &stubClassifier{err: classifier.ErrUnavailable}
	p, _ := newPipeline(clf, nil)

	outcome, err := p.Process(context.Background(), "any comment", "")
	require.NoError(t, err)
	assert.Equal(t, taxonomy.Unclassified, outcome.Result.Label)
	assert.Zero(t, outcome.Result.Score)
	assert.NotEmpty(t, outcome.Reply, "fallback reply must be non-empty")
}

func TestProcessNotifiesOnlyActionableCategories(t *testing.T) {
	for _, tc := range []struct {
		label taxonomy.Category
	}{
		{taxonomy.CategoryLead},
		{taxonomy.CategoryPraise},
		{taxonomy.CategorySpam},
		{taxonomy.CategoryQuestion},
		{taxonomy.CategoryComplaint},
	} {
		notifier := &recordingNotifier{status: models.NotifySent}
		clf := &stubClassifier{result: models.ClassificationResult{Label: tc.label, Score: 0.9}}
		p, _ := newPipeline(clf, notifier)

		outcome, err := p.Process(context.Background(), "comment", "contact-1")
		require.NoError(t, err)

		// The pipeline hands every classified label to the notifier; the
		// notifier owns the LEAD/COMPLAINT policy. Here it reports sent.
		assert.Equal(t, []taxonomy.Category{tc.label}, notifier.calls)
		assert.Equal(t, models.NotifySent, outcome.CRMStatus)
		require.NotNil(t, outcome.CRMAction)
		assert.Equal(t, models.ActionTag, outcome.CRMAction.Type)
	}
}

func TestProcessCapturesCRMFailureAsWarning(t *testing.T) {
	notifier := &recordingNotifier{err: crm.ErrDispatch}
	clf := &stubClassifier{result: models.ClassificationResult{Label: taxonomy.CategoryLead, Score: 0.8}}
	p, _ := newPipeline(clf, notifier)

	outcome, err := p.Process(context.Background(), "ready to buy", "contact-1")
	require.NoError(t, err, "CRM failure must not unwind the pipeline")
	assert.Equal(t, models.NotifyFailed, outcome.CRMStatus)
	assert.NotEmpty(t, outcome.Warning)
	assert.Equal(t, taxonomy.CategoryLead, outcome.Result.Label)
	assert.NotEmpty(t, outcome.Reply)
}

func TestProcessUnknownCategoryPropagates(t *testing.T) {
	clf := &stubClassifier{result: models.ClassificationResult{Label: taxonomy.Category("BOGUS")}}
	p, _ := newPipeline(clf, nil)

	_, err := p.Process(context.Background(), "comment", "")
	assert.ErrorIs(t, err, taxonomy.ErrUnknownCategory)
}

func TestHistoryAndStats(t *testing.T) {
	p, _ := newPipeline(classifier.NewKeywordClassifier(), nil)
	ctx := context.Background()

	_, err := p.Process(ctx, "I love your product!", "")
	require.NoError(t, err)
	_, err = p.Process(ctx, "How much does this cost?", "")
	require.NoError(t, err)

	history, err := p.History(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	// Newest first.
	assert.Equal(t, taxonomy.CategoryQuestion, history[0].Result.Label)
	assert.Equal(t, taxonomy.CategoryPraise, history[1].Result.Label)

	counts, err := p.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[taxonomy.CategoryPraise])
	assert.Equal(t, 1, counts[taxonomy.CategoryQuestion])

	require.NoError(t, p.ClearHistory(ctx))
	history, err = p.History(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, history)

	counts, err = p.Stats(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestProcessWithRealNotifierPolicy(t *testing.T) {
	// Unconfigured real client: always skipped, no network.
	notifier := crm.NewClient(nil, zap.NewNop())
	clf := &stubClassifier{result: models.ClassificationResult{Label: taxonomy.CategoryLead, Score: 0.8}}
	p, _ := newPipeline(clf, notifier)

	outcome, err := p.Process(context.Background(), "interested!", "contact-1")
	require.NoError(t, err)
	assert.Equal(t, models.NotifySkipped, outcome.CRMStatus)
	assert.Nil(t, outcome.CRMAction)
	assert.Empty(t, outcome.Warning)
}
