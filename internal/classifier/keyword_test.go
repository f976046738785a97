package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkov/comment-triage/internal/taxonomy"
)

func TestKeywordClassifierRejectsEmptyInput(t *testing.T) {
	c := NewKeywordClassifier()

	for _, comment := range []string{"", "   ", "\n\t"} {
		_, err := c.Classify(context.Background(), comment)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestKeywordClassifierCategories(t *testing.T) {
	c := NewKeywordClassifier()

	cases := []struct {
		comment string
		want    taxonomy.Category
	}{
		{"I love your product!", taxonomy.CategoryPraise},
		{"How much does this cost?", taxonomy.CategoryQuestion},
		{"I'm interested in your services and ready to buy", taxonomy.CategoryLead},
		{"Click here for free followers!!! www.spam.com", taxonomy.CategorySpam},
		{"My order hasn't arrived and I'm so disappointed", taxonomy.CategoryComplaint},
		{"Amazing product! Best purchase I've made this year!", taxonomy.CategoryPraise},
	}

	for _, tc := range cases {
		result, err := c.Classify(context.Background(), tc.comment)
		require.NoError(t, err, "comment: %s", tc.comment)
		assert.Equal(t, tc.want, result.Label, "comment: %s", tc.comment)
		assert.GreaterOrEqual(t, result.Score, 0.0)
		assert.LessOrEqual(t, result.Score, 1.0)
	}
}

func TestKeywordClassifierDefaultsToQuestion(t *testing.T) {
	c := NewKeywordClassifier()

	result, err := c.Classify(context.Background(), "zzz qqq vvv")
	require.NoError(t, err)
	assert.Equal(t, taxonomy.CategoryQuestion, result.Label)
	assert.Zero(t, result.Score)
}

func TestKeywordClassifierTieBreaksByDeclarationOrder(t *testing.T) {
	c := NewKeywordClassifier()

	// "interested" scores LEAD, "love" scores PRAISE, equally. LEAD is
	// declared first and must win.
	result, err := c.Classify(context.Background(), "interested and love it")
	require.NoError(t, err)
	assert.Equal(t, taxonomy.CategoryLead, result.Label)
}
