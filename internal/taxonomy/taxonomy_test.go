package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderCoversExactlyFiveCategories(t *testing.T) {
	require.Len(t, Order, 5)
	seen := make(map[Category]bool)
	for _, c := range Order {
		assert.True(t, Valid(c), "category %s should be valid", c)
		assert.False(t, seen[c], "category %s duplicated", c)
		seen[c] = true
	}
}

func TestMeta(t *testing.T) {
	for _, c := range Order {
		meta, err := Meta(c)
		require.NoError(t, err)
		assert.NotEmpty(t, meta.Description)
		assert.NotEmpty(t, meta.Tags)
	}

	_, err := Meta(Category("NONSENSE"))
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("lead")
	require.NoError(t, err)
	assert.Equal(t, CategoryLead, c)

	c, err = ParseCategory("  Complaint ")
	require.NoError(t, err)
	assert.Equal(t, CategoryComplaint, c)

	c, err = ParseCategory("unclassified")
	require.NoError(t, err)
	assert.Equal(t, Unclassified, c)

	_, err = ParseCategory("other")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestUnclassifiedIsNotAValidCategory(t *testing.T) {
	assert.False(t, Valid(Unclassified))
}

func TestWorkflowRules(t *testing.T) {
	lead, err := Meta(CategoryLead)
	require.NoError(t, err)
	assert.Equal(t, "social_media_lead_workflow", lead.Workflow)

	complaint, err := Meta(CategoryComplaint)
	require.NoError(t, err)
	assert.Equal(t, "complaint_resolution_workflow", complaint.Workflow)

	spam, err := Meta(CategorySpam)
	require.NoError(t, err)
	assert.Empty(t, spam.Workflow)
}
