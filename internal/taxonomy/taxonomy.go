package taxonomy

import (
	"errors"
	"fmt"
	"strings"
)

// Category is one of the five fixed triage labels.
type Category string

const (
	CategoryLead      Category = "LEAD"
	CategoryPraise    Category = "PRAISE"
	CategorySpam      Category = "SPAM"
	CategoryQuestion  Category = "QUESTION"
	CategoryComplaint Category = "COMPLAINT"

	// Unclassified marks an outcome whose classification was unavailable.
	Unclassified Category = "UNCLASSIFIED"
)

// Order is the declaration order of the taxonomy. It doubles as the
// deterministic tie-break: earlier categories win equal scores.
var Order = []Category{
	CategoryLead,
	CategoryPraise,
	CategorySpam,
	CategoryQuestion,
	CategoryComplaint,
}

// Metadata carries the static per-category data used across the service.
type Metadata struct {
	// Description feeds the zero-shot classification prompt.
	Description string
	// Tags are the CRM tags applied to a contact for this category.
	Tags []string
	// Workflow is the CRM workflow name, empty if none applies.
	Workflow string
	// EngagementScore is the base engagement score (0-100).
	EngagementScore int
}

var metadata = map[Category]Metadata{
	CategoryLead: {
		Description:     "interested in products or services, wants to buy, asking about availability",
		Tags:            []string{"social-media-lead", "interested"},
		Workflow:        "social_media_lead_workflow",
		EngagementScore: 80,
	},
	CategoryPraise: {
		Description:     "positive feedback, compliments, happy customer comments",
		Tags:            []string{"happy-customer", "testimonial"},
		Workflow:        "testimonial_request_workflow",
		EngagementScore: 70,
	},
	CategorySpam: {
		Description:     "irrelevant content, suspicious links, promotional content unrelated to the business",
		Tags:            []string{"spam", "to-review"},
		EngagementScore: 0,
	},
	CategoryQuestion: {
		Description:     "genuine questions about products, services, features, or policies",
		Tags:            []string{"needs-info", "inquiry"},
		EngagementScore: 60,
	},
	CategoryComplaint: {
		Description:     "negative feedback, problems, issues, dissatisfaction",
		Tags:            []string{"needs-attention", "unhappy-customer"},
		Workflow:        "complaint_resolution_workflow",
		EngagementScore: 50,
	},
}

// ErrUnknownCategory indicates a label outside the taxonomy. It signals a
// programmer or configuration error and is not expected at runtime.
var ErrUnknownCategory = errors.New("unknown category")

// Meta returns the static metadata for a category.
func Meta(c Category) (Metadata, error) {
	m, ok := metadata[c]
	if !ok {
		return Metadata{}, fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
	return m, nil
}

// Valid reports whether c is one of the five taxonomy categories.
func Valid(c Category) bool {
	_, ok := metadata[c]
	return ok
}

// ParseCategory maps free text to a Category, case-insensitively.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if c == Unclassified {
		return Unclassified, nil
	}
	if !Valid(c) {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}
