package composer

import (
	"fmt"

	"github.com/nkov/comment-triage/internal/taxonomy"
)

// fallbackReply is returned when classification was unavailable.
const fallbackReply = "Thanks for reaching out! We've received your comment and will follow up shortly."

// templates maps each category to a formatting func. The replies are fixed
// human-authored strings; the func signature leaves room for substitution
// without touching the contract.
var templates = map[taxonomy.Category]func(comment string) string{
	taxonomy.CategoryLead: func(string) string {
		return "Thanks so much for your interest! Send us a DM and we'll get you started right away."
	},
	taxonomy.CategoryPraise: func(string) string {
		return "Thank you so much for your kind words! Your support means a lot to us."
	},
	taxonomy.CategorySpam: func(string) string {
		return "Thanks for stopping by! For anything related to our products or services, feel free to reach out directly."
	},
	taxonomy.CategoryQuestion: func(string) string {
		return "Thanks for asking! We'll get back to you with more details."
	},
	taxonomy.CategoryComplaint: func(string) string {
		return "We're so sorry to hear about your experience. Please send us a DM so we can make this right."
	},
}

// Composer renders the reply for a classified comment. It is pure: the same
// label always produces the same reply.
type Composer struct{}

func New() *Composer {
	return &Composer{}
}

// Compose returns the reply text for label. The unclassified sentinel gets
// the fixed fallback acknowledgment; anything outside the taxonomy is a
// defect and fails with ErrUnknownCategory.
func (c *Composer) Compose(label taxonomy.Category, comment string) (string, error) {
	if label == taxonomy.Unclassified {
		return fallbackReply, nil
	}
	render, ok := templates[label]
	if !ok {
		return "", fmt.Errorf("%w: %q", taxonomy.ErrUnknownCategory, label)
	}
	return render(comment), nil
}
