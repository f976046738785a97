package classifier

import (
	"context"
	"strings"

	"github.com/nkov/comment-triage/internal/models"
	"github.com/nkov/comment-triage/internal/taxonomy"
)

// keywordPatterns holds the per-category engagement keywords. A match counts
// 2 points; QUESTION gets a 3-point boost when the comment contains "?".
var keywordPatterns = map[taxonomy.Category][]string{
	taxonomy.CategoryLead: {
		"interested", "want to buy", "how to order", "purchase",
		"pricing", "get started", "sign up", "ready to buy",
	},
	taxonomy.CategoryPraise: {
		"amazing", "excellent", "love", "best", "great",
		"thank", "awesome", "fantastic",
	},
	taxonomy.CategorySpam: {
		"click here", "free followers", "bit.ly", "check out my",
		"www.", "http",
	},
	taxonomy.CategoryQuestion: {
		"how", "what", "when", "where", "why", "?",
	},
	taxonomy.CategoryComplaint: {
		"problem", "issue", "disappointed", "terrible", "worst",
		"refund", "broken", "hasn't arrived",
	},
}

// KeywordClassifier is the local-mode classifier. It scores the comment
// against per-category keyword sets, so it works without any API key.
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

func (c *KeywordClassifier) Classify(ctx context.Context, comment string) (models.ClassificationResult, error) {
	if err := validateComment(comment); err != nil {
		return models.ClassificationResult{}, err
	}

	lower := strings.ToLower(comment)

	scores := make(map[taxonomy.Category]int, len(keywordPatterns))
	total := 0
	for _, category := range candidateLabels() {
		score := 0
		for _, keyword := range keywordPatterns[category] {
			if strings.Contains(lower, keyword) {
				score += 2
			}
		}
		if category == taxonomy.CategoryQuestion && strings.Contains(comment, "?") {
			score += 3
		}
		scores[category] = score
		total += score
	}

	// Highest score wins; iteration follows declaration order and only a
	// strictly greater score replaces the leader, so ties resolve to the
	// earlier category.
	best := taxonomy.CategoryQuestion // default when nothing matches
	bestScore := 0
	for _, category := range candidateLabels() {
		if scores[category] > bestScore {
			best = category
			bestScore = scores[category]
		}
	}

	var confidence float64
	if total > 0 {
		confidence = float64(bestScore) / float64(total)
	}

	return models.ClassificationResult{Label: best, Score: confidence}, nil
}
