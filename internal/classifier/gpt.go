package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/nkov/comment-triage/internal/models"
	"github.com/nkov/comment-triage/internal/taxonomy"
)

type gptResponse struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// GPTClassifier classifies comments with a single chat-completion call.
// A failed or unparsable call surfaces ErrUnavailable; the downgrade to
// unclassified is the pipeline's decision, not the classifier's.
type GPTClassifier struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

func NewGPTClassifier(apiKey string, model string, maxTokens int, temperature float64, logger *zap.Logger) *GPTClassifier {
	// Bounded client timeout: an unbounded model call would freeze the
	// single-operator dashboard.
	cfg := openai.DefaultConfig(apiKey)
	cfg.HTTPClient = &http.Client{Timeout: 15 * time.Second}

	return &GPTClassifier{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

func (c *GPTClassifier) Classify(ctx context.Context, comment string) (models.ClassificationResult, error) {
	if err := validateComment(comment); err != nil {
		return models.ClassificationResult{}, err
	}

	prompt := c.buildPrompt(comment)

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   c.maxTokens,
			Temperature: float32(c.temperature),
		},
	)
	if err != nil {
		c.logger.Error("Failed to get classification response", zap.Error(err))
		return models.ClassificationResult{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return models.ClassificationResult{}, fmt.Errorf("%w: empty response", ErrUnavailable)
	}

	var parsed gptResponse
	response := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(response), &parsed); err != nil {
		c.logger.Error("Failed to parse classification response",
			zap.Error(err),
			zap.String("response", response))
		return models.ClassificationResult{}, fmt.Errorf("%w: unparsable response", ErrUnavailable)
	}

	label, err := taxonomy.ParseCategory(parsed.Category)
	if err != nil || !taxonomy.Valid(label) {
		c.logger.Error("Classification response outside taxonomy",
			zap.String("category", parsed.Category))
		return models.ClassificationResult{}, fmt.Errorf("%w: label %q outside taxonomy", ErrUnavailable, parsed.Category)
	}

	score := parsed.Confidence
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	return models.ClassificationResult{Label: label, Score: score}, nil
}

func (c *GPTClassifier) buildPrompt(comment string) string {
	var b strings.Builder
	b.WriteString("You classify social media comments into exactly one of these categories:\n")
	for i, category := range candidateLabels() {
		meta, _ := taxonomy.Meta(category)
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, category, meta.Description)
	}
	fmt.Fprintf(&b, `
Comment: %s

Respond with ONLY a JSON object of this form:
{"category": "LEAD|PRAISE|SPAM|QUESTION|COMPLAINT", "confidence": 0.0}
`, comment)
	return b.String()
}
