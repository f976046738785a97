package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nkov/comment-triage/internal/models"
	"github.com/nkov/comment-triage/internal/taxonomy"
)

const defaultBaseURL = "https://api.gohighlevel.com/v1"

// ErrDispatch means a CRM request failed (non-2xx, network error, or
// timeout). Callers surface it to the operator as a warning; it never aborts
// the classification and reply steps that already completed.
var ErrDispatch = errors.New("crm dispatch failed")

// Credentials identify a GoHighLevel location. Both fields are required
// together; a nil *Credentials means CRM integration is disabled.
type Credentials struct {
	APIKey     string
	LocationID string
}

// NewCredentials validates the both-or-neither rule. Both empty yields
// (nil, nil): the local-only mode with a disabled notifier.
func NewCredentials(apiKey, locationID string) (*Credentials, error) {
	if apiKey == "" && locationID == "" {
		return nil, nil
	}
	if apiKey == "" || locationID == "" {
		return nil, fmt.Errorf("crm credentials require both api key and location id")
	}
	return &Credentials{APIKey: apiKey, LocationID: locationID}, nil
}

// Notifier dispatches the CRM side effect for a classified comment.
type Notifier interface {
	Notify(ctx context.Context, label taxonomy.Category, contactRef string) (models.NotifyStatus, error)
}

// Client talks to the GoHighLevel v1 API. Repeated calls for the same
// label/contact may create duplicate CRM actions; the CRM is the source of
// truth and deduplication is its problem.
type Client struct {
	creds   *Credentials
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

type Option func(*Client)

// WithBaseURL overrides the GoHighLevel endpoint, used by tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithTimeout bounds each CRM request. An unbounded call would freeze the
// single-operator dashboard, so there is always a timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithRateLimit caps outbound CRM requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

func NewClient(creds *Credentials, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		creds:   creds,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether credentials were supplied.
func (c *Client) Enabled() bool {
	return c.creds != nil
}

// notifyPolicy: only LEAD and COMPLAINT trigger a CRM action.
func actionable(label taxonomy.Category) bool {
	return label == taxonomy.CategoryLead || label == taxonomy.CategoryComplaint
}

// Notify tags the contact for actionable categories. Unconfigured clients
// and non-actionable categories are a no-op returning skipped.
func (c *Client) Notify(ctx context.Context, label taxonomy.Category, contactRef string) (models.NotifyStatus, error) {
	if !c.Enabled() || !actionable(label) {
		return models.NotifySkipped, nil
	}

	meta, err := taxonomy.Meta(label)
	if err != nil {
		return models.NotifyFailed, err
	}

	if err := c.tagContact(ctx, contactRef, meta.Tags[0]); err != nil {
		c.logger.Error("Failed to dispatch CRM tag",
			zap.Error(err),
			zap.String("category", string(label)),
			zap.String("contact_ref", contactRef))
		return models.NotifyFailed, err
	}

	c.logger.Info("Tagged CRM contact",
		zap.String("category", string(label)),
		zap.String("contact_ref", contactRef),
		zap.String("tag", meta.Tags[0]))
	return models.NotifySent, nil
}

func (c *Client) tagContact(ctx context.Context, contactRef, tag string) error {
	url := fmt.Sprintf("%s/contacts/%s/tags", c.baseURL, contactRef)
	return c.post(ctx, url, map[string]string{"tag": tag})
}

// TriggerWorkflow starts the category's workflow for a contact. Categories
// without a workflow are a no-op.
func (c *Client) TriggerWorkflow(ctx context.Context, label taxonomy.Category, contactRef string) error {
	if !c.Enabled() {
		return nil
	}
	meta, err := taxonomy.Meta(label)
	if err != nil {
		return err
	}
	if meta.Workflow == "" {
		return nil
	}

	url := fmt.Sprintf("%s/workflows/trigger", c.baseURL)
	return c.post(ctx, url, map[string]string{
		"contactId":    contactRef,
		"workflowName": meta.Workflow,
		"locationId":   c.creds.LocationID,
	})
}

func (c *Client) post(ctx context.Context, url string, payload any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %v", ErrDispatch, err)
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDispatch, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDispatch, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.creds.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDispatch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: unexpected status %d", ErrDispatch, resp.StatusCode)
	}
	return nil
}
