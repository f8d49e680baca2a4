package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/tmimport/internal/domain"
	"github.com/timmy/tmimport/internal/logger"
)

// JobTriggerConfig holds configuration for the job execution endpoint
type JobTriggerConfig struct {
	URL        string // endpoint template; {0} or {job} is replaced by the job name
	Timeout    time.Duration
	Token      string
	ProductJob string
	CatalogJob string
	ContentJob string
}

// JobTrigger asks the downstream system to run the import job for an item type.
type JobTrigger struct {
	client *resty.Client
	cfg    JobTriggerConfig
}

// NewJobTrigger creates a new job trigger
func NewJobTrigger(cfg *JobTriggerConfig) *JobTrigger {
	client := resty.New()
	client.SetHeader("Accept", "application/json")
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &JobTrigger{
		client: client,
		cfg:    *cfg,
	}
}

// jobResponse is the execution payload returned by the job endpoint
type jobResponse struct {
	ExecutionStatus string `json:"execution_status"`
	Fault           *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"fault,omitempty"`
}

func (r jobResponse) status() string {
	if r.ExecutionStatus != "" {
		return r.ExecutionStatus
	}
	if r.Fault != nil {
		return r.Fault.Type
	}
	return ""
}

// JobName returns the site scoped job that imports items of itemType.
func (t *JobTrigger) JobName(itemType domain.ItemType, siteID string) (string, error) {
	var prefix string
	switch itemType.JobKind() {
	case domain.JobKindProductImport:
		prefix = t.cfg.ProductJob
	case domain.JobKindCatalogImport:
		prefix = t.cfg.CatalogJob
	case domain.JobKindContentImport:
		prefix = t.cfg.ContentJob
	default:
		return "", fmt.Errorf("%w: no import job for item type %q", domain.ErrInvalidConfiguration, itemType)
	}
	return prefix + siteID, nil
}

func (t *JobTrigger) endpoint(jobName string) string {
	escaped := url.PathEscape(jobName)
	return strings.NewReplacer("{0}", escaped, "{job}", escaped).Replace(t.cfg.URL)
}

// Trigger starts the import job for itemType. No payload beyond the job name is sent.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - itemType: item type whose import job should run.
//   - siteID: site the job is scoped to.
// Returns:
//   - domain.JobOutcome: classified execution status.
//   - error: wraps domain.ErrTriggerFailed when the outcome is failed.
func (t *JobTrigger) Trigger(ctx context.Context, itemType domain.ItemType, siteID string) (domain.JobOutcome, error) {
	jobName, err := t.JobName(itemType, siteID)
	if err != nil {
		return domain.JobOutcomeFailed, err
	}

	start := time.Now()
	resp, err := t.client.R().
		SetContext(ctx).
		Post(t.endpoint(jobName))
	if err != nil {
		return domain.JobOutcomeFailed, fmt.Errorf("%w: job %s: %v", domain.ErrTriggerFailed, jobName, err)
	}

	var body jobResponse
	if len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), &body); err != nil {
			return domain.JobOutcomeFailed, fmt.Errorf("%w: job %s: status %d, malformed response: %v",
				domain.ErrTriggerFailed, jobName, resp.StatusCode(), err)
		}
	}

	status := body.status()
	outcome := domain.ClassifyExecutionStatus(status)
	logger.With(logger.Fields{
		"job":              jobName,
		"execution_status": status,
		"http_status":      resp.StatusCode(),
		"status_code":      outcome.StatusCode(),
	}).WithStatus(string(outcome)).WithDuration(start).Info(ctx, "Job %s trigger returned %q", jobName, status)

	if !outcome.Accepted() {
		return outcome, fmt.Errorf("%w: job %s returned status %q (http %d)",
			domain.ErrTriggerFailed, jobName, status, resp.StatusCode())
	}
	return outcome, nil
}
