// Package textmaster reads translated documents from the TextMaster REST API.
package textmaster

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/tmimport/internal/domain"
	"github.com/timmy/tmimport/internal/logger"
	"github.com/timmy/tmimport/internal/source"
)

// Config holds configuration for the TextMaster client
type Config struct {
	BaseURL      string
	ProjectPath  string
	DocumentPath string
	Timeout      time.Duration
	Headers      map[string]string
}

// Client implements source.DocumentSource over the TextMaster API.
type Client struct {
	client       *resty.Client
	projectPath  string
	documentPath string
	locales      source.LocaleResolver
}

var _ source.DocumentSource = (*Client)(nil)

// NewClient creates a new TextMaster client.
// Parameters:
//   - cfg: API location, paths, timeout and static headers.
//   - locales: converts the project target language into a catalog locale.
// Returns:
//   - *Client: initialized client.
func NewClient(cfg *Config, locales source.LocaleResolver) *Client {
	client := resty.New()
	client.SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/"))
	client.SetHeader("Accept", "application/json")
	client.SetHeaders(cfg.Headers)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &Client{
		client:       client,
		projectPath:  strings.Trim(cfg.ProjectPath, "/"),
		documentPath: strings.Trim(cfg.DocumentPath, "/"),
		locales:      locales,
	}
}

// Name returns the source identifier.
func (c *Client) Name() string {
	return "textmaster"
}

// Fetch reads the project, validates it and then reads the document.
func (c *Client) Fetch(ctx context.Context, projectID, documentID string) (*domain.TranslatedDocument, error) {
	var project source.Project
	if err := c.get(ctx, "/"+c.projectPath+"/{projectID}", map[string]string{
		"projectID": projectID,
	}, &project); err != nil {
		return nil, fmt.Errorf("project %s: %w", projectID, err)
	}

	// project settings are checked before the document is read
	if _, err := source.CheckProject(&project); err != nil {
		return nil, err
	}

	var document source.Document
	if err := c.get(ctx, "/"+c.projectPath+"/{projectID}/"+c.documentPath+"/{documentID}", map[string]string{
		"projectID":  projectID,
		"documentID": documentID,
	}, &document); err != nil {
		return nil, fmt.Errorf("document %s: %w", documentID, err)
	}

	logger.CtxDebug(ctx, "Fetched document %s of project %s with status %q", documentID, projectID, document.Status)
	return source.Normalize(projectID, documentID, &project, &document, c.locales)
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, result interface{}) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParams(params).
		SetResult(result).
		Get(path)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: request failed: %v", domain.ErrProvider, err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return domain.ErrNotFound
	case resp.IsError():
		return fmt.Errorf("%w: status %d", domain.ErrProvider, resp.StatusCode())
	case resp.StatusCode() != http.StatusOK:
		return fmt.Errorf("%w: unexpected status %d", domain.ErrProvider, resp.StatusCode())
	}
	return nil
}
