package staging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/timmy/tmimport/internal/domain"
	"github.com/timmy/tmimport/internal/source"
)

const (
	// ProjectsDir is the directory holding staged project payloads.
	ProjectsDir = "projects"
	// DocumentsDir is the per-project directory holding staged document payloads.
	DocumentsDir = "documents"
)

// Adapter implements source.DocumentSource over provider payloads stored on disk:
//
//	{root}/projects/{projectID}.json
//	{root}/projects/{projectID}/documents/{documentID}.json
type Adapter struct {
	basePath string
	locales  source.LocaleResolver
}

var _ source.DocumentSource = (*Adapter)(nil)

// NewAdapter creates a new staging adapter.
// Parameters:
//   - basePath: base path to the staging directory.
//   - locales: converts the project target language into a catalog locale.
// Returns:
//   - *Adapter: initialized staging adapter.
func NewAdapter(basePath string, locales source.LocaleResolver) *Adapter {
	return &Adapter{
		basePath: basePath,
		locales:  locales,
	}
}

// Name returns the unique identifier for this source.
func (a *Adapter) Name() string {
	return "staging:" + a.basePath
}

// Fetch reads the staged project and document payloads.
// Parameters:
//   - ctx: context for cancellation (checked before reading).
//   - projectID: staged project identifier.
//   - documentID: staged document identifier.
// Returns:
//   - *domain.TranslatedDocument: normalized document.
//   - error: domain.ErrNotFound for missing files, domain.ErrProvider for malformed payloads.
func (a *Adapter) Fetch(ctx context.Context, projectID, documentID string) (*domain.TranslatedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var project source.Project
	if err := readJSON(a.projectPath(projectID), &project); err != nil {
		return nil, fmt.Errorf("project %s: %w", projectID, err)
	}
	if _, err := source.CheckProject(&project); err != nil {
		return nil, err
	}

	var document source.Document
	if err := readJSON(a.documentPath(projectID, documentID), &document); err != nil {
		return nil, fmt.Errorf("document %s: %w", documentID, err)
	}

	return source.Normalize(projectID, documentID, &project, &document, a.locales)
}

// ListDocuments lists the staged document IDs of a project in sorted order.
func (a *Adapter) ListDocuments(projectID string) ([]string, error) {
	dir := filepath.Join(a.basePath, ProjectsDir, filepath.Base(projectID), DocumentsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

func (a *Adapter) projectPath(projectID string) string {
	return filepath.Join(a.basePath, ProjectsDir, filepath.Base(projectID)+".json")
}

func (a *Adapter) documentPath(projectID, documentID string) string {
	return filepath.Join(a.basePath, ProjectsDir, filepath.Base(projectID), DocumentsDir, filepath.Base(documentID)+".json")
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProvider, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: malformed payload %s: %v", domain.ErrProvider, filepath.Base(path), err)
	}
	return nil
}
