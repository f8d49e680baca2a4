package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/timmy/tmimport/internal/domain"
	"gorm.io/gorm"
)

// RunRepository stores the history of import runs.
type RunRepository struct {
	db *gorm.DB
}

// NewRunRepository creates a new RunRepository.
func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run record.
func (r *RunRepository) Create(ctx context.Context, run *domain.ImportRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("%w: failed to create run: %v", domain.ErrStorage, err)
	}
	return nil
}

// Update saves all fields of an existing run.
func (r *RunRepository) Update(ctx context.Context, run *domain.ImportRun) error {
	if err := r.db.WithContext(ctx).Save(run).Error; err != nil {
		return fmt.Errorf("%w: failed to update run: %v", domain.ErrStorage, err)
	}
	return nil
}

// GetByID retrieves a run by its ID.
// Returns domain.ErrNotFound when no run matches.
func (r *RunRepository) GetByID(ctx context.Context, id string) (*domain.ImportRun, error) {
	var run domain.ImportRun
	err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("run %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get run: %v", domain.ErrStorage, err)
	}
	return &run, nil
}

// ListRecent retrieves the most recent runs, newest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - documentID: optional filter; empty lists runs of all documents.
//   - limit: maximum number of runs to return.
func (r *RunRepository) ListRecent(ctx context.Context, documentID string, limit int) ([]domain.ImportRun, error) {
	if limit <= 0 {
		limit = 20
	}
	q := r.db.WithContext(ctx).Order("started_at DESC").Limit(limit)
	if documentID != "" {
		q = q.Where("document_id = ?", documentID)
	}

	var runs []domain.ImportRun
	if err := q.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to list runs: %v", domain.ErrStorage, err)
	}
	return runs, nil
}
