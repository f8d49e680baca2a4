package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/timmy/tmimport/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QueueRepository persists the singleton import queue record.
// Every operation is an atomic read-modify-write: postgres locks the row with
// SELECT ... FOR UPDATE, and sqlite writers are serialized by an in-process mutex.
type QueueRepository struct {
	db  *gorm.DB
	mu  sync.Mutex
	now func() time.Time
}

// NewQueueRepository creates a new QueueRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *QueueRepository: repository instance bound to db.
func NewQueueRepository(db *gorm.DB) *QueueRepository {
	return &QueueRepository{db: db, now: time.Now}
}

// update runs fn against the locked queue record and saves the result.
func (r *QueueRepository) update(ctx context.Context, fn func(rec *domain.QueueRecord) error) (*domain.QueueRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out domain.QueueRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := r.load(tx)
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
		rec.UpdatedAt = r.now()
		if err := tx.Save(rec).Error; err != nil {
			return fmt.Errorf("%w: failed to save queue: %v", domain.ErrStorage, err)
		}
		out = *rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// load reads the queue row inside tx, creating it on first use.
func (r *QueueRepository) load(tx *gorm.DB) (*domain.QueueRecord, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var rec domain.QueueRecord
	err := q.First(&rec, "id = ?", domain.QueueRecordID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		rec = domain.QueueRecord{ID: domain.QueueRecordID, Queued: domain.RequestList{}}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rec).Error; err != nil {
			return nil, fmt.Errorf("%w: failed to create queue: %v", domain.ErrStorage, err)
		}
		if err := q.First(&rec, "id = ?", domain.QueueRecordID).Error; err != nil {
			return nil, fmt.Errorf("%w: failed to read queue: %v", domain.ErrStorage, err)
		}
		return &rec, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read queue: %v", domain.ErrStorage, err)
	}
	return &rec, nil
}

// Enqueue appends a request to the queue.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - req: request to append.
// Returns:
//   - bool: true if a run is already active and the caller must not start one.
//   - error: wraps domain.ErrStorage if the queue cannot be read or written.
func (r *QueueRepository) Enqueue(ctx context.Context, req domain.ImportRequest) (bool, error) {
	if req.EnqueuedAt.IsZero() {
		req.EnqueuedAt = r.now()
	}
	rec, err := r.update(ctx, func(rec *domain.QueueRecord) error {
		rec.Queued = append(rec.Queued, req)
		return nil
	})
	if err != nil {
		return false, err
	}
	return rec.IsRunning(), nil
}

// Claim takes the head of the queue and marks it running.
// Returns:
//   - *domain.ImportRequest: the claimed request, or nil when a run is active or the queue is empty.
//   - error: wraps domain.ErrStorage on persistence failures.
func (r *QueueRepository) Claim(ctx context.Context) (*domain.ImportRequest, error) {
	var claimed *domain.ImportRequest
	_, err := r.update(ctx, func(rec *domain.QueueRecord) error {
		if rec.IsRunning() || len(rec.Queued) == 0 {
			return nil
		}
		head := rec.Queued[0]
		rec.Queued = append(domain.RequestList{}, rec.Queued[1:]...)

		now := r.now()
		rec.RunningDocumentID = &head.DocumentID
		rec.RunningProjectID = &head.ProjectID
		rec.RunningSince = &now
		claimed = &head
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// Complete releases the running slot held by documentID.
// A mismatching document leaves the record untouched and reports false.
func (r *QueueRepository) Complete(ctx context.Context, documentID string) (bool, error) {
	released := false
	_, err := r.update(ctx, func(rec *domain.QueueRecord) error {
		if rec.RunningDocumentID == nil || *rec.RunningDocumentID != documentID {
			return nil
		}
		clearRunning(rec)
		released = true
		return nil
	})
	return released, err
}

// Reset clears the running slot regardless of owner. Used to recover after a crash mid-run.
func (r *QueueRepository) Reset(ctx context.Context) (*domain.QueueRecord, error) {
	return r.update(ctx, func(rec *domain.QueueRecord) error {
		clearRunning(rec)
		return nil
	})
}

// Snapshot returns the current queue record.
func (r *QueueRepository) Snapshot(ctx context.Context) (*domain.QueueRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var rec *domain.QueueRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		rec, err = r.load(tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func clearRunning(rec *domain.QueueRecord) {
	rec.RunningDocumentID = nil
	rec.RunningProjectID = nil
	rec.RunningSince = nil
}
