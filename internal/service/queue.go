package service

import (
	"context"
	"strings"
	"sync"

	"github.com/timmy/tmimport/internal/domain"
	"github.com/timmy/tmimport/internal/logger"
)

// QueueStore is the persisted import queue.
type QueueStore interface {
	Enqueue(ctx context.Context, req domain.ImportRequest) (bool, error)
	Claim(ctx context.Context) (*domain.ImportRequest, error)
	Complete(ctx context.Context, documentID string) (bool, error)
	Snapshot(ctx context.Context) (*domain.QueueRecord, error)
	Reset(ctx context.Context) (*domain.QueueRecord, error)
}

// Runner imports a single request.
type Runner interface {
	Run(ctx context.Context, req domain.ImportRequest) (*domain.ImportRun, error)
}

// QueueManager serializes import runs through the persisted queue: at most one run is active.
type QueueManager struct {
	queue  QueueStore
	runner Runner
	wg     sync.WaitGroup
}

// NewQueueManager creates a new queue manager
func NewQueueManager(queue QueueStore, runner Runner) *QueueManager {
	return &QueueManager{queue: queue, runner: runner}
}

// Submit queues a request. When no run is active a background drain is started.
// Parameters:
//   - ctx: request context; the background drain keeps its values but not its cancellation.
//   - projectID: provider project identifier.
//   - documentID: provider document identifier.
// Returns:
//   - bool: true if a run was already active and the request waits in the queue.
//   - error: non-nil if the request could not be queued reliably.
func (m *QueueManager) Submit(ctx context.Context, projectID, documentID string) (bool, error) {
	req := domain.ImportRequest{
		ProjectID:  strings.TrimSpace(projectID),
		DocumentID: strings.TrimSpace(documentID),
	}
	if err := req.Validate(); err != nil {
		return false, err
	}

	running, err := m.queue.Enqueue(ctx, req)
	if err != nil {
		return false, err
	}
	if running {
		logger.CtxInfo(ctx, "Run active, document %s of project %s queued", req.DocumentID, req.ProjectID)
		return true, nil
	}

	drainCtx := context.WithoutCancel(ctx)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if _, err := m.Drain(drainCtx); err != nil {
			logger.FromContext(drainCtx).WithError(err).Error("Queue drain failed")
		}
	}()
	return false, nil
}

// Drain runs queued requests one after another until the queue is empty, another
// drainer holds the running slot, or ctx is done.
// Returns:
//   - int: number of requests processed.
//   - error: non-nil on queue persistence failures; run failures are only logged.
func (m *QueueManager) Drain(ctx context.Context) (int, error) {
	processed := 0
	for ctx.Err() == nil {
		req, err := m.queue.Claim(ctx)
		if err != nil {
			return processed, err
		}
		if req == nil {
			break
		}

		if _, err := m.runner.Run(ctx, *req); err != nil {
			logger.FromContext(ctx).WithError(err).Warnf("Import of document %s ended with error", req.DocumentID)
		}
		processed++

		// the slot must be released even if ctx was cancelled during the run
		if _, err := m.queue.Complete(context.WithoutCancel(ctx), req.DocumentID); err != nil {
			return processed, err
		}
	}

	if processed > 0 {
		logger.With(logger.Fields{logger.FieldCount: processed}).Info(ctx, "Queue drained")
	}
	return processed, nil
}

// Snapshot returns the persisted queue state.
func (m *QueueManager) Snapshot(ctx context.Context) (*domain.QueueRecord, error) {
	return m.queue.Snapshot(ctx)
}

// Reset releases a running slot left behind by a crashed run.
func (m *QueueManager) Reset(ctx context.Context) (*domain.QueueRecord, error) {
	rec, err := m.queue.Reset(ctx)
	if err != nil {
		return nil, err
	}
	logger.CtxWarn(ctx, "Queue running slot reset, %d requests queued", len(rec.Queued))
	return rec, nil
}

// Wait blocks until all background drains have finished.
func (m *QueueManager) Wait() {
	m.wg.Wait()
}
