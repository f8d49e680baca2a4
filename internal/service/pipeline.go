package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/timmy/tmimport/internal/domain"
	"github.com/timmy/tmimport/internal/impex"
	"github.com/timmy/tmimport/internal/logger"
	"github.com/timmy/tmimport/internal/source"
	"github.com/timmy/tmimport/internal/storage"
)

// Trigger starts the downstream import job of an item type.
type Trigger interface {
	Trigger(ctx context.Context, itemType domain.ItemType, siteID string) (domain.JobOutcome, error)
}

// StateUpdater records translated locales of catalog items.
type StateUpdater interface {
	MarkTranslated(ctx context.Context, itemType domain.ItemType, itemID, locale string) error
}

// RunRecorder persists import run history.
type RunRecorder interface {
	Create(ctx context.Context, run *domain.ImportRun) error
	Update(ctx context.Context, run *domain.ImportRun) error
}

// ImportConfig holds configuration for the import pipeline
type ImportConfig struct {
	SiteID     string
	Namespace  string
	Extension  string
	RunTimeout time.Duration
}

// ImportService runs the fetch, serialize, write, trigger and update stages for one document.
type ImportService struct {
	source     source.DocumentSource
	serializer *impex.Serializer
	store      storage.ArtifactStore
	trigger    Trigger
	states     StateUpdater
	runs       RunRecorder
	cfg        ImportConfig
	now        func() time.Time
}

// NewImportService creates a new import service.
// Parameters:
//   - src: document source the translation is read from.
//   - serializer: builds the import document.
//   - store: artifact store the import job reads from.
//   - trigger: downstream job trigger.
//   - states: translation state updater.
//   - runs: run history recorder.
//   - cfg: site, artifact naming and timeout settings.
// Returns:
//   - *ImportService: initialized service.
func NewImportService(
	src source.DocumentSource,
	serializer *impex.Serializer,
	store storage.ArtifactStore,
	trigger Trigger,
	states StateUpdater,
	runs RunRecorder,
	cfg *ImportConfig,
) *ImportService {
	c := *cfg
	if c.Namespace == "" {
		c.Namespace = "textmaster"
	}
	if c.Extension == "" {
		c.Extension = "xml"
	}
	return &ImportService{
		source:     src,
		serializer: serializer,
		store:      store,
		trigger:    trigger,
		states:     states,
		runs:       runs,
		cfg:        c,
		now:        time.Now,
	}
}

// Run imports one translated document. Stages run sequentially and stop at the first failure.
// A document that is not ready ends the run without an artifact or state change and is not an error.
// Parameters:
//   - ctx: context for cancellation; bounded by the configured run timeout.
//   - req: project and document to import.
// Returns:
//   - *domain.ImportRun: the recorded run, also on failure.
//   - error: the classified stage error, nil for imported and not ready runs.
func (s *ImportService) Run(ctx context.Context, req domain.ImportRequest) (*domain.ImportRun, error) {
	if s.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RunTimeout)
		defer cancel()
	}

	run := &domain.ImportRun{
		ID:         uuid.New().String(),
		ProjectID:  req.ProjectID,
		DocumentID: req.DocumentID,
		Status:     domain.RunStatusRunning,
		StartedAt:  s.now(),
	}
	ctx = logger.SetRunID(ctx, run.ID)
	ctx = logger.WithFields(ctx, logger.Fields{
		logger.FieldProjectID:  req.ProjectID,
		logger.FieldDocumentID: req.DocumentID,
	})
	log := logger.FromContext(ctx)

	if err := s.runs.Create(ctx, run); err != nil {
		log.WithError(err).Error("Failed to record import run")
		return run, err
	}
	log.Info("Import run started")

	err := s.execute(ctx, run)
	switch {
	case err == nil:
		run.Status = domain.RunStatusImported
	case errors.Is(err, domain.ErrNotReady):
		run.Status = domain.RunStatusNotReady
		run.ErrorLog = err.Error()
		err = nil
	default:
		run.Status = domain.RunStatusFailed
		run.ErrorLog = err.Error()
	}
	s.finish(ctx, run)

	entry := logger.With(logger.Fields{
		logger.FieldItemType: run.ItemType,
		"item_id":            run.ItemID,
		"locale":             run.Locale,
	}).WithStatus(string(run.Status)).WithDuration(run.StartedAt)
	switch run.Status {
	case domain.RunStatusImported:
		entry.Info(ctx, "Import run finished: %s", run.ArtifactPath)
	case domain.RunStatusNotReady:
		entry.Info(ctx, "Document not ready for import: %s", run.ErrorLog)
	default:
		entry.Error(ctx, "Import run failed: %s", run.ErrorLog)
	}
	return run, err
}

func (s *ImportService) execute(ctx context.Context, run *domain.ImportRun) error {
	req := domain.ImportRequest{ProjectID: run.ProjectID, DocumentID: run.DocumentID}
	if err := req.Validate(); err != nil {
		return err
	}

	doc, err := s.source.Fetch(ctx, run.ProjectID, run.DocumentID)
	if doc != nil {
		run.ItemType = doc.ItemType
		run.ItemID = doc.ItemID
		run.Locale = doc.TargetLocale
	}
	if err != nil {
		return err
	}
	if doc.ItemID == "" {
		logger.CtxWarn(ctx, "Document %s has no item id, importing with an empty one", run.DocumentID)
	}

	artifact := s.serializer.Serialize(doc)
	key, err := domain.ArtifactKey{ItemType: doc.ItemType, DocumentID: doc.DocumentID}.Path(s.cfg.Namespace, s.cfg.Extension)
	if err != nil {
		return err
	}
	location, err := s.store.Write(ctx, key, artifact)
	if err != nil {
		return err
	}
	run.ArtifactPath = location
	logger.CtxDebug(ctx, "Artifact written to %s", location)

	outcome, err := s.trigger.Trigger(ctx, doc.ItemType, s.cfg.SiteID)
	run.Outcome = outcome
	if err != nil {
		logger.CtxError(ctx, "Item import failed with error code %d", outcome.StatusCode())
		return err
	}

	if err := s.states.MarkTranslated(ctx, doc.ItemType, doc.ItemID, doc.TargetLocale); err != nil {
		return fmt.Errorf("job %s accepted but state not updated: %w", outcome, err)
	}
	return nil
}

// finish stamps and saves the final state of run. The save is not bound to the run deadline.
func (s *ImportService) finish(ctx context.Context, run *domain.ImportRun) {
	completed := s.now()
	run.CompletedAt = &completed
	if err := s.runs.Update(context.WithoutCancel(ctx), run); err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Failed to save import run result")
	}
}
