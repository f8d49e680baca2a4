package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/tmimport/internal/config"
	"github.com/timmy/tmimport/internal/domain"
	"github.com/timmy/tmimport/internal/impex"
	"github.com/timmy/tmimport/internal/repository"
	"github.com/timmy/tmimport/internal/schema"
	"github.com/timmy/tmimport/internal/storage"
	"gorm.io/gorm"
)

type fakeSource struct {
	mu    sync.Mutex
	docs  map[string]*domain.TranslatedDocument
	errs  map[string]error
	calls []string
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Fetch(ctx context.Context, projectID, documentID string) (*domain.TranslatedDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, documentID)
	if err := f.errs[documentID]; err != nil {
		return f.docs[documentID], err
	}
	doc, ok := f.docs[documentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

type fakeTrigger struct {
	mu      sync.Mutex
	status  string
	calls   int
	siteIDs []string
}

func (f *fakeTrigger) Trigger(ctx context.Context, itemType domain.ItemType, siteID string) (domain.JobOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.siteIDs = append(f.siteIDs, siteID)
	outcome := domain.ClassifyExecutionStatus(f.status)
	if !outcome.Accepted() {
		return outcome, fmt.Errorf("%w: status %q", domain.ErrTriggerFailed, f.status)
	}
	return outcome, nil
}

type pipelineFixture struct {
	db      *gorm.DB
	source  *fakeSource
	trigger *fakeTrigger
	store   *storage.LocalStore
	states  *repository.TranslationStateRepository
	runs    *repository.RunRepository
	service *ImportService
}

func newPipelineFixture(t *testing.T, status string) *pipelineFixture {
	t.Helper()
	db, err := repository.InitDB(&config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "pipeline.db"),
		AutoMigrate: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	f := &pipelineFixture{
		db:      db,
		source:  &fakeSource{docs: map[string]*domain.TranslatedDocument{}, errs: map[string]error{}},
		trigger: &fakeTrigger{status: status},
		store:   storage.NewLocalStore(t.TempDir()),
		states:  repository.NewTranslationStateRepository(db),
		runs:    repository.NewRunRepository(db),
	}
	f.service = NewImportService(
		f.source,
		impex.NewSerializer(schema.Default(), impex.LibraryConfig{}),
		f.store,
		f.trigger,
		f.states,
		f.runs,
		&ImportConfig{SiteID: "RefArch"},
	)
	return f
}

func hatDocument(documentID string, status domain.DocumentStatus) *domain.TranslatedDocument {
	return &domain.TranslatedDocument{
		ProjectID:    "P1",
		DocumentID:   documentID,
		Status:       status,
		ItemID:       "SKU-1",
		ItemType:     domain.ItemTypeProduct,
		CatalogID:    "C1",
		TargetLocale: "fr_FR",
		Attributes: []domain.AttributeRef{
			{ID: "name", Type: domain.AttributeTypeSystem},
			{ID: "color", Type: domain.AttributeTypeCustom},
		},
		Fields:     map[string]string{"name": "Hat", "color": "Red"},
		PageFields: map[string]string{},
	}
}

const hatKey = "src/textmaster/product/D1.xml"

func TestRunAcceptedMarksTranslated(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture(t, "JobAlreadyRunningException")
	f.source.docs["D1"] = hatDocument("D1", domain.DocumentStatusCompleted)

	run, err := f.service.Run(ctx, domain.ImportRequest{ProjectID: "P1", DocumentID: "D1"})
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusImported, run.Status)
	assert.Equal(t, domain.JobOutcomeAlreadyRunning, run.Outcome)
	wantPath, err := f.store.Path(hatKey)
	require.NoError(t, err)
	assert.Equal(t, wantPath, run.ArtifactPath)
	assert.Equal(t, []string{"RefArch"}, f.trigger.siteIDs)

	data, err := os.ReadFile(run.ArtifactPath)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `<product product-id="SKU-1">`))
	assert.True(t, strings.Contains(string(data), `<custom-attribute attribute-id="color" xml:lang="fr_FR">Red</custom-attribute>`))

	locales, err := f.states.ListLocales(ctx, domain.ItemTypeProduct, "SKU-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"fr_FR"}, locales)

	saved, err := f.runs.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusImported, saved.Status)
	assert.NotNil(t, saved.CompletedAt)
}

func TestRunPendingWritesNothing(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture(t, "running")
	f.source.docs["D1"] = hatDocument("D1", domain.DocumentStatusPending)
	f.source.errs["D1"] = fmt.Errorf("document D1 is pending: %w", domain.ErrNotReady)

	run, err := f.service.Run(ctx, domain.ImportRequest{ProjectID: "P1", DocumentID: "D1"})
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusNotReady, run.Status)

	exists, err := f.store.Exists(ctx, hatKey)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, 0, f.trigger.calls)

	locales, err := f.states.ListLocales(ctx, domain.ItemTypeProduct, "SKU-1")
	require.NoError(t, err)
	assert.Empty(t, locales)
}

func TestRunFailedTriggerKeepsArtifact(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture(t, "error")
	f.source.docs["D1"] = hatDocument("D1", domain.DocumentStatusInReview)

	run, err := f.service.Run(ctx, domain.ImportRequest{ProjectID: "P1", DocumentID: "D1"})
	assert.ErrorIs(t, err, domain.ErrTriggerFailed)
	assert.Equal(t, domain.RunStatusFailed, run.Status)
	assert.Equal(t, domain.JobOutcomeFailed, run.Outcome)
	assert.NotEmpty(t, run.ErrorLog)

	exists, err := f.store.Exists(ctx, hatKey)
	require.NoError(t, err)
	assert.True(t, exists)

	locales, err := f.states.ListLocales(ctx, domain.ItemTypeProduct, "SKU-1")
	require.NoError(t, err)
	assert.Empty(t, locales)
}

func TestRunInvalidConfigurationStops(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture(t, "running")
	f.source.errs["D1"] = fmt.Errorf("%w: product project P1 has no catalog", domain.ErrInvalidConfiguration)

	run, err := f.service.Run(ctx, domain.ImportRequest{ProjectID: "P1", DocumentID: "D1"})
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
	assert.Equal(t, domain.RunStatusFailed, run.Status)
	assert.Equal(t, 0, f.trigger.calls)

	exists, err := f.store.Exists(ctx, hatKey)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRunRepeatedImportIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture(t, "running")
	f.source.docs["D1"] = hatDocument("D1", domain.DocumentStatusCompleted)

	for i := 0; i < 2; i++ {
		_, err := f.service.Run(ctx, domain.ImportRequest{ProjectID: "P1", DocumentID: "D1"})
		require.NoError(t, err)
	}

	locales, err := f.states.ListLocales(ctx, domain.ItemTypeProduct, "SKU-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"fr_FR"}, locales)

	runs, err := f.runs.ListRecent(ctx, "D1", 10)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestRunRejectsTraversalDocumentID(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture(t, "running")
	dir := t.TempDir()
	f.service.store = storage.NewLocalStore(filepath.Join(dir, "impex"))
	victim := filepath.Join(dir, "victim.xml")
	require.NoError(t, os.WriteFile(victim, []byte("PRECIOUS"), 0644))

	id := "../../../../victim"
	f.source.docs[id] = hatDocument(id, domain.DocumentStatusCompleted)

	run, err := f.service.Run(ctx, domain.ImportRequest{ProjectID: "P1", DocumentID: id})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.Equal(t, domain.RunStatusFailed, run.Status)
	assert.Empty(t, run.ArtifactPath)
	assert.Empty(t, f.source.calls)
	assert.Zero(t, f.trigger.calls)

	data, err := os.ReadFile(victim)
	require.NoError(t, err)
	assert.Equal(t, "PRECIOUS", string(data))
}

func TestRunRejectsUnsafeDocumentIDFromSource(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture(t, "running")
	f.source.docs["D9"] = hatDocument("../D9", domain.DocumentStatusCompleted)

	run, err := f.service.Run(ctx, domain.ImportRequest{ProjectID: "P1", DocumentID: "D9"})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.Equal(t, domain.RunStatusFailed, run.Status)
	assert.Empty(t, run.ArtifactPath)
	assert.Zero(t, f.trigger.calls)
}
