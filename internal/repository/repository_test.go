package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/tmimport/internal/config"
	"github.com/timmy/tmimport/internal/domain"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := InitDB(&config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "test.db"),
		AutoMigrate: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestQueueEnqueueReportsRunning(t *testing.T) {
	ctx := context.Background()
	repo := NewQueueRepository(newTestDB(t))

	running, err := repo.Enqueue(ctx, domain.ImportRequest{ProjectID: "P1", DocumentID: "D1"})
	require.NoError(t, err)
	assert.False(t, running)

	claimed, err := repo.Claim(ctx)
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, "D1", claimed.DocumentID)

	running, err = repo.Enqueue(ctx, domain.ImportRequest{ProjectID: "P1", DocumentID: "D2"})
	require.NoError(t, err)
	assert.True(t, running)

	snap, err := repo.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Queued, 1)
	assert.Equal(t, "D2", snap.Queued[0].DocumentID)
	require.NotNil(t, snap.RunningDocumentID)
	assert.Equal(t, "D1", *snap.RunningDocumentID)
	assert.False(t, snap.Queued[0].EnqueuedAt.IsZero())
}

func TestQueueClaimCompleteTransitions(t *testing.T) {
	ctx := context.Background()
	repo := NewQueueRepository(newTestDB(t))

	claimed, err := repo.Claim(ctx)
	require.NoError(t, err)
	assert.Nil(t, claimed, "empty queue has nothing to claim")

	for _, id := range []string{"D1", "D2"} {
		_, err := repo.Enqueue(ctx, domain.ImportRequest{ProjectID: "P", DocumentID: id})
		require.NoError(t, err)
	}

	first, err := repo.Claim(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "D1", first.DocumentID)

	blocked, err := repo.Claim(ctx)
	require.NoError(t, err)
	assert.Nil(t, blocked, "claim must wait for the running document")

	released, err := repo.Complete(ctx, "other")
	require.NoError(t, err)
	assert.False(t, released)

	released, err = repo.Complete(ctx, "D1")
	require.NoError(t, err)
	assert.True(t, released)

	second, err := repo.Claim(ctx)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, "D2", second.DocumentID)

	snap, err := repo.Reset(ctx)
	require.NoError(t, err)
	assert.False(t, snap.IsRunning())
	assert.Empty(t, snap.Queued)
}

func TestQueueConcurrentEnqueueKeepsEveryRequest(t *testing.T) {
	ctx := context.Background()
	repo := NewQueueRepository(newTestDB(t))

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Enqueue(ctx, domain.ImportRequest{ProjectID: "P", DocumentID: fmt.Sprintf("D%d", i)})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	snap, err := repo.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Queued, n)

	seen := make(map[string]bool, n)
	for _, req := range snap.Queued {
		seen[req.DocumentID] = true
	}
	assert.Len(t, seen, n)
}

func TestMarkTranslatedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewTranslationStateRepository(newTestDB(t))

	require.NoError(t, repo.MarkTranslated(ctx, domain.ItemTypeProduct, "SKU-1", "fr_FR"))
	require.NoError(t, repo.MarkTranslated(ctx, domain.ItemTypeProduct, "SKU-1", "fr_FR"))
	require.NoError(t, repo.MarkTranslated(ctx, domain.ItemTypeProduct, "SKU-1", "de_DE"))
	require.NoError(t, repo.MarkTranslated(ctx, domain.ItemTypeCategory, "SKU-1", "it_IT"))

	locales, err := repo.ListLocales(ctx, domain.ItemTypeProduct, "SKU-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"de_DE", "fr_FR"}, locales)
}

func TestRunRepositoryListRecent(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository(newTestDB(t))

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, doc := range []string{"D1", "D2", "D1"} {
		require.NoError(t, repo.Create(ctx, &domain.ImportRun{
			ID:         fmt.Sprintf("run-%d", i),
			ProjectID:  "P",
			DocumentID: doc,
			Status:     domain.RunStatusRunning,
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	run, err := repo.GetByID(ctx, "run-0")
	require.NoError(t, err)
	run.Status = domain.RunStatusImported
	require.NoError(t, repo.Update(ctx, run))

	runs, err := repo.ListRecent(ctx, "D1", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, domain.RunStatusImported, runs[1].Status)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
