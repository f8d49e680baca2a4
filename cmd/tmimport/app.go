package main

import (
	"context"
	"fmt"

	"github.com/timmy/tmimport/internal/config"
	"github.com/timmy/tmimport/internal/impex"
	"github.com/timmy/tmimport/internal/locale"
	"github.com/timmy/tmimport/internal/logger"
	"github.com/timmy/tmimport/internal/repository"
	"github.com/timmy/tmimport/internal/schema"
	"github.com/timmy/tmimport/internal/service"
	"github.com/timmy/tmimport/internal/source"
	"github.com/timmy/tmimport/internal/source/staging"
	"github.com/timmy/tmimport/internal/source/textmaster"
	"github.com/timmy/tmimport/internal/storage"
	"gorm.io/gorm"
)

// app holds every wired component of the importer.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *gorm.DB
	mapper  *locale.Mapper
	source  source.DocumentSource
	queue   *repository.QueueRepository
	states  *repository.TranslationStateRepository
	runs    *repository.RunRepository
	imports *service.ImportService
	manager *service.QueueManager
}

// newApp loads configuration and wires the pipeline.
func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "tmimport",
		File:        cfg.Log.File,
		FileOnly:    cfg.Log.FileOnly,
		MaxSizeMB:   cfg.Log.MaxSizeMB,
		MaxBackups:  cfg.Log.MaxBackups,
		MaxAgeDays:  cfg.Log.MaxAgeDays,
		Compress:    cfg.Log.Compress,
	})
	logger.SetDefaultLogger(log)

	attrSchema := schema.Default()
	if cfg.Schema.File != "" {
		attrSchema, err = schema.Load(cfg.Schema.File)
		if err != nil {
			return nil, fmt.Errorf("failed to load attribute schema: %w", err)
		}
		log.Infof("Attribute schema loaded from %s", cfg.Schema.File)
	}

	pairs := make([]locale.Pair, 0, len(cfg.Locales))
	for _, l := range cfg.Locales {
		pairs = append(pairs, locale.Pair{Catalog: l.Catalog, Provider: l.Provider})
	}
	mapper := locale.NewMapper(pairs)

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	var src source.DocumentSource
	switch cfg.Provider.Type {
	case "staging":
		src = staging.NewAdapter(cfg.Provider.StagingRoot, mapper)
	default:
		src = textmaster.NewClient(&textmaster.Config{
			BaseURL:      cfg.Provider.BaseURL,
			ProjectPath:  cfg.Provider.ProjectPath,
			DocumentPath: cfg.Provider.DocumentPath,
			Timeout:      cfg.Provider.Timeout,
			Headers:      cfg.Provider.Headers,
		}, mapper)
	}

	store, err := storage.NewArtifactStore(ctx, cfg.Artifact, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize artifact store: %w", err)
	}

	trigger := service.NewJobTrigger(&service.JobTriggerConfig{
		URL:        cfg.Jobs.URL,
		Timeout:    cfg.Jobs.Timeout,
		Token:      cfg.Jobs.Token,
		ProductJob: cfg.Jobs.ProductJob,
		CatalogJob: cfg.Jobs.CatalogJob,
		ContentJob: cfg.Jobs.ContentJob,
	})

	a := &app{
		cfg:    cfg,
		log:    log,
		db:     db,
		mapper: mapper,
		source: src,
		queue:  repository.NewQueueRepository(db),
		states: repository.NewTranslationStateRepository(db),
		runs:   repository.NewRunRepository(db),
	}
	a.imports = service.NewImportService(
		src,
		impex.NewSerializer(attrSchema, impex.LibraryConfig{
			Shared: cfg.Site.SharedLibrary(),
			ID:     cfg.Site.LibraryID,
		}),
		store,
		trigger,
		a.states,
		a.runs,
		&service.ImportConfig{
			SiteID:     cfg.Site.ID,
			Namespace:  cfg.Artifact.Namespace,
			Extension:  cfg.Artifact.Extension,
			RunTimeout: cfg.Import.RunTimeout,
		},
	)
	a.manager = service.NewQueueManager(a.queue, a.imports)

	log.WithFields(logger.Fields{
		"site":     cfg.Site.ID,
		"provider": src.Name(),
		"backend":  cfg.Artifact.Backend,
		"database": cfg.Database.Driver,
	}).Info("Importer initialized")
	return a, nil
}

// Close releases the database connection and flushes logs.
func (a *app) Close() {
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Sync()
}
