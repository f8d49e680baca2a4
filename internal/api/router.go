package api

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/tmimport/internal/api/handler"
	"github.com/timmy/tmimport/internal/api/middleware"
	"github.com/timmy/tmimport/internal/config"
	"github.com/timmy/tmimport/internal/locale"
	"github.com/timmy/tmimport/internal/logger"
)

// Dependencies are the services the HTTP surface is built on.
type Dependencies struct {
	Queue  handler.ImportQueue
	Runs   handler.RunLister
	States handler.LocaleLister
	Mapper *locale.Mapper
	DB     handler.Pinger
	Logger *logger.Logger
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(deps Dependencies, cfg config.ServerConfig) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	log := deps.Logger
	if log == nil {
		log = logger.GetDefault()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(cfg.CORS))

	healthHandler := handler.NewHealthHandler(deps.DB)
	importHandler := handler.NewImportHandler(deps.Queue)
	queueHandler := handler.NewQueueHandler(deps.Queue)
	runHandler := handler.NewRunHandler(deps.Runs)
	translationHandler := handler.NewTranslationHandler(deps.States, deps.Mapper)

	r.GET("/health", healthHandler.Health)

	// provider callback
	r.GET("/import", importHandler.Callback)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/imports", importHandler.Create)

		v1.GET("/queue", queueHandler.Status)
		v1.POST("/queue/reset", queueHandler.Reset)
		v1.POST("/queue/drain", queueHandler.Drain)

		v1.GET("/runs", runHandler.ListRuns)
		v1.GET("/runs/:id", runHandler.GetRun)

		v1.GET("/translations/:item_type/:item_id", translationHandler.GetTranslations)
		v1.POST("/locales/map", translationHandler.MapLocales)
	}

	return r
}
