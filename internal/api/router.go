// Package api assembles the HTTP surface of the analyzer.
package api

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"lbo-analyzer/internal/api/handlers"
	"lbo-analyzer/internal/api/middleware"
	"lbo-analyzer/internal/api/models"
	"lbo-analyzer/internal/cache"

	"github.com/gin-gonic/gin"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Memo        *cache.Memo
	PresetDir   string
	GridWorkers int
	CORSOrigins []string
	StaticDir   string          // optional SPA build to serve
	Cache       handlers.Pinger // optional; reported by /health
	Logger      *slog.Logger
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(d Deps) *gin.Engine {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(d.CORSOrigins))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.ErrorHandler(logger))

	presetHandler := handlers.NewPresetHandler(d.PresetDir, logger)
	lboHandler := handlers.NewLBOHandler(d.Memo, presetHandler.Dir(), d.GridWorkers, logger)
	historyHandler := handlers.NewHistoryHandler(logger)

	router.GET("/health", handlers.Health(d.Cache))

	api := router.Group("/api/v1")
	{
		api.POST("/lbo", lboHandler.RunLBO)
		api.GET("/lbo/:id", lboHandler.GetLBO)
		api.POST("/lbo/compare", lboHandler.CompareLBO)

		api.POST("/sensitivity", lboHandler.RunSensitivity)
		api.POST("/score", lboHandler.ScoreDeal)
		api.POST("/history", historyHandler.AnalyzeHistory)

		api.GET("/presets", presetHandler.ListPresets)
		api.GET("/presets/:id", presetHandler.GetPreset)
		api.GET("/exit-modes", handlers.ListExitModes)
	}

	serveStatic(router, d.StaticDir, logger)
	return router
}

// serveStatic serves a built SPA from dir, falling back to index.html for
// non-API routes. API routes still get a JSON 404.
func serveStatic(router *gin.Engine, dir string, logger *slog.Logger) {
	notFound := func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{Code: models.CodeNotFound, Message: "Not found"},
		})
	}
	if dir == "" {
		router.NoRoute(notFound)
		return
	}
	if _, err := os.Stat(dir); err != nil {
		logger.Warn("static directory not found, skipping static file serving", slog.String("dir", dir))
		router.NoRoute(notFound)
		return
	}
	router.Static("/assets", filepath.Join(dir, "assets"))
	router.StaticFile("/favicon.ico", filepath.Join(dir, "favicon.ico"))
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			notFound(c)
			return
		}
		c.File(filepath.Join(dir, "index.html"))
	})
	logger.Info("serving static files", slog.String("dir", dir))
}
