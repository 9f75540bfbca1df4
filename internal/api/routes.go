// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"strings"
	"time"

	"github.com/company-brain/backend/internal/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Documents    DocumentAnalyzer
	Spreadsheets SpreadsheetAnalyzer
	Services     map[string]bool
	Version      string
	Log          logger.Logger
}

// Handlers holds all handler instances
type Handlers struct {
	Health  HealthHandler
	Analyze AnalyzeHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(deps.Version, deps.Services),
		Analyze: NewAnalyzeHandler(deps.Documents, deps.Spreadsheets, deps.Version, deps.Log),
	}
}

// RegisterRoutes registers all routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// HTML pages
	e.GET("/", handlers.Analyze.HandleIndex)
	e.POST("/analyze/document", handlers.Analyze.HandleDocumentPage)
	e.POST("/analyze/spreadsheet", handlers.Analyze.HandleSpreadsheetPage)

	apiGroup := e.Group("/api")
	apiGroup.GET("/health", handlers.Health.HandleHealth)
	apiGroup.POST("/analyze/document", handlers.Analyze.HandleDocumentAPI)
	apiGroup.POST("/analyze/spreadsheet", handlers.Analyze.HandleSpreadsheetAPI)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// MiddlewareConfig selects the optional middleware
type MiddlewareConfig struct {
	BodyLimit        string
	RequestLogging   bool
	Compression      bool
	ShowErrorDetails bool
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, cfg MiddlewareConfig, log logger.Logger) {
	e.HTTPErrorHandler = NewErrorHandler(log, cfg.ShowErrorDetails)

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			log.WithError(err).Error("panic recovered", map[string]interface{}{
				"path":  c.Request().URL.Path,
				"stack": string(stack),
			})
			return err
		},
	}))

	e.Use(middleware.RequestID())

	if cfg.RequestLogging {
		e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			Skipper: func(c echo.Context) bool {
				path := c.Request().URL.Path
				return path == "/api/health" || path == "/metrics" || strings.HasPrefix(path, "/static/")
			},
			LogMethod:    true,
			LogURI:       true,
			LogStatus:    true,
			LogLatency:   true,
			LogRequestID: true,
			LogError:     true,
			LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
				fields := map[string]interface{}{
					"method":     v.Method,
					"uri":        v.URI,
					"status":     v.Status,
					"latency":    v.Latency.Round(time.Millisecond).String(),
					"request_id": v.RequestID,
				}
				if v.Error != nil {
					log.WithError(v.Error).Warn("request", fields)
					return nil
				}
				log.Info("request", fields)
				return nil
			},
		}))
	}

	if cfg.Compression {
		e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
			Skipper: func(c echo.Context) bool {
				return wantsMsgpack(c)
			},
		}))
	}

	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}
}
