// handlers_health.go - Health check handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version  string
	services map[string]bool
}

// NewHealthHandler creates a new health handler. services reports which
// external services have credentials configured.
func NewHealthHandler(version string, services map[string]bool) HealthHandler {
	return &HealthHandlerImpl{
		version:  version,
		services: services,
	}
}

// HandleHealth returns server health status
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	status := "ok"
	for _, ready := range h.services {
		if !ready {
			status = "degraded"
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   status,
		"version":  h.version,
		"services": h.services,
	})
}
