// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/company-brain/backend/internal/analysis"
	"github.com/labstack/echo/v4"
)

// AnalyzeHandler serves both analysis flows as HTML pages and as API routes
type AnalyzeHandler interface {
	HandleIndex(c echo.Context) error
	HandleDocumentPage(c echo.Context) error
	HandleSpreadsheetPage(c echo.Context) error
	HandleDocumentAPI(c echo.Context) error
	HandleSpreadsheetAPI(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// DocumentAnalyzer runs the document flow.
// This allows mocking in tests
type DocumentAnalyzer interface {
	Run(ctx context.Context, in analysis.DocumentInput) (*analysis.DocumentResult, error)
}

// SpreadsheetAnalyzer runs the spreadsheet flow.
type SpreadsheetAnalyzer interface {
	Run(ctx context.Context, in analysis.SpreadsheetInput) (*analysis.SpreadsheetResult, error)
}
