// Package ocr turns uploaded documents into ordered text lines by delegating
// to a document-analysis provider.
package ocr

import (
	"context"
	"errors"

	"github.com/company-brain/backend/internal/models"
)

// ServiceName labels OCR failures and metrics.
const ServiceName = "document-analysis"

// ErrUnsupportedMediaType is returned when a provider cannot read the artifact.
var ErrUnsupportedMediaType = errors.New("unsupported media type")

// Extractor submits an artifact to a document-analysis capability.
// Provider failures are returned as *models.ServiceError.
type Extractor interface {
	Extract(ctx context.Context, artifact *models.Artifact) (*models.ExtractedText, error)
}
