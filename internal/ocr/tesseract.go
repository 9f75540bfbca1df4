//go:build tesseract

package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/company-brain/backend/internal/models"
	"github.com/otiai10/gosseract/v2"
)

// TesseractExtractor runs OCR locally through libtesseract. It reads PNG
// and JPEG images only; PDFs need the hosted provider.
type TesseractExtractor struct {
	languages []string
}

// NewTesseractExtractor creates a local extractor for the given languages.
func NewTesseractExtractor(languages []string) (Extractor, error) {
	return &TesseractExtractor{languages: languages}, nil
}

// Extract recognises the image and returns its non-blank lines.
func (t *TesseractExtractor) Extract(ctx context.Context, artifact *models.Artifact) (*models.ExtractedText, error) {
	if artifact.Empty() {
		return nil, fmt.Errorf("extract: empty artifact")
	}
	if !artifact.MediaType.IsImage() {
		return nil, fmt.Errorf("%w: tesseract reads images, got %s", ErrUnsupportedMediaType, artifact.MediaType)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if len(t.languages) > 0 {
		if err := client.SetLanguage(t.languages...); err != nil {
			return nil, models.NewServiceError("tesseract", err)
		}
	}
	if err := client.SetImageFromBytes(artifact.Data); err != nil {
		return nil, models.NewServiceError("tesseract", err)
	}
	raw, err := client.Text()
	if err != nil {
		return nil, models.NewServiceError("tesseract", err)
	}

	text := &models.ExtractedText{Pages: 1, Lines: []string{}}
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			text.Lines = append(text.Lines, line)
		}
	}
	return text, nil
}
