package analysis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/company-brain/backend/internal/llm"
	"github.com/company-brain/backend/internal/logger"
	"github.com/company-brain/backend/internal/metrics"
	"github.com/company-brain/backend/internal/models"
	"github.com/company-brain/backend/internal/ocr"
	"github.com/company-brain/backend/internal/prompt"
	"github.com/company-brain/backend/internal/storage"
)

// DocumentTypes are the uploads the document flow accepts.
var DocumentTypes = []models.MediaType{models.MediaTypePDF, models.MediaTypePNG, models.MediaTypeJPEG}

// DocumentInput is one document analysis request.
type DocumentInput struct {
	Artifact *models.Artifact
	Question string
}

// DocumentResult is everything shown after a document analysis.
type DocumentResult struct {
	FileName      string               `json:"fileName"`
	Pages         int                  `json:"pages"`
	ExtractedText string               `json:"extractedText"`
	Question      string               `json:"question"`
	Answer        models.ModelResponse `json:"answer"`
}

// DocumentFlow runs OCR on a document and asks the language model about it.
type DocumentFlow struct {
	store       storage.Store
	extractor   ocr.Extractor
	client      llm.Client
	temperature float32
	log         logger.Logger
}

// NewDocumentFlow creates the flow. A nil extractor or client means the
// service is not configured; Run then reports ErrNotConfigured.
func NewDocumentFlow(store storage.Store, extractor ocr.Extractor, client llm.Client, temperature float32, log logger.Logger) *DocumentFlow {
	return &DocumentFlow{
		store:       store,
		extractor:   extractor,
		client:      client,
		temperature: temperature,
		log:         log.With(map[string]interface{}{"flow": "document"}),
	}
}

// Run executes the flow: PDF pre-flight, spool, OCR, line join, prompt,
// language model. Unreadable PDFs are rejected before any service call.
func (f *DocumentFlow) Run(ctx context.Context, in DocumentInput) (res *DocumentResult, err error) {
	defer func() { metrics.ObserveFlow("document", outcomeOf(err)) }()

	if err := checkInput(in.Artifact, in.Question, DocumentTypes...); err != nil {
		return nil, err
	}
	if f.extractor == nil || f.client == nil {
		return nil, ErrNotConfigured
	}

	log := f.log.With(map[string]interface{}{
		"file": in.Artifact.Name,
		"type": string(in.Artifact.MediaType),
		"size": len(in.Artifact.Data),
	})

	pages := 0
	if in.Artifact.MediaType == models.MediaTypePDF {
		n, err := ocr.PDFPageCount(in.Artifact.Data)
		if err != nil {
			log.Warn("pdf rejected", map[string]interface{}{"error": err.Error()})
			return nil, err
		}
		pages = n
	}

	log.Info("extracting document content", nil)
	text, err := f.extract(ctx, in.Artifact)
	if err != nil {
		log.WithError(err).Error("document analysis failed", nil)
		return nil, err
	}
	if pages == 0 {
		pages = text.Pages
	}

	joined := text.Text()
	log.Info("text extracted", map[string]interface{}{"lines": len(text.Lines), "pages": pages})

	p, err := prompt.BuildDocumentPrompt(joined, in.Question)
	if err != nil {
		if errors.Is(err, prompt.ErrMissingContent) {
			return nil, ErrNoText
		}
		return nil, err
	}

	answer, err := ask(ctx, f.client, log, p, llm.Temperature(f.temperature))
	if err != nil {
		return nil, err
	}

	return &DocumentResult{
		FileName:      in.Artifact.Name,
		Pages:         pages,
		ExtractedText: joined,
		Question:      in.Question,
		Answer:        *answer,
	}, nil
}

// extract spools the upload to a temp file, submits the spooled bytes and
// removes the file again.
func (f *DocumentFlow) extract(ctx context.Context, artifact *models.Artifact) (*models.ExtractedText, error) {
	info, err := f.store.SaveBytes(artifact.Name, artifact.Data)
	if err != nil {
		return nil, fmt.Errorf("spool upload: %w", err)
	}
	defer func() {
		if derr := f.store.Delete(info.ID); derr != nil {
			f.log.Warn("temp file cleanup failed", map[string]interface{}{"id": info.ID, "error": derr.Error()})
		}
	}()

	path, err := f.store.GetFilePath(info.ID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spooled upload: %w", err)
	}

	start := time.Now()
	text, err := f.extractor.Extract(ctx, &models.Artifact{Name: artifact.Name, MediaType: artifact.MediaType, Data: data})
	metrics.ObserveCall(ocr.ServiceName, start, err)
	return text, err
}
