package analysis

import (
	"context"
	"fmt"

	"github.com/company-brain/backend/internal/graph"
	"github.com/company-brain/backend/internal/llm"
	"github.com/company-brain/backend/internal/logger"
	"github.com/company-brain/backend/internal/metrics"
	"github.com/company-brain/backend/internal/models"
	"github.com/company-brain/backend/internal/prompt"
	"github.com/company-brain/backend/internal/storage"
)

// SpreadsheetTypes are the uploads the spreadsheet flow accepts.
var SpreadsheetTypes = []models.MediaType{models.MediaTypeCSV}

// DatasetReader parses a spooled spreadsheet.
type DatasetReader interface {
	Parse(ctx context.Context, path string) (*models.Dataset, error)
}

// SpreadsheetInput is one spreadsheet analysis request.
type SpreadsheetInput struct {
	Artifact *models.Artifact
	Question string
}

// SpreadsheetResult is everything shown after a spreadsheet analysis.
type SpreadsheetResult struct {
	FileName  string                    `json:"fileName"`
	Dataset   *models.Dataset           `json:"dataset"`
	Relations []models.WeightedRelation `json:"relations"`
	Table     []graph.TableRow          `json:"table"`
	GraphPNG  string                    `json:"graphPng"` // data URI
	Notice    string                    `json:"notice"`
	Question  string                    `json:"question"`
	Answer    models.ModelResponse      `json:"answer"`
}

// SpreadsheetFlow draws the placeholder influence graph for a CSV and asks
// the language model about it.
type SpreadsheetFlow struct {
	store  storage.Store
	reader DatasetReader
	client llm.Client
	log    logger.Logger
}

// NewSpreadsheetFlow creates the flow. A nil client means the language model
// is not configured; Run then reports ErrNotConfigured.
func NewSpreadsheetFlow(store storage.Store, reader DatasetReader, client llm.Client, log logger.Logger) *SpreadsheetFlow {
	return &SpreadsheetFlow{
		store:  store,
		reader: reader,
		client: client,
		log:    log.With(map[string]interface{}{"flow": "spreadsheet"}),
	}
}

// Run executes the flow: parse, fixed relations, graph, prompt, language
// model. The language model is called with its default temperature.
func (f *SpreadsheetFlow) Run(ctx context.Context, in SpreadsheetInput) (res *SpreadsheetResult, err error) {
	defer func() { metrics.ObserveFlow("spreadsheet", outcomeOf(err)) }()

	if err := checkInput(in.Artifact, in.Question, SpreadsheetTypes...); err != nil {
		return nil, err
	}
	if f.client == nil {
		return nil, ErrNotConfigured
	}

	log := f.log.With(map[string]interface{}{
		"file": in.Artifact.Name,
		"size": len(in.Artifact.Data),
	})

	ds, err := f.parse(ctx, in.Artifact)
	if err != nil {
		log.WithError(err).Warn("spreadsheet parse failed", nil)
		return nil, err
	}

	relations, err := graph.Relations(ds)
	if err != nil {
		return nil, err
	}

	uri, err := graph.DataURI(graph.Build(relations))
	if err != nil {
		return nil, fmt.Errorf("render graph: %w", err)
	}
	log.Info("influence graph rendered", map[string]interface{}{"columns": len(ds.Columns)})

	p, err := prompt.BuildRelationPrompt(relations, in.Question)
	if err != nil {
		return nil, err
	}

	answer, err := ask(ctx, f.client, log, p, nil)
	if err != nil {
		return nil, err
	}

	return &SpreadsheetResult{
		FileName:  in.Artifact.Name,
		Dataset:   ds,
		Relations: relations,
		Table:     graph.Table(relations),
		GraphPNG:  uri,
		Notice:    graph.Notice,
		Question:  in.Question,
		Answer:    *answer,
	}, nil
}

// parse spools the upload to a temp file for the reader and removes it
// afterwards.
func (f *SpreadsheetFlow) parse(ctx context.Context, artifact *models.Artifact) (*models.Dataset, error) {
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
	return f.reader.Parse(ctx, path)
}
