// Package analysis runs the two request-scoped pipelines: document analysis
// and the spreadsheet influence graph. Inputs are checked before any
// external service is called.
package analysis

import (
	"context"
	"strings"
	"time"

	"github.com/company-brain/backend/internal/llm"
	"github.com/company-brain/backend/internal/logger"
	"github.com/company-brain/backend/internal/metrics"
	"github.com/company-brain/backend/internal/models"
	"github.com/company-brain/backend/internal/prompt"
)

// Outcome labels for flow metrics.
const (
	outcomeOK           = "ok"
	outcomeRejected     = "rejected"
	outcomeServiceError = "service_error"
	outcomeError        = "error"
)

func outcomeOf(err error) string {
	if err == nil {
		return outcomeOK
	}
	if _, ok := Guidance(err); ok {
		return outcomeRejected
	}
	if _, ok := models.AsServiceError(err); ok {
		return outcomeServiceError
	}
	return outcomeError
}

// checkInput applies the guards shared by both flows.
func checkInput(artifact *models.Artifact, question string, allowed ...models.MediaType) error {
	if artifact.Empty() {
		return ErrMissingFile
	}
	if strings.TrimSpace(question) == "" {
		return ErrMissingQuestion
	}
	for _, mt := range allowed {
		if artifact.MediaType == mt {
			return nil
		}
	}
	return ErrUnsupportedType
}

// ask sends the assembled prompt with the fixed system role.
func ask(ctx context.Context, client llm.Client, log logger.Logger, p string, temperature *float32) (*models.ModelResponse, error) {
	start := time.Now()
	resp, err := client.Complete(ctx, llm.Request{
		System:      prompt.SystemRole,
		Prompt:      p,
		Temperature: temperature,
	})
	metrics.ObserveCall(llm.ServiceName, start, err)
	if err != nil {
		log.WithError(err).Error("language model call failed", nil)
		return nil, err
	}
	log.Info("language model answered", map[string]interface{}{
		"model":    resp.Model,
		"chars":    len(resp.Text),
		"duration": time.Since(start).String(),
	})
	return resp, nil
}
