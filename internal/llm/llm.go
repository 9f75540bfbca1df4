// Package llm sends a single-turn prompt to a chat-completion provider.
package llm

import (
	"context"

	"github.com/company-brain/backend/internal/models"
)

// ServiceName labels language-model failures and metrics.
const ServiceName = "language-model"

// Request is one system message plus one user message. A nil Temperature
// leaves the provider default in place.
type Request struct {
	System      string
	Prompt      string
	Temperature *float32
}

// Client invokes a chat-completion capability. Provider failures are
// returned as *models.ServiceError.
type Client interface {
	Complete(ctx context.Context, req Request) (*models.ModelResponse, error)
}

// Temperature is a helper for building a Request.
func Temperature(t float32) *float32 {
	return &t
}
