package llm

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/company-brain/backend/internal/models"
)

// VertexClient calls a Gemini model on Vertex AI.
type VertexClient struct {
	baseClient *genai.Client
	modelName  string
}

// NewVertexClient creates a client for projectID in region.
func NewVertexClient(ctx context.Context, projectID, region, modelName string) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}
	if modelName == "" {
		modelName = "gemini-1.5-pro"
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	return &VertexClient{baseClient: baseClient, modelName: modelName}, nil
}

// Complete sends the prompt with the system role as system instruction and
// joins the text parts of the first candidate.
func (v *VertexClient) Complete(ctx context.Context, req Request) (*models.ModelResponse, error) {
	model := v.baseClient.GenerativeModel(v.modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(req.System)},
	}
	if req.Temperature != nil {
		model.SetTemperature(*req.Temperature)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return nil, models.NewServiceError(ServiceName, err)
	}
	text, err := candidateText(resp)
	if err != nil {
		return nil, err
	}

	return &models.ModelResponse{Model: v.modelName, Text: text}, nil
}

// candidateText joins the text parts of the first candidate. Non-text parts
// are skipped.
func candidateText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &models.ServiceError{Service: ServiceName, Message: "response contained no candidates"}
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String(), nil
}

// Close releases the underlying Vertex AI client.
func (v *VertexClient) Close() error {
	if v.baseClient != nil {
		return v.baseClient.Close()
	}
	return nil
}
