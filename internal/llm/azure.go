package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/company-brain/backend/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

// AzureConfig configures the Azure OpenAI client.
type AzureConfig struct {
	APIKey     string
	Endpoint   string
	APIVersion string
	Deployment string
	HTTPClient *http.Client
}

// AzureClient calls an Azure OpenAI chat-completions deployment.
type AzureClient struct {
	client     *openai.Client
	deployment string
}

// NewAzureClient creates a client bound to one deployment.
func NewAzureClient(cfg AzureConfig) (*AzureClient, error) {
	if cfg.APIKey == "" || cfg.Endpoint == "" || cfg.Deployment == "" {
		return nil, fmt.Errorf("NewAzureClient: key, endpoint and deployment cannot be empty")
	}

	oc := openai.DefaultAzureConfig(cfg.APIKey, cfg.Endpoint)
	if cfg.APIVersion != "" {
		oc.APIVersion = cfg.APIVersion
	}
	deployment := cfg.Deployment
	oc.AzureModelMapperFunc = func(string) string { return deployment }
	if cfg.HTTPClient != nil {
		oc.HTTPClient = cfg.HTTPClient
	}

	return &AzureClient{
		client:     openai.NewClientWithConfig(oc),
		deployment: deployment,
	}, nil
}

// Complete returns the content of the first choice.
func (a *AzureClient) Complete(ctx context.Context, req Request) (*models.ModelResponse, error) {
	creq := openai.ChatCompletionRequest{
		Model: a.deployment,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
	}
	if req.Temperature != nil {
		creq.Temperature = *req.Temperature
		// go-openai omits a zero temperature, which the service reads as its default
		if creq.Temperature == 0 {
			creq.Temperature = math.SmallestNonzeroFloat32
		}
	}

	resp, err := a.client.CreateChatCompletion(ctx, creq)
	if err != nil {
		return nil, azureError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &models.ServiceError{Service: ServiceName, Message: "response contained no choices"}
	}

	model := resp.Model
	if model == "" {
		model = a.deployment
	}
	return &models.ModelResponse{
		Model: model,
		Text:  resp.Choices[0].Message.Content,
	}, nil
}

// azureError unwraps the provider message from go-openai's error types.
func azureError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		se := &models.ServiceError{
			Service:    ServiceName,
			StatusCode: apiErr.HTTPStatusCode,
			Message:    apiErr.Message,
			Err:        err,
		}
		if code, ok := apiErr.Code.(string); ok {
			se.Code = code
		}
		return se
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &models.ServiceError{
			Service:    ServiceName,
			StatusCode: reqErr.HTTPStatusCode,
			Message:    err.Error(),
			Err:        err,
		}
	}
	return models.NewServiceError(ServiceName, err)
}
