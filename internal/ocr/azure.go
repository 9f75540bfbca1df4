package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/company-brain/backend/internal/models"
)

// Operation states reported by the analyze endpoint.
const (
	statusNotStarted = "notStarted"
	statusRunning    = "running"
	statusSucceeded  = "succeeded"
	statusFailed     = "failed"
)

// AzureConfig configures the Document Intelligence REST client.
type AzureConfig struct {
	Endpoint     string
	Key          string
	ModelID      string
	APIVersion   string
	PollInterval time.Duration
	HTTPClient   *http.Client
}

// AzureExtractor calls the Azure Document Intelligence (Form Recognizer)
// analyze API and waits for the long-running operation to finish.
type AzureExtractor struct {
	endpoint     string
	key          string
	modelID      string
	apiVersion   string
	pollInterval time.Duration
	client       *http.Client
}

// NewAzureExtractor creates an extractor for the given endpoint and key.
func NewAzureExtractor(cfg AzureConfig) (*AzureExtractor, error) {
	if cfg.Endpoint == "" || cfg.Key == "" {
		return nil, fmt.Errorf("NewAzureExtractor: endpoint and key cannot be empty")
	}
	if cfg.ModelID == "" {
		cfg.ModelID = "prebuilt-document"
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2023-07-31"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	return &AzureExtractor{
		endpoint:     strings.TrimRight(cfg.Endpoint, "/"),
		key:          cfg.Key,
		modelID:      cfg.ModelID,
		apiVersion:   cfg.APIVersion,
		pollInterval: cfg.PollInterval,
		client:       cfg.HTTPClient,
	}, nil
}

type analyzeOperation struct {
	Status        string         `json:"status"`
	AnalyzeResult *analyzeResult `json:"analyzeResult"`
	Error         *providerError `json:"error"`
}

type analyzeResult struct {
	Pages []struct {
		PageNumber int `json:"pageNumber"`
		Lines      []struct {
			Content string `json:"content"`
		} `json:"lines"`
	} `json:"pages"`
}

type providerError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error *providerError `json:"error"`
}

// Extract submits the artifact bytes and returns every line of every page.
func (a *AzureExtractor) Extract(ctx context.Context, artifact *models.Artifact) (*models.ExtractedText, error) {
	if artifact.Empty() {
		return nil, fmt.Errorf("extract: empty artifact")
	}

	opURL, err := a.submit(ctx, artifact)
	if err != nil {
		return nil, err
	}

	op, err := a.await(ctx, opURL)
	if err != nil {
		return nil, err
	}

	text := &models.ExtractedText{Lines: []string{}}
	if op.AnalyzeResult != nil {
		text.Pages = len(op.AnalyzeResult.Pages)
		for _, page := range op.AnalyzeResult.Pages {
			for _, line := range page.Lines {
				text.Lines = append(text.Lines, line.Content)
			}
		}
	}
	return text, nil
}

func (a *AzureExtractor) analyzeURL() string {
	return fmt.Sprintf("%s/formrecognizer/documentModels/%s:analyze?api-version=%s",
		a.endpoint, url.PathEscape(a.modelID), url.QueryEscape(a.apiVersion))
}

// submit starts the analysis and returns the operation URL to poll.
func (a *AzureExtractor) submit(ctx context.Context, artifact *models.Artifact) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.analyzeURL(), bytes.NewReader(artifact.Data))
	if err != nil {
		return "", fmt.Errorf("build analyze request: %w", err)
	}
	contentType := string(artifact.MediaType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Ocp-Apim-Subscription-Key", a.key)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", models.NewServiceError(ServiceName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return "", responseError(resp)
	}

	opURL := resp.Header.Get("Operation-Location")
	if opURL == "" {
		return "", &models.ServiceError{
			Service:    ServiceName,
			StatusCode: resp.StatusCode,
			Message:    "response did not include an Operation-Location header",
		}
	}
	return opURL, nil
}

// await polls the operation until it reaches a terminal state.
func (a *AzureExtractor) await(ctx context.Context, opURL string) (*analyzeOperation, error) {
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, opURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build poll request: %w", err)
		}
		req.Header.Set("Ocp-Apim-Subscription-Key", a.key)

		resp, err := a.client.Do(req)
		if err != nil {
			return nil, models.NewServiceError(ServiceName, err)
		}
		if resp.StatusCode != http.StatusOK {
			defer resp.Body.Close()
			return nil, responseError(resp)
		}

		var op analyzeOperation
		err = json.NewDecoder(resp.Body).Decode(&op)
		resp.Body.Close()
		if err != nil {
			return nil, models.NewServiceError(ServiceName, fmt.Errorf("decode operation: %w", err))
		}

		switch op.Status {
		case statusSucceeded:
			return &op, nil
		case statusFailed:
			se := &models.ServiceError{Service: ServiceName, StatusCode: resp.StatusCode, Message: "analysis failed"}
			if op.Error != nil {
				se.Code = op.Error.Code
				se.Message = op.Error.Message
			}
			return nil, se
		case statusNotStarted, statusRunning:
		default:
			return nil, &models.ServiceError{
				Service: ServiceName,
				Message: fmt.Sprintf("unexpected operation status %q", op.Status),
			}
		}

		wait := a.pollInterval
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
				wait = time.Duration(secs) * time.Second
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// responseError converts a non-success response into a ServiceError,
// keeping the provider's message when the body carries one.
func responseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	se := &models.ServiceError{
		Service:    ServiceName,
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(body)),
	}
	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil && env.Error != nil {
		se.Code = env.Error.Code
		se.Message = env.Error.Message
	}
	if se.Message == "" {
		se.Message = resp.Status
	}
	return se
}
