// fakes.go - Test doubles for the external service adapters
package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/company-brain/backend/internal/llm"
	"github.com/company-brain/backend/internal/models"
)

// FakeExtractor implements ocr.Extractor with canned lines.
type FakeExtractor struct {
	mu    sync.Mutex
	Lines []string
	Pages int
	Err   error
	calls []*models.Artifact
}

func (f *FakeExtractor) Extract(ctx context.Context, artifact *models.Artifact) (*models.ExtractedText, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, artifact)
	if f.Err != nil {
		return nil, f.Err
	}
	return &models.ExtractedText{Pages: f.Pages, Lines: append([]string(nil), f.Lines...)}, nil
}

// Calls returns how many times Extract was invoked.
func (f *FakeExtractor) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// Artifacts returns the artifacts passed to Extract.
func (f *FakeExtractor) Artifacts() []*models.Artifact {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.Artifact(nil), f.calls...)
}

// FakeLLM implements llm.Client and records every request.
type FakeLLM struct {
	mu       sync.Mutex
	Answer   string
	Err      error
	requests []llm.Request
}

func (f *FakeLLM) Complete(ctx context.Context, req llm.Request) (*models.ModelResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.Err != nil {
		return nil, f.Err
	}
	return &models.ModelResponse{Model: "fake-model", Text: f.Answer}, nil
}

// Calls returns how many times Complete was invoked.
func (f *FakeLLM) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// LastRequest returns the most recent request.
func (f *FakeLLM) LastRequest() (llm.Request, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return llm.Request{}, false
	}
	return f.requests[len(f.requests)-1], true
}

// StaticReader implements analysis.DatasetReader with a fixed dataset.
type StaticReader struct {
	Dataset *models.Dataset
	Err     error
	Paths   []string
}

func (s *StaticReader) Parse(ctx context.Context, path string) (*models.Dataset, error) {
	s.Paths = append(s.Paths, path)
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Dataset == nil {
		return nil, errors.New("no dataset configured")
	}
	return s.Dataset, nil
}

// ProviderError builds the ServiceError a failing provider would return.
func ProviderError(service, message string) *models.ServiceError {
	return &models.ServiceError{Service: service, StatusCode: 401, Message: message}
}
