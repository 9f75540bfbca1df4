package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/company-brain/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newAzureTestServer(t *testing.T, status int, body string, captured *capturedRequest, path *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if path != nil {
			*path = r.URL.Path + "?" + r.URL.RawQuery
		}
		assert.Equal(t, "secret", r.Header.Get("api-key"))
		if captured != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func newAzureTestClient(t *testing.T, srv *httptest.Server) *AzureClient {
	t.Helper()
	c, err := NewAzureClient(AzureConfig{
		APIKey:     "secret",
		Endpoint:   srv.URL,
		APIVersion: "2024-02-01",
		Deployment: "gpt-4o-prod",
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)
	return c
}

const okCompletion = `{"id":"x","object":"chat.completion","model":"gpt-4o","choices":[
	{"index":0,"message":{"role":"assistant","content":"first answer"},"finish_reason":"stop"},
	{"index":1,"message":{"role":"assistant","content":"second answer"},"finish_reason":"stop"}]}`

func TestAzureClient_Complete(t *testing.T) {
	var captured capturedRequest
	var path string
	srv := newAzureTestServer(t, http.StatusOK, okCompletion, &captured, &path)
	defer srv.Close()

	resp, err := newAzureTestClient(t, srv).Complete(context.Background(), Request{
		System:      "system role",
		Prompt:      "user prompt",
		Temperature: Temperature(0.2),
	})
	require.NoError(t, err)

	assert.Equal(t, "first answer", resp.Text)
	assert.Equal(t, "gpt-4o", resp.Model)
	assert.Equal(t, "/openai/deployments/gpt-4o-prod/chat/completions?api-version=2024-02-01", path)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "system role", captured.Messages[0].Content)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "user prompt", captured.Messages[1].Content)
	require.NotNil(t, captured.Temperature)
	assert.InDelta(t, 0.2, *captured.Temperature, 1e-6)
}

func TestAzureClient_DefaultTemperatureOmitted(t *testing.T) {
	var captured capturedRequest
	srv := newAzureTestServer(t, http.StatusOK, okCompletion, &captured, nil)
	defer srv.Close()

	_, err := newAzureTestClient(t, srv).Complete(context.Background(), Request{System: "s", Prompt: "p"})
	require.NoError(t, err)
	assert.Nil(t, captured.Temperature)
}

func TestAzureClient_ExplicitZeroTemperatureSent(t *testing.T) {
	var captured capturedRequest
	srv := newAzureTestServer(t, http.StatusOK, okCompletion, &captured, nil)
	defer srv.Close()

	_, err := newAzureTestClient(t, srv).Complete(context.Background(), Request{System: "s", Prompt: "p", Temperature: Temperature(0)})
	require.NoError(t, err)
	require.NotNil(t, captured.Temperature, "explicit zero must reach the wire")
	assert.InDelta(t, 0, *captured.Temperature, 1e-6)
}

func TestAzureClient_ProviderError(t *testing.T) {
	body := `{"error":{"code":"429","message":"Rate limit is exceeded. Try again in 20 seconds."}}`
	srv := newAzureTestServer(t, http.StatusTooManyRequests, body, nil, nil)
	defer srv.Close()

	_, err := newAzureTestClient(t, srv).Complete(context.Background(), Request{System: "s", Prompt: "p"})
	require.Error(t, err)

	se, ok := models.AsServiceError(err)
	require.True(t, ok, "expected ServiceError, got %T", err)
	assert.Equal(t, ServiceName, se.Service)
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.Equal(t, "Rate limit is exceeded. Try again in 20 seconds.", se.Message)
}

func TestAzureClient_NoChoices(t *testing.T) {
	srv := newAzureTestServer(t, http.StatusOK, `{"id":"x","choices":[]}`, nil, nil)
	defer srv.Close()

	_, err := newAzureTestClient(t, srv).Complete(context.Background(), Request{System: "s", Prompt: "p"})
	_, ok := models.AsServiceError(err)
	assert.True(t, ok)
}

func TestNewAzureClient_RequiresCredentials(t *testing.T) {
	_, err := NewAzureClient(AzureConfig{APIKey: "k"})
	assert.Error(t, err)
}
