package analysis

import (
	"context"
	"testing"

	"github.com/company-brain/backend/internal/logger"
	"github.com/company-brain/backend/internal/models"
	"github.com/company-brain/backend/internal/ocr"
	"github.com/company-brain/backend/internal/prompt"
	"github.com/company-brain/backend/internal/storage"
	"github.com/company-brain/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngArtifact() *models.Artifact {
	return &models.Artifact{Name: "kpi.png", MediaType: models.MediaTypePNG, Data: []byte{0x89, 'P', 'N', 'G'}}
}

func newDocumentFlow(t *testing.T, ex *testutil.FakeExtractor, lm *testutil.FakeLLM) *DocumentFlow {
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	return NewDocumentFlow(store, ex, lm, 0.2, logger.NewTestLogger(t))
}

func TestDocumentFlow_InputGuards(t *testing.T) {
	tests := []struct {
		name     string
		artifact *models.Artifact
		question string
		want     error
	}{
		{"blank question", pngArtifact(), "  \n ", ErrMissingQuestion},
		{"empty question", pngArtifact(), "", ErrMissingQuestion},
		{"question without file", nil, "Was meinst du?", ErrMissingFile},
		{"empty file", &models.Artifact{Name: "x.pdf", MediaType: models.MediaTypePDF}, "Was meinst du?", ErrMissingFile},
		{"csv not accepted", &models.Artifact{Name: "x.csv", MediaType: models.MediaTypeCSV, Data: []byte("a")}, "Frage", ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := &testutil.FakeExtractor{Lines: []string{"A"}}
			lm := &testutil.FakeLLM{Answer: "ok"}

			_, err := newDocumentFlow(t, ex, lm).Run(context.Background(), DocumentInput{Artifact: tt.artifact, Question: tt.question})

			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, ex.Calls(), "ocr must not be called")
			assert.Zero(t, lm.Calls(), "language model must not be called")
			_, guided := Guidance(err)
			assert.True(t, guided)
		})
	}
}

func TestDocumentFlow_Success(t *testing.T) {
	ex := &testutil.FakeExtractor{Lines: []string{"A", "B"}, Pages: 1}
	lm := &testutil.FakeLLM{Answer: "**Empfehlung**"}

	res, err := newDocumentFlow(t, ex, lm).Run(context.Background(), DocumentInput{
		Artifact: pngArtifact(),
		Question: "Soll das Projekt weiterlaufen?",
	})
	require.NoError(t, err)

	assert.Equal(t, "A\nB", res.ExtractedText)
	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, "**Empfehlung**", res.Answer.Text)
	assert.Equal(t, "kpi.png", res.FileName)

	calls := ex.Artifacts()
	require.Len(t, calls, 1)
	assert.Equal(t, pngArtifact().Data, calls[0].Data, "spooled bytes reach the extractor unchanged")

	req, ok := lm.LastRequest()
	require.True(t, ok)
	assert.Equal(t, prompt.SystemRole, req.System)
	require.NotNil(t, req.Temperature)
	assert.InDelta(t, 0.2, *req.Temperature, 1e-6)

	want, _ := prompt.BuildDocumentPrompt("A\nB", "Soll das Projekt weiterlaufen?")
	assert.Equal(t, want, req.Prompt)
}

func TestDocumentFlow_OCRFailureSkipsLanguageModel(t *testing.T) {
	ex := &testutil.FakeExtractor{Err: testutil.ProviderError(ocr.ServiceName, "Access denied due to invalid subscription key.")}
	lm := &testutil.FakeLLM{Answer: "unused"}

	_, err := newDocumentFlow(t, ex, lm).Run(context.Background(), DocumentInput{Artifact: pngArtifact(), Question: "Frage"})

	se, ok := models.AsServiceError(err)
	require.True(t, ok)
	assert.Contains(t, se.Error(), "Access denied due to invalid subscription key.")
	assert.Zero(t, lm.Calls())
}

func TestDocumentFlow_LanguageModelFailure(t *testing.T) {
	ex := &testutil.FakeExtractor{Lines: []string{"A"}}
	lm := &testutil.FakeLLM{Err: testutil.ProviderError("language-model", "quota exceeded")}

	_, err := newDocumentFlow(t, ex, lm).Run(context.Background(), DocumentInput{Artifact: pngArtifact(), Question: "Frage"})

	se, ok := models.AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "quota exceeded", se.Message)
}

func TestDocumentFlow_NoTextRecognised(t *testing.T) {
	ex := &testutil.FakeExtractor{Lines: nil}
	lm := &testutil.FakeLLM{Answer: "unused"}

	_, err := newDocumentFlow(t, ex, lm).Run(context.Background(), DocumentInput{Artifact: pngArtifact(), Question: "Frage"})

	assert.ErrorIs(t, err, ErrNoText)
	assert.Equal(t, 1, ex.Calls())
	assert.Zero(t, lm.Calls())
}

func TestDocumentFlow_NotConfigured(t *testing.T) {
	lm := &testutil.FakeLLM{Answer: "unused"}
	store, _ := storage.NewLocalStore(t.TempDir())
	flow := NewDocumentFlow(store, nil, lm, 0.2, logger.NewNoOpLogger())

	_, err := flow.Run(context.Background(), DocumentInput{Artifact: pngArtifact(), Question: "Frage"})

	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Zero(t, lm.Calls())
}

func TestDocumentFlow_InvalidPDFRejected(t *testing.T) {
	ex := &testutil.FakeExtractor{Lines: []string{"Seite 1"}, Pages: 1}
	lm := &testutil.FakeLLM{Answer: "unused"}
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	flow := NewDocumentFlow(store, ex, lm, 0.2, logger.NewTestLogger(t))
	art := &models.Artifact{Name: "broken.pdf", MediaType: models.MediaTypePDF, Data: []byte("not a pdf")}

	res, err := flow.Run(context.Background(), DocumentInput{Artifact: art, Question: "Frage"})

	assert.ErrorIs(t, err, ocr.ErrInvalidPDF)
	assert.Nil(t, res)
	assert.Zero(t, ex.Calls())
	assert.Zero(t, lm.Calls())
	assert.Zero(t, store.Len())
	msg, guided := Guidance(err)
	assert.True(t, guided)
	assert.Equal(t, "Die PDF-Datei konnte nicht gelesen werden.", msg)
}

func TestDocumentFlow_ValidPDFPageCount(t *testing.T) {
	ex := &testutil.FakeExtractor{Lines: []string{"Seite 1"}}
	lm := &testutil.FakeLLM{Answer: "ok"}
	art := &models.Artifact{Name: "plan.pdf", MediaType: models.MediaTypePDF, Data: testutil.MinimalPDF(3)}

	res, err := newDocumentFlow(t, ex, lm).Run(context.Background(), DocumentInput{Artifact: art, Question: "Frage"})
	require.NoError(t, err)

	assert.Equal(t, 1, ex.Calls())
	assert.Equal(t, 3, res.Pages)
}
