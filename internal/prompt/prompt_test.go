package prompt

import (
	"strings"
	"testing"

	"github.com/company-brain/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDocumentPrompt(t *testing.T) {
	p, err := BuildDocumentPrompt("A\nB", "Soll Herr Müller gekündigt werden?")
	require.NoError(t, err)

	assert.Contains(t, p, "Hier ist der extrahierte Dokumentinhalt:\n\"\"\"\nA\nB\n\"\"\"\n")
	assert.Contains(t, p, "Stakeholder-Frage:\n\"\"\"\nSoll Herr Müller gekündigt werden?\n\"\"\"\n")
	for i := 1; i <= 5; i++ {
		assert.Contains(t, p, "\n"+string(rune('0'+i))+". ", "missing question %d", i)
	}
	assert.True(t, strings.Index(p, "Dokumentinhalt") < strings.Index(p, "Stakeholder-Frage"))
	assert.True(t, strings.Index(p, "Stakeholder-Frage") < strings.Index(p, "Bitte beantworte:"))
}

func TestBuildDocumentPrompt_Deterministic(t *testing.T) {
	a, errA := BuildDocumentPrompt("Strategie 2030", "Was meinst du?")
	b, errB := BuildDocumentPrompt("Strategie 2030", "Was meinst du?")
	require.NoError(t, errA)
	require.NoError(t, errB)
	assert.Equal(t, a, b)
}

func TestBuildDocumentPrompt_MissingInputs(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		question string
		want     error
	}{
		{"blank question", "text", "   ", ErrMissingQuestion},
		{"empty question", "text", "", ErrMissingQuestion},
		{"empty text", "", "frage", ErrMissingContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildDocumentPrompt(tt.text, tt.question)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBuildRelationPrompt(t *testing.T) {
	rels := []models.WeightedRelation{
		{Source: "Umsatz", Target: "Kosten", Percent: 15},
		{Source: "Umsatz", Target: "Risiko", Percent: -10},
	}
	p, err := BuildRelationPrompt(rels, "Wo investieren?")
	require.NoError(t, err)

	assert.Contains(t, p, "- Umsatz -> Kosten: +15 %\n- Umsatz -> Risiko: -10 %")
	assert.Contains(t, p, "nicht aus den Daten berechnet")
	assert.Contains(t, p, "Wo investieren?")

	_, err = BuildRelationPrompt(nil, "frage")
	assert.ErrorIs(t, err, ErrMissingContent)
	_, err = BuildRelationPrompt(rels, "")
	assert.ErrorIs(t, err, ErrMissingQuestion)
}
