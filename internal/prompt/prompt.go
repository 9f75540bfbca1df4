// Package prompt assembles the fixed decision-analysis prompt. Functions here
// are pure: identical inputs always produce identical prompts.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/company-brain/backend/internal/models"
)

var (
	ErrMissingQuestion = errors.New("stakeholder question is required")
	ErrMissingContent  = errors.New("analysis content is required")
)

// SystemRole is sent as the system message with every prompt.
const SystemRole = "Du bist ein KI-gestütztes Executive Team für strategische Entscheidungsunterstützung auf Unternehmensebene mit Fokus auf Systemarchitektur, Governance, KPIs, ROI und ethisch-strategische Bewertung."

const preamble = `
Du bist ein CEO, CFO, CTO und COO in einem hochentwickelten KI-System. Deine Expertise umfasst:
- Geschäftsstrategie und Management (inkl. Vision, ROI, KPIs)
- Projektmanagement (PMP)
- Prozessoptimierung (Six Sigma)
- Systemdenken und unternehmensweite Architektur
`

const documentContext = `
Du analysierst jetzt ein oder mehrere hochgeladene Dokumente im Kontext:
- Abteilungsdaten
- Langfriststrategien & Visionen
- Finanzkennzahlen & KPIs
- Konzepte & Initiativen

Hier ist der extrahierte Dokumentinhalt:
`

const relationContext = `
Du analysierst jetzt eine hochgeladene Tabelle. Zwischen ihren ersten vier Spalten wurden folgende
Einflussgewichte angesetzt (illustrative Platzhalterwerte, nicht aus den Daten berechnet):
`

const questions = `
Bitte beantworte:
1. Welche relevanten Entitäten, Beziehungen und Einflussfaktoren lassen sich identifizieren?
2. Wie hängen diese mit bestehenden Unternehmenszielen, KPIs und ROI zusammen?
3. Wo entstehen mögliche Zielkonflikte, Abweichungen oder Synergien?
4. Wie lässt sich dieses Dokument systemisch in ein semantisches Entscheidungsmodell (z. B. Knowledge Graph) integrieren?
5. Was ist deine Antwort auf die Stakeholder-Anfrage – unter Berücksichtigung von Governance, Ethik, rechtlichen Rahmenbedingungen und Strategie?
`

func fenced(s string) string {
	return "\"\"\"\n" + s + "\n\"\"\"\n"
}

func assemble(context, content, question string) string {
	var b strings.Builder
	b.WriteString(preamble)
	b.WriteString(context)
	b.WriteString(fenced(content))
	b.WriteString("\nStakeholder-Frage:\n")
	b.WriteString(fenced(question))
	b.WriteString(questions)
	return b.String()
}

// BuildDocumentPrompt embeds extracted document text and the question.
func BuildDocumentPrompt(text, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrMissingQuestion
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrMissingContent
	}
	return assemble(documentContext, text, question), nil
}

// BuildRelationPrompt embeds the weight table and the question.
func BuildRelationPrompt(relations []models.WeightedRelation, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrMissingQuestion
	}
	if len(relations) == 0 {
		return "", ErrMissingContent
	}
	return assemble(relationContext, RelationTable(relations), question), nil
}

// RelationTable renders relations one per line as "source -> target: +15 %".
func RelationTable(relations []models.WeightedRelation) string {
	lines := make([]string, len(relations))
	for i, r := range relations {
		lines[i] = fmt.Sprintf("- %s -> %s: %s", r.Source, r.Target, r.WeightLabel())
	}
	return strings.Join(lines, "\n")
}
