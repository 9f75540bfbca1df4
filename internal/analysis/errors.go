package analysis

import (
	"errors"

	"github.com/company-brain/backend/internal/graph"
	"github.com/company-brain/backend/internal/ocr"
	"github.com/company-brain/backend/internal/prompt"
	"github.com/company-brain/backend/internal/tabular"
)

// Input errors. None of them is reached after an external call has been made.
var (
	ErrMissingFile     = errors.New("no file uploaded")
	ErrMissingQuestion = prompt.ErrMissingQuestion
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrNotConfigured   = errors.New("service credentials not configured")
	ErrNoText          = errors.New("no text recognised in document")
)

var guidance = []struct {
	err error
	msg string
}{
	{ErrMissingFile, "Bitte lade zunächst ein Unternehmensdokument hoch."},
	{ErrMissingQuestion, "Bitte gib deine Stakeholder-Frage ein und klicke dann auf „Analyse starten“."},
	{ErrUnsupportedType, "Dieser Dateityp wird nicht unterstützt."},
	{ErrNotConfigured, "Die Zugangsdaten für die Analysedienste sind nicht konfiguriert."},
	{ErrNoText, "Im Dokument wurde kein Text erkannt."},
	{ocr.ErrInvalidPDF, "Die PDF-Datei konnte nicht gelesen werden."},
	{graph.ErrTooFewColumns, "Die Tabelle braucht mindestens vier Spalten."},
	{tabular.ErrUnreadable, "Die Tabelle konnte nicht gelesen werden."},
}

// Guidance returns the user-facing hint for an input error. ok is false for
// anything that is a genuine failure rather than missing or bad input.
func Guidance(err error) (msg string, ok bool) {
	for _, g := range guidance {
		if errors.Is(err, g.err) {
			return g.msg, true
		}
	}
	return "", false
}
