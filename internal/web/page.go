package web

import (
	"html/template"

	"github.com/company-brain/backend/internal/graph"
)

// Tabs on the index page.
const (
	TabDocument    = "document"
	TabSpreadsheet = "spreadsheet"
)

// Page is the data the index template renders.
type Page struct {
	Version  string
	Tab      string
	Info     string
	Error    string
	Question string

	Document    *DocumentView
	Spreadsheet *SpreadsheetView
}

// DocumentView is a finished document analysis.
type DocumentView struct {
	FileName      string
	Pages         int
	ExtractedText string
	Question      string
	Model         string
	Answer        template.HTML
}

// SpreadsheetView is a finished spreadsheet analysis.
type SpreadsheetView struct {
	FileName string
	Columns  []string
	Rows     [][]string
	Table    []graph.TableRow
	Graph    template.URL
	Notice   string
	Question string
	Model    string
	Answer   template.HTML
}

// IsSpreadsheet reports whether the spreadsheet tab should be open.
func (p *Page) IsSpreadsheet() bool {
	return p.Tab == TabSpreadsheet
}
