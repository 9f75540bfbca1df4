// handlers_analyze.go - Document and spreadsheet analysis handlers
package api

import (
	"bytes"
	"errors"
	"html/template"
	"io"
	"net/http"

	"github.com/company-brain/backend/internal/analysis"
	"github.com/company-brain/backend/internal/logger"
	"github.com/company-brain/backend/internal/models"
	"github.com/company-brain/backend/internal/web"
	"github.com/labstack/echo/v4"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// AnalyzeHandlerImpl implements the AnalyzeHandler interface
type AnalyzeHandlerImpl struct {
	documents    DocumentAnalyzer
	spreadsheets SpreadsheetAnalyzer
	markdown     goldmark.Markdown
	version      string
	log          logger.Logger
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(documents DocumentAnalyzer, spreadsheets SpreadsheetAnalyzer, version string, log logger.Logger) *AnalyzeHandlerImpl {
	return &AnalyzeHandlerImpl{
		documents:    documents,
		spreadsheets: spreadsheets,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		version: version,
		log:     log,
	}
}

// HandleIndex renders the upload forms
func (h *AnalyzeHandlerImpl) HandleIndex(c echo.Context) error {
	tab := web.TabDocument
	if c.QueryParam("tab") == web.TabSpreadsheet {
		tab = web.TabSpreadsheet
	}
	return c.Render(http.StatusOK, web.IndexTemplate, h.page(tab))
}

// HandleDocumentPage runs the document flow and renders the result page
func (h *AnalyzeHandlerImpl) HandleDocumentPage(c echo.Context) error {
	page := h.page(web.TabDocument)

	artifact, question, err := readUpload(c)
	page.Question = question
	if err != nil {
		return h.renderFailure(c, page, err)
	}

	res, err := h.documents.Run(c.Request().Context(), analysis.DocumentInput{Artifact: artifact, Question: question})
	if err != nil {
		return h.renderFailure(c, page, err)
	}

	page.Document = &web.DocumentView{
		FileName:      res.FileName,
		Pages:         res.Pages,
		ExtractedText: res.ExtractedText,
		Question:      res.Question,
		Model:         res.Answer.Model,
		Answer:        h.renderMarkdown(res.Answer.Text),
	}
	return c.Render(http.StatusOK, web.IndexTemplate, page)
}

// HandleSpreadsheetPage runs the spreadsheet flow and renders the result page
func (h *AnalyzeHandlerImpl) HandleSpreadsheetPage(c echo.Context) error {
	page := h.page(web.TabSpreadsheet)

	artifact, question, err := readUpload(c)
	page.Question = question
	if err != nil {
		return h.renderFailure(c, page, err)
	}

	res, err := h.spreadsheets.Run(c.Request().Context(), analysis.SpreadsheetInput{Artifact: artifact, Question: question})
	if err != nil {
		return h.renderFailure(c, page, err)
	}

	page.Spreadsheet = &web.SpreadsheetView{
		FileName: res.FileName,
		Columns:  res.Dataset.Columns,
		Rows:     res.Dataset.Rows,
		Table:    res.Table,
		Graph:    template.URL(res.GraphPNG),
		Notice:   res.Notice,
		Question: res.Question,
		Model:    res.Answer.Model,
		Answer:   h.renderMarkdown(res.Answer.Text),
	}
	return c.Render(http.StatusOK, web.IndexTemplate, page)
}

// HandleDocumentAPI runs the document flow and returns the result as data
func (h *AnalyzeHandlerImpl) HandleDocumentAPI(c echo.Context) error {
	artifact, question, err := readUpload(c)
	if err != nil {
		return err
	}

	res, err := h.documents.Run(c.Request().Context(), analysis.DocumentInput{Artifact: artifact, Question: question})
	if err != nil {
		return fromFlowError(err)
	}
	return respond(c, http.StatusOK, res)
}

// HandleSpreadsheetAPI runs the spreadsheet flow and returns the result as data
func (h *AnalyzeHandlerImpl) HandleSpreadsheetAPI(c echo.Context) error {
	artifact, question, err := readUpload(c)
	if err != nil {
		return err
	}

	res, err := h.spreadsheets.Run(c.Request().Context(), analysis.SpreadsheetInput{Artifact: artifact, Question: question})
	if err != nil {
		return fromFlowError(err)
	}
	return respond(c, http.StatusOK, res)
}

func (h *AnalyzeHandlerImpl) page(tab string) *web.Page {
	return &web.Page{Version: h.version, Tab: tab}
}

// renderFailure shows guidance as info and everything else as an error on
// the same page. Guidance keeps status 200.
func (h *AnalyzeHandlerImpl) renderFailure(c echo.Context, page *web.Page, err error) error {
	apiErr := fromFlowError(err)

	status := http.StatusOK
	switch apiErr.Status {
	case http.StatusBadRequest, http.StatusServiceUnavailable:
		page.Info = apiErr.Message
	default:
		status = apiErr.Status
		page.Error = apiErr.Message
		if apiErr.Details != "" {
			page.Error = apiErr.Details
		}
		h.log.WithError(err).Error("analysis failed", map[string]interface{}{
			"path":   c.Request().URL.Path,
			"status": status,
		})
	}
	return c.Render(status, web.IndexTemplate, page)
}

func (h *AnalyzeHandlerImpl) renderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(src), &buf); err != nil {
		h.log.Warn("markdown rendering failed", map[string]interface{}{"error": err.Error()})
		return template.HTML("<pre>" + template.HTMLEscapeString(src) + "</pre>")
	}
	return template.HTML(buf.String())
}

// readUpload reads the multipart fields file and question. A request without
// a file yields a nil artifact so the flow reports the missing upload.
func readUpload(c echo.Context) (*models.Artifact, string, error) {
	question := c.FormValue("question")

	fh, err := c.FormFile("file")
	if err != nil {
		// a plain form post carries no file part at all
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, question, nil
		}
		return nil, question, NewBadRequestError("invalid multipart form", err)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, question, NewBadRequestError("failed to open uploaded file", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, question, NewBadRequestError("failed to read uploaded file", err)
	}

	mt, _ := models.MediaTypeFromName(fh.Filename)
	return &models.Artifact{Name: fh.Filename, MediaType: mt, Data: data}, question, nil
}
