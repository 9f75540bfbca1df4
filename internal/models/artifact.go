package models

import (
	"path/filepath"
	"strings"
)

// MediaType is the declared content type of an upload.
type MediaType string

const (
	MediaTypePDF  MediaType = "application/pdf"
	MediaTypePNG  MediaType = "image/png"
	MediaTypeJPEG MediaType = "image/jpeg"
	MediaTypeCSV  MediaType = "text/csv"
)

var extensions = map[string]MediaType{
	".pdf":  MediaTypePDF,
	".png":  MediaTypePNG,
	".jpg":  MediaTypeJPEG,
	".jpeg": MediaTypeJPEG,
	".csv":  MediaTypeCSV,
}

// MediaTypeFromName derives the media type from a file extension,
// case-insensitively.
func MediaTypeFromName(name string) (MediaType, bool) {
	mt, ok := extensions[strings.ToLower(filepath.Ext(name))]
	return mt, ok
}

// IsImage reports whether the media type is a raster image.
func (m MediaType) IsImage() bool {
	return m == MediaTypePNG || m == MediaTypeJPEG
}

// Artifact is an uploaded file owned by a single request.
type Artifact struct {
	Name      string
	MediaType MediaType
	Data      []byte
}

// Empty reports whether there is nothing to analyze.
func (a *Artifact) Empty() bool {
	return a == nil || len(a.Data) == 0
}

// ExtractedText holds OCR output in page order, then line order.
type ExtractedText struct {
	Pages int      `json:"pages"`
	Lines []string `json:"lines"`
}

// Text joins the lines with a single newline.
func (t *ExtractedText) Text() string {
	if t == nil {
		return ""
	}
	return strings.Join(t.Lines, "\n")
}
