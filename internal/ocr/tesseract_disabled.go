//go:build !tesseract

package ocr

import "errors"

// NewTesseractExtractor is unavailable without the tesseract build tag,
// which needs libtesseract and leptonica headers at build time.
func NewTesseractExtractor(languages []string) (Extractor, error) {
	return nil, errors.New("tesseract support not compiled in: rebuild with -tags tesseract")
}
