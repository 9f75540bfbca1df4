package ocr

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrInvalidPDF is returned when an upload declared as PDF cannot be read.
var ErrInvalidPDF = errors.New("invalid PDF document")

func init() {
	// pdfcpu would otherwise create a user config directory on first use
	api.DisableConfigDir()
}

// PDFPageCount validates data as a PDF and returns its page count.
func PDFPageCount(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	n, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: document has no pages", ErrInvalidPDF)
	}
	return n, nil
}
