// Package pdfx extracts plain text from PDFs: the embedded text layer
// first, then optical recognition when the file is a pure scan.
package pdfx

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

// OCREngine recognizes text in a PDF that has no usable text layer.
type OCREngine interface {
	Recognize(ctx context.Context, pdfPath string) (string, error)
}

type Extractor struct {
	ocr OCREngine

	// readPages is swappable in tests; production uses the pdf text layer.
	readPages func(path string) ([]string, error)
}

// New builds an extractor. A nil engine disables the OCR fallback: files
// without a text layer then extract to empty text.
func New(ocr OCREngine) *Extractor {
	return &Extractor{ocr: ocr, readPages: readTextLayer}
}

// Extract concatenates per-page text with newlines. Pages that fail to
// decode contribute nothing and never abort the document. When the whole
// text layer is blank it falls through to OCR if available; OCR failures
// are logged, not raised, so the caller sees empty text and decides what
// a failed ingestion means.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	pages, err := e.readPages(path)
	if err != nil {
		slog.Warn("pdf_text_layer_unreadable", "path", path, "error", err)
	}

	text := strings.TrimSpace(strings.Join(pages, "\n"))
	if text != "" {
		return text, nil
	}

	if e.ocr == nil {
		return "", nil
	}

	recognized, err := e.ocr.Recognize(ctx, path)
	if err != nil {
		slog.Warn("ocr_fallback_failed", "path", path, "error", err)
		return "", nil
	}
	return strings.TrimSpace(recognized), nil
}

func readTextLayer(path string) ([]string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		text, err := readPage(reader, i)
		if err != nil {
			slog.Debug("pdf_page_skipped", "path", path, "page", i, "error", err)
			continue
		}
		if strings.TrimSpace(text) != "" {
			pages = append(pages, strings.TrimSpace(text))
		}
	}
	return pages, nil
}

func readPage(reader *pdf.Reader, number int) (text string, err error) {
	// The pdf library panics on some malformed content streams; one bad
	// page must not take the whole document down.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page decode panic: %v", r)
		}
	}()

	page := reader.Page(number)
	if page.V.IsNull() {
		return "", fmt.Errorf("null page")
	}
	return page.GetPlainText(nil)
}
