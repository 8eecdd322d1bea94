package pdfx

import (
	"context"
	"errors"
	"testing"
)

type ocrFake struct {
	called bool
	text   string
	err    error
}

func (f *ocrFake) Recognize(context.Context, string) (string, error) {
	f.called = true
	return f.text, f.err
}

func newExtractorWithPages(ocr OCREngine, pages []string, err error) *Extractor {
	e := New(ocr)
	e.readPages = func(string) ([]string, error) { return pages, err }
	return e
}

func TestExtractJoinsPagesWithoutOCR(t *testing.T) {
	ocr := &ocrFake{}
	e := newExtractorWithPages(ocr, []string{"page one", "page two"}, nil)

	text, err := e.Extract(context.Background(), "doc.pdf")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "page one\npage two" {
		t.Fatalf("unexpected text: %q", text)
	}
	if ocr.called {
		t.Fatalf("OCR must not run when the text layer has content")
	}
}

func TestExtractFallsBackToOCRWhenTextLayerBlank(t *testing.T) {
	ocr := &ocrFake{text: "scanned content"}
	e := newExtractorWithPages(ocr, []string{"  ", ""}, nil)

	text, err := e.Extract(context.Background(), "scan.pdf")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "scanned content" {
		t.Fatalf("expected OCR text, got %q", text)
	}
	if !ocr.called {
		t.Fatalf("expected OCR fallback to run")
	}
}

func TestExtractWithoutOCRReturnsEmptyText(t *testing.T) {
	e := newExtractorWithPages(nil, nil, nil)

	text, err := e.Extract(context.Background(), "scan.pdf")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "" {
		t.Fatalf("expected empty text, got %q", text)
	}
}

func TestExtractSwallowsOCRFailure(t *testing.T) {
	ocr := &ocrFake{err: errors.New("tesseract crashed")}
	e := newExtractorWithPages(ocr, nil, errors.New("corrupt xref"))

	text, err := e.Extract(context.Background(), "broken.pdf")
	if err != nil {
		t.Fatalf("Extract() error = %v, want failures degraded to empty text", err)
	}
	if text != "" {
		t.Fatalf("expected empty text, got %q", text)
	}
}
