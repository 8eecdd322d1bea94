// Package ocr recognizes text in scanned PDFs by shelling out to the
// poppler rasterizer and tesseract. There is no pure-Go path for either
// step; both tools are the de-facto standard and are probed once at
// startup so callers can treat OCR as an optional capability.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

type Engine struct {
	pdftoppm  string
	tesseract string
	language  string
}

// Detect resolves the OCR capability once. It returns nil when either
// binary is missing from PATH; a nil engine means OCR is unavailable.
func Detect(language string) *Engine {
	pdftoppm, err := exec.LookPath("pdftoppm")
	if err != nil {
		slog.Info("ocr_unavailable", "missing", "pdftoppm")
		return nil
	}
	tesseract, err := exec.LookPath("tesseract")
	if err != nil {
		slog.Info("ocr_unavailable", "missing", "tesseract")
		return nil
	}
	if language == "" {
		language = "eng"
	}
	return &Engine{pdftoppm: pdftoppm, tesseract: tesseract, language: language}
}

// Recognize rasterizes every page and runs recognition per page,
// concatenating successes. A page that fails recognition is logged and
// skipped; only a failed rasterization of the whole file is an error.
func (e *Engine) Recognize(ctx context.Context, pdfPath string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "helpdesk-ocr-*")
	if err != nil {
		return "", fmt.Errorf("create ocr workdir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	rasterize := exec.CommandContext(ctx, e.pdftoppm, "-r", "200", "-png", pdfPath, filepath.Join(tmpDir, "page"))
	if out, err := rasterize.CombinedOutput(); err != nil {
		return "", fmt.Errorf("rasterize pdf: %w: %s", err, strings.TrimSpace(string(out)))
	}

	images, err := filepath.Glob(filepath.Join(tmpDir, "page*.png"))
	if err != nil {
		return "", fmt.Errorf("list page images: %w", err)
	}
	sort.Strings(images)

	var pages []string
	for _, image := range images {
		text, err := e.recognizePage(ctx, image)
		if err != nil {
			slog.Warn("ocr_page_failed", "image", filepath.Base(image), "error", err)
			continue
		}
		if strings.TrimSpace(text) != "" {
			pages = append(pages, strings.TrimSpace(text))
		}
	}
	return strings.Join(pages, "\n"), nil
}

func (e *Engine) recognizePage(ctx context.Context, imagePath string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.tesseract, imagePath, "stdout", "-l", e.language)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
