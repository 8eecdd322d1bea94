package usecase

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkozhevin/campus-helpdesk/internal/core/domain"
	"github.com/mkozhevin/campus-helpdesk/internal/core/ports"
)

// IngestDocumentUseCase stores an uploaded PDF, extracts its text and
// records the document. Files without recoverable text still get a record
// (status no_text) so operators can see what came in and failed.
type IngestDocumentUseCase struct {
	store     ports.DocumentStore
	storage   ports.ObjectStorage
	extractor ports.TextExtractor
}

func NewIngestDocumentUseCase(store ports.DocumentStore, storage ports.ObjectStorage, extractor ports.TextExtractor) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{store: store, storage: storage, extractor: extractor}
}

// Upload ingests one admin-uploaded file. Failures are reported per file in
// the result rather than as an error so a multi-file upload can continue
// past a bad entry.
func (uc *IngestDocumentUseCase) Upload(ctx context.Context, filename string, body io.Reader) domain.IngestResult {
	return uc.ingest(ctx, filename, body, domain.StatusUploaded)
}

func (uc *IngestDocumentUseCase) ingest(ctx context.Context, filename string, body io.Reader, status domain.DocumentStatus) domain.IngestResult {
	filename = sanitizeFilename(filename)
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return domain.IngestResult{Filename: filename, Error: "only PDF files are accepted"}
	}

	id := uuid.NewString()
	key := id + "_" + filename
	if err := uc.storage.Save(ctx, key, body); err != nil {
		slog.Error("ingest_store_failed", "filename", filename, "error", err)
		return domain.IngestResult{Filename: filename, Error: "failed to store file"}
	}

	text, err := uc.extractor.Extract(ctx, uc.storage.AbsPath(key))
	if err != nil {
		slog.Warn("ingest_extract_failed", "filename", filename, "error", err)
		text = ""
	}

	doc := &domain.Document{
		ID:          id,
		Title:       filename,
		Filename:    filename,
		StoragePath: key,
		Status:      status,
		CreatedAt:   time.Now().UTC(),
	}
	if strings.TrimSpace(text) == "" {
		doc.Status = domain.StatusNoText
		if err := uc.store.Insert(ctx, doc); err != nil {
			slog.Error("ingest_record_failed", "filename", filename, "error", err)
			return domain.IngestResult{Filename: filename, Error: "failed to record document"}
		}
		return domain.IngestResult{DocumentID: id, Filename: filename, Error: "no extractable text"}
	}

	doc.Content = text
	if err := uc.store.Insert(ctx, doc); err != nil {
		slog.Error("ingest_record_failed", "filename", filename, "error", err)
		return domain.IngestResult{Filename: filename, Error: "failed to record document"}
	}
	return domain.IngestResult{DocumentID: id, Filename: filename, Processed: true}
}

// sanitizeFilename strips any path components a client may have smuggled
// into the multipart filename.
func sanitizeFilename(filename string) string {
	filename = strings.TrimSpace(filename)
	filename = strings.ReplaceAll(filename, "\\", "/")
	return filepath.Base(filename)
}
