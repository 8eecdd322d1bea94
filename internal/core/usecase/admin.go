package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mkozhevin/campus-helpdesk/internal/core/domain"
	"github.com/mkozhevin/campus-helpdesk/internal/core/ports"
)

// AdminDocumentsUseCase serves the operator-facing document surface.
type AdminDocumentsUseCase struct {
	store        ports.DocumentStore
	storage      ports.ObjectStorage
	snippetChars int
}

func NewAdminDocumentsUseCase(store ports.DocumentStore, storage ports.ObjectStorage, snippetChars int) *AdminDocumentsUseCase {
	if snippetChars <= 0 {
		snippetChars = 500
	}
	return &AdminDocumentsUseCase{store: store, storage: storage, snippetChars: snippetChars}
}

func (uc *AdminDocumentsUseCase) List(ctx context.Context, limit int) ([]domain.Document, error) {
	return uc.store.List(ctx, limit)
}

// Get returns document metadata with content truncated to a preview so the
// payload stays bounded regardless of source size.
func (uc *AdminDocumentsUseCase) Get(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := uc.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(doc.Content) > uc.snippetChars {
		doc.Content = doc.Content[:uc.snippetChars]
	}
	return doc, nil
}

// Delete removes the record, its search index entry and the stored file.
// Deleting an unknown id succeeds; a stuck file is logged, not fatal.
func (uc *AdminDocumentsUseCase) Delete(ctx context.Context, id string) error {
	doc, err := uc.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return nil
		}
		return err
	}
	if doc.StoragePath != "" {
		if err := uc.storage.Remove(ctx, doc.StoragePath); err != nil {
			slog.Warn("document_file_remove_failed", "id", id, "path", doc.StoragePath, "error", err)
		}
	}
	return uc.store.Delete(ctx, id)
}
