package ports

import (
	"context"
	"io"

	"github.com/mkozhevin/campus-helpdesk/internal/core/domain"
)

// QueryResolver is the inbound contract for answering user queries.
type QueryResolver interface {
	Resolve(ctx context.Context, query, language string) (*domain.Resolution, error)
}

// DocumentIngestor is the inbound contract for PDF upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename string, body io.Reader) domain.IngestResult
}

// DocumentAdmin is the inbound contract for the admin document surface.
type DocumentAdmin interface {
	List(ctx context.Context, limit int) ([]domain.Document, error)
	Get(ctx context.Context, id string) (*domain.Document, error)
	Delete(ctx context.Context, id string) error
}
