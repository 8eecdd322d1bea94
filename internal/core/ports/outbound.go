package ports

import (
	"context"
	"io"

	"github.com/mkozhevin/campus-helpdesk/internal/core/domain"
)

// DocumentStore persists extracted document text and serves keyword search.
type DocumentStore interface {
	Insert(ctx context.Context, doc *domain.Document) error
	// Search returns snippets in the underlying engine's order; callers may
	// rely on determinism within one engine path, not on ranking quality.
	Search(ctx context.Context, query string, maxExcerptChars, limit int) ([]domain.Snippet, error)
	List(ctx context.Context, limit int) ([]domain.Document, error)
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	// Delete removes the record and any derived index entry; deleting a
	// missing id is a no-op.
	Delete(ctx context.Context, id string) error
}

// FAQStore looks up curated question/answer pairs.
type FAQStore interface {
	// Match returns the first FAQ whose question contains the query
	// (case-insensitive, insertion order), or nil when none matches.
	Match(ctx context.Context, query string) (*domain.FAQ, error)
}

// ConversationLog appends to the audit log of answered queries.
type ConversationLog interface {
	Append(ctx context.Context, rec domain.ConversationRecord) error
}

// ObjectStorage stores source PDFs. AbsPath exposes the on-disk location
// for extraction tools that need a real file.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
	AbsPath(key string) string
}

// TextExtractor pulls plain text out of a stored PDF. An empty result with
// a nil error means the file has no recoverable text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// TextGenerator produces answers from the generative backend. Methods
// never fail for "service unreachable": after exhausting endpoint
// candidates they return a displayable failure string. The only error
// they return is a missing-credential configuration error.
type TextGenerator interface {
	GroundedAnswer(ctx context.Context, question, excerpt, sourceTitle, language string) (string, error)
	GeneralAnswer(ctx context.Context, question, language string) (string, error)
	Translate(ctx context.Context, text, language string) (string, error)
}

// LanguageDetector identifies the language of a query, falling back to
// English on any failure.
type LanguageDetector interface {
	Detect(text string) string
}

// PDFFetcher discovers and downloads PDF links from a web page.
type PDFFetcher interface {
	DiscoverLinks(ctx context.Context, pageURL string) ([]string, error)
	Download(ctx context.Context, url string, dst io.Writer) error
}
