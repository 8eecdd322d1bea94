package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mkozhevin/campus-helpdesk/internal/core/domain"
)

const defaultMaxContentChars = 250_000

type DocumentRepository struct {
	db              *sql.DB
	maxContentChars int
}

func NewDocumentRepository(db *sql.DB, maxContentChars int) *DocumentRepository {
	if maxContentChars <= 0 {
		maxContentChars = defaultMaxContentChars
	}
	return &DocumentRepository{db: db, maxContentChars: maxContentChars}
}

// Insert persists the record and registers the content in the FTS shadow
// table. A shadow-table failure is logged and swallowed: the record must
// survive so the substring fallback can still find it.
func (r *DocumentRepository) Insert(ctx context.Context, doc *domain.Document) error {
	if len(doc.Content) > r.maxContentChars {
		doc.Content = doc.Content[:r.maxContentChars]
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (id, title, filename, storage_path, content, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, doc.ID, doc.Title, doc.Filename, doc.StoragePath, doc.Content, string(doc.Status), doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	if doc.Status == domain.StatusNoText || strings.TrimSpace(doc.Content) == "" {
		return nil
	}

	if _, err := r.db.ExecContext(ctx, `
INSERT INTO documents_fts (doc_id, tsv)
VALUES ($1, to_tsvector('simple', $2))
ON CONFLICT (doc_id) DO NOTHING
`, doc.ID, doc.Content); err != nil {
		slog.Warn("fts_index_insert_failed", "document_id", doc.ID, "error", err)
	}
	return nil
}

// Search tries the tsvector index first and degrades to a case-insensitive
// substring scan when the indexed path fails for any reason. Documents with
// status no_text or empty content are never returned. Ordering is whatever
// the chosen engine path yields; the fallback orders by insertion.
func (r *DocumentRepository) Search(ctx context.Context, query string, maxExcerptChars, limit int) ([]domain.Snippet, error) {
	if limit <= 0 {
		limit = 5
	}

	snippets, err := r.searchFTS(ctx, query, maxExcerptChars, limit)
	if err == nil {
		return snippets, nil
	}
	slog.Warn("fts_search_failed_falling_back", "error", err)

	return r.searchSubstring(ctx, query, maxExcerptChars, limit)
}

func (r *DocumentRepository) searchFTS(ctx context.Context, query string, maxExcerptChars, limit int) ([]domain.Snippet, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT d.id, d.title, d.filename, d.content
FROM documents_fts f
JOIN documents d ON d.id = f.doc_id
WHERE f.tsv @@ plainto_tsquery('simple', $1)
  AND d.status <> 'no_text' AND d.content <> ''
LIMIT $2
`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("fts query: %w", err)
	}
	defer rows.Close()

	return scanSnippets(rows, maxExcerptChars)
}

func (r *DocumentRepository) searchSubstring(ctx context.Context, query string, maxExcerptChars, limit int) ([]domain.Snippet, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, title, filename, content
FROM documents
WHERE content ILIKE '%' || $1 || '%'
  AND status <> 'no_text' AND content <> ''
ORDER BY created_at, id
LIMIT $2
`, escapeLike(query), limit)
	if err != nil {
		return nil, fmt.Errorf("substring query: %w", err)
	}
	defer rows.Close()

	return scanSnippets(rows, maxExcerptChars)
}

func scanSnippets(rows *sql.Rows, maxExcerptChars int) ([]domain.Snippet, error) {
	var snippets []domain.Snippet
	for rows.Next() {
		var s domain.Snippet
		var content string
		if err := rows.Scan(&s.DocumentID, &s.Title, &s.Filename, &content); err != nil {
			return nil, fmt.Errorf("scan snippet: %w", err)
		}
		s.Excerpt = truncate(content, maxExcerptChars)
		snippets = append(snippets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snippets: %w", err)
	}
	return snippets, nil
}

func (r *DocumentRepository) List(ctx context.Context, limit int) ([]domain.Document, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, title, filename, storage_path, status, created_at
FROM documents
ORDER BY created_at DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var doc domain.Document
		var status string
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Filename, &doc.StoragePath, &status, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc.Status = domain.DocumentStatus(status)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, title, filename, storage_path, content, status, created_at
FROM documents
WHERE id = $1
`, id)

	var doc domain.Document
	var status string
	err := row.Scan(&doc.ID, &doc.Title, &doc.Filename, &doc.StoragePath, &doc.Content, &status, &doc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", err)
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	doc.Status = domain.DocumentStatus(status)
	return &doc, nil
}

// Delete removes the record and its FTS entry. Idempotent: a missing id is
// a no-op.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM documents_fts WHERE doc_id = $1`, id); err != nil {
		slog.Warn("fts_index_delete_failed", "document_id", id, "error", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
