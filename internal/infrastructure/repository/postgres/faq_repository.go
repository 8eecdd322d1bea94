package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkozhevin/campus-helpdesk/internal/core/domain"
)

type FAQRepository struct {
	db *sql.DB
}

func NewFAQRepository(db *sql.DB) *FAQRepository {
	return &FAQRepository{db: db}
}

// Match returns the first FAQ whose question contains the query as a
// substring. Matching is case-insensitive; ties break by id, which is
// insertion order. A miss is (nil, nil).
func (r *FAQRepository) Match(ctx context.Context, query string) (*domain.FAQ, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, question, answer
FROM faqs
WHERE question ILIKE '%' || $1 || '%'
ORDER BY id
LIMIT 1
`, escapeLike(query))

	var faq domain.FAQ
	if err := row.Scan(&faq.ID, &faq.Question, &faq.Answer); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("match faq: %w", err)
	}
	return &faq, nil
}

// Seed loads the curated FAQ set once; it does nothing when rows already
// exist so redeploys never duplicate entries.
func (r *FAQRepository) Seed(ctx context.Context, faqs []domain.FAQ) error {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM faqs`).Scan(&count); err != nil {
		return fmt.Errorf("count faqs: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, faq := range faqs {
		if _, err := r.db.ExecContext(ctx, `
INSERT INTO faqs (question, answer) VALUES ($1, $2)
`, faq.Question, faq.Answer); err != nil {
			return fmt.Errorf("seed faq: %w", err)
		}
	}
	return nil
}
