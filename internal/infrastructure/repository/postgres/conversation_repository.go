package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mkozhevin/campus-helpdesk/internal/core/domain"
)

type ConversationRepository struct {
	db *sql.DB
}

func NewConversationRepository(db *sql.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Append(ctx context.Context, rec domain.ConversationRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO conversations (id, user_query, bot_response, source_doc_id, created_at)
VALUES ($1,$2,$3,$4,$5)
`, rec.ID, rec.UserQuery, rec.BotResponse, nullableString(rec.SourceDocID), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("append conversation: %w", err)
	}
	return nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return sql.NullString{String: s, Valid: true}
}
