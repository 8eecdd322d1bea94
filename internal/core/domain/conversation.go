package domain

import "time"

// ConversationRecord is one row of the append-only audit log. SourceDocID
// is a weak back-reference: deleting the referenced document must not
// cascade into the log.
type ConversationRecord struct {
	ID          string    `json:"id"`
	UserQuery   string    `json:"user_query"`
	BotResponse string    `json:"bot_response"`
	SourceDocID string    `json:"source_doc_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
