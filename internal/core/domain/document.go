package domain

import "time"

type DocumentStatus string

const (
	// StatusUploaded marks documents ingested through the admin upload surface.
	StatusUploaded DocumentStatus = "uploaded"
	// StatusNoText marks documents whose extraction produced nothing; they
	// carry empty content and are excluded from search.
	StatusNoText DocumentStatus = "no_text"
	// StatusScraped marks documents ingested by the site crawler.
	StatusScraped DocumentStatus = "scraped"
)

type Document struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Filename    string         `json:"filename"`
	StoragePath string         `json:"storage_path,omitempty"`
	Content     string         `json:"content,omitempty"`
	Status      DocumentStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Snippet is the transient per-query search result: document metadata plus
// content truncated to the caller's excerpt budget. Never persisted.
type Snippet struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Filename   string `json:"filename"`
	Excerpt    string `json:"excerpt"`
}
