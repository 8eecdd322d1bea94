package domain

// IngestResult is the per-file outcome reported by the ingestion pipeline.
// A file that yields no extractable text is still recorded (status no_text)
// but reported as not processed.
type IngestResult struct {
	DocumentID string `json:"document_id,omitempty"`
	Filename   string `json:"filename"`
	Processed  bool   `json:"processed"`
	Error      string `json:"error,omitempty"`
}
