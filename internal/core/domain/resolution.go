package domain

// ResolutionStage records which knowledge source produced the answer.
type ResolutionStage string

const (
	StageFAQ      ResolutionStage = "faq"
	StageDocument ResolutionStage = "document"
	StageGeneral  ResolutionStage = "general"
	StageApology  ResolutionStage = "apology"
)

// SourceRef is the provenance of a document-grounded answer.
type SourceRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type Resolution struct {
	Response string          `json:"response"`
	Source   *SourceRef      `json:"source,omitempty"`
	Stage    ResolutionStage `json:"-"`
}
