package domain

// FAQ is a curated question/answer pair, the highest-priority answer
// source. Rows are seeded once and read-only from the pipeline's point of
// view. Answers are stored in English; translation happens downstream.
type FAQ struct {
	ID       int    `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
