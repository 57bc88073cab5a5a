// models/question.go
package models

// Question is a single item served by the question source for a given round.
// It is not part of the engine's mutable state.
type Question struct {
	Round  int    `json:"round"`
	Text   string `json:"text"`
	Answer string `json:"answer"`
	Points int    `json:"points"`
}
