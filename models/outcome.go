// models/outcome.go
package models

import "strings"

// Outcome classifies a single question/answer exchange with a player endpoint.
type Outcome string

const (
	OutcomeCorrect          Outcome = "CORRECT"
	OutcomeWrong            Outcome = "WRONG"
	OutcomeErrorResponse    Outcome = "ERROR_RESPONSE"
	OutcomeNoServerResponse Outcome = "NO_SERVER_RESPONSE"
)

// One-character codes appended to a player's streak history, most-recent-last.
const (
	StreakCorrect    = "1"
	StreakWrong      = "X"
	StreakProblem    = "0"
	StreakNonCorrect = StreakProblem + StreakWrong
)

// StreakCode maps an outcome to its streak character.
func (o Outcome) StreakCode() string {
	switch o {
	case OutcomeCorrect:
		return StreakCorrect
	case OutcomeWrong:
		return StreakWrong
	default:
		return StreakProblem
	}
}

// TrailingRun counts consecutive characters from the end of streak that are
// members of cutset.
func TrailingRun(streak, cutset string) int {
	return len(streak) - len(strings.TrimRight(streak, cutset))
}

// RoundWindow restricts a streak history to the portion accumulated in the
// current round, i.e. the last roundIndex characters.
func RoundWindow(streak string, roundIndex int) string {
	if roundIndex <= 0 {
		return ""
	}
	if roundIndex >= len(streak) {
		return streak
	}
	return streak[len(streak)-roundIndex:]
}
