// services/rate_controller.go
package services

import (
	"time"

	"github.com/JonathanFoo0523/extreme-startup-scaled/models"
)

// Rate control bounds for the per-player question chain. Values carried over
// from the production tuning of the original contest.
const (
	MinRequestInterval = 1 * time.Second
	MaxRequestInterval = 20 * time.Second
	AvgRequestInterval = 5 * time.Second
	DefaultDelay       = AvgRequestInterval
	RequestDelta       = 100 * time.Millisecond

	// ProblemPenalty is the fixed score deduction for an endpoint that errors
	// or does not answer at all.
	ProblemPenalty = 50

	// StreakLength bounds the stored response history per player.
	StreakLength = 30
)

// NextDelay computes the poll interval before the next question from the
// previous interval and the latest outcome. Pure: the delay is recomputed
// fresh on every call, never accumulated, so replayed tasks stay idempotent.
// Correct answers speed the chain up, wrong answers slow it down, and an
// unresponsive endpoint is backed off to twice the average interval.
func NextDelay(prev time.Duration, outcome models.Outcome) time.Duration {
	switch outcome {
	case models.OutcomeCorrect:
		return max(MinRequestInterval, prev-RequestDelta)
	case models.OutcomeWrong:
		return min(MaxRequestInterval, prev+RequestDelta)
	default:
		return 2 * AvgRequestInterval
	}
}
