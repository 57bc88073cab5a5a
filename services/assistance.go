// services/assistance.go
package services

import "github.com/JonathanFoo0523/extreme-startup-scaled/models"

// AssistanceThreshold is the trailing non-correct run length, within the
// current round, beyond which a player is flagged as needing help.
const AssistanceThreshold = 15

// UpdateAssistance classifies a player's assistance state from the streak
// portion belonging to the current round. A player already being helped stays
// in that state while still struggling; the detector itself never promotes to
// "being helped", only an admin action does. Once the struggle ends the flag
// clears entirely.
func UpdateAssistance(roundStreak string, prev int) int {
	struggling := models.TrailingRun(roundStreak, models.StreakNonCorrect) > AssistanceThreshold
	switch {
	case struggling && prev == models.AssistanceGiven:
		return models.AssistanceGiven
	case struggling:
		return models.AssistanceNeeds
	default:
		return models.AssistanceNone
	}
}
