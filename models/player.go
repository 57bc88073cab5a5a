// models/player.go
package models

// Assistance states for Player.NeedsAssistance. The question administrator
// may move a player between None and NeedsHelp; only an explicit admin action
// promotes NeedsHelp to BeingHelped.
const (
	AssistanceNone  = 0
	AssistanceNeeds = 1
	AssistanceGiven = 2
)

type Player struct {
	GameID           string `json:"game_id" dynamodbav:"game_id"`
	PlayerID         string `json:"player_id" dynamodbav:"player_id"`
	Name             string `json:"name" dynamodbav:"name"`
	API              string `json:"api" dynamodbav:"api"`
	Active           bool   `json:"active" dynamodbav:"active"`
	Score            int    `json:"score" dynamodbav:"score"`
	Streak           string `json:"streak" dynamodbav:"streak"`
	RoundIndex       int    `json:"round_index" dynamodbav:"round_index"`
	LongestStreak    int    `json:"longest_streak" dynamodbav:"longest_streak"`
	CorrectTally     int    `json:"correct_tally" dynamodbav:"correct_tally"`
	IncorrectTally   int    `json:"incorrect_tally" dynamodbav:"incorrect_tally"`
	RequestCounts    int    `json:"request_counts" dynamodbav:"request_counts"`
	NeedsAssistance  int    `json:"needs_assistance" dynamodbav:"needs_assistance"`
	ModificationHash string `json:"-" dynamodbav:"modification_hash"`
}

// SuccessRatio is the fraction of administered questions answered correctly.
func (p *Player) SuccessRatio() float64 {
	if p.RequestCounts == 0 {
		return 0
	}
	return float64(p.CorrectTally) / float64(p.RequestCounts)
}
