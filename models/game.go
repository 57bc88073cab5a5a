// models/game.go
package models

import "errors"

// ErrStaleModificationHash is returned by the record store when a conditional
// token check fails. A task carrying a stale hash has been superseded by an
// administrative action and must terminate its chain silently.
var ErrStaleModificationHash = errors.New("stale modification hash")

type Game struct {
	GameID           string     `json:"game_id" dynamodbav:"game_id"`
	Password         string     `json:"-" dynamodbav:"password"`
	Round            int        `json:"round" dynamodbav:"round"`
	Running          bool       `json:"running" dynamodbav:"running"`
	Ended            bool       `json:"ended" dynamodbav:"ended"`
	AutoMode         bool       `json:"auto_mode" dynamodbav:"auto_mode"`
	ModificationHash string     `json:"-" dynamodbav:"modification_hash"`
	Stats            *GameStats `json:"stats,omitempty" dynamodbav:"stats,omitempty"`
}

// GameStats is the summary block stamped onto a game record once the game has
// ended, computed from the final player table.
type GameStats struct {
	TotalRequests      int     `json:"total_requests" dynamodbav:"total_requests"`
	LongestStreak      int     `json:"longest_streak" dynamodbav:"longest_streak"`
	LongestStreakBy    string  `json:"longest_streak_by" dynamodbav:"longest_streak_by"`
	AverageSuccessRate float64 `json:"average_success_rate" dynamodbav:"average_success_rate"`
	BestSuccessRate    float64 `json:"best_success_rate" dynamodbav:"best_success_rate"`
	BestSuccessRateBy  string  `json:"best_success_rate_by" dynamodbav:"best_success_rate_by"`
}
