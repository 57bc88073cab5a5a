// models/events.go
package models

import "time"

// PlayerEvent is one row of the append-only per-response trail. Stored in
// Postgres; never updated after insert.
type PlayerEvent struct {
	ID           string    `json:"event_id" gorm:"primaryKey"`
	GameID       string    `json:"game_id" gorm:"index:idx_player_events_game"`
	PlayerID     string    `json:"player_id" gorm:"index:idx_player_events_player"`
	Timestamp    time.Time `json:"timestamp" gorm:"index"`
	Score        int       `json:"score"`
	Query        string    `json:"query"`
	Difficulty   int       `json:"difficulty"`
	PointsGained int       `json:"points_gained"`
	ResponseType string    `json:"response_type"`
}

// GameEvent is one row of the append-only narrative trail ("New Leader",
// "Epic Comeback", ...).
type GameEvent struct {
	ID          string    `json:"event_id" gorm:"primaryKey"`
	GameID      string    `json:"game_id" gorm:"index:idx_game_events_game"`
	Timestamp   time.Time `json:"timestamp" gorm:"index"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PlayerID    string    `json:"player_id"`
}
