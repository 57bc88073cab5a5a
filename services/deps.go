// services/deps.go
package services

import (
	"context"
	"time"

	"github.com/JonathanFoo0523/extreme-startup-scaled/models"
)

// Collaborator interfaces consumed by the engine. The dynamo, taskqueue and
// questions packages provide the production implementations; tests substitute
// in-memory fakes.

// GameStore is the durable game record table.
type GameStore interface {
	Add(ctx context.Context, password string) (*models.Game, error)
	Get(ctx context.Context, gameID string) (*models.Game, error)
	ScanGames(ctx context.Context, ended bool) ([]models.Game, error)
	ValidateModificationHash(ctx context.Context, gameID, prev string) (string, error)
	UpdateAttributes(ctx context.Context, gameID string, attrs map[string]any) error
	IncrementRound(ctx context.Context, gameID string) (int, error)
	SetStats(ctx context.Context, gameID string, stats *models.GameStats) error
}

// PlayerStore is the durable player record table. QueryByScore orders by
// score descending; leaderboard positions derive from that order.
type PlayerStore interface {
	Add(ctx context.Context, gameID, name, api string) (*models.Player, error)
	Get(ctx context.Context, gameID, playerID string) (*models.Player, error)
	Query(ctx context.Context, gameID string, filters map[string]any) ([]models.Player, error)
	QueryByScore(ctx context.Context, gameID string, activeOnly bool) ([]models.Player, error)
	ValidateModificationHash(ctx context.Context, gameID, playerID, prev string) (string, error)
	Update(ctx context.Context, gameID, playerID string, set map[string]any, increment ...string) error
	IncrementScore(ctx context.Context, gameID, playerID string, delta int) error
}

// EventRecorder appends to the per-response and narrative trails.
type EventRecorder interface {
	AddPlayerEvent(ctx context.Context, ev *models.PlayerEvent) error
	AddGameEvent(ctx context.Context, ev *models.GameEvent) error
}

// TaskQueue is a delay-capable, at-least-once task channel.
type TaskQueue interface {
	Send(ctx context.Context, payload any, delay time.Duration) error
}

// QuestionSource produces questions keyed by round number.
type QuestionSource interface {
	NextQuestion(ctx context.Context, round int) (*models.Question, error)
	MaxRound(ctx context.Context) (int, error)
}
