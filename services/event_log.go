// services/event_log.go
package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/JonathanFoo0523/extreme-startup-scaled/models"
)

// EventLog persists the append-only trails in Postgres. Rows are only ever
// inserted; the review endpoints read them back in timestamp order.
type EventLog struct {
	DB *gorm.DB
}

func NewEventLog(db *gorm.DB) *EventLog {
	return &EventLog{DB: db}
}

// Migrate creates the event tables.
func (l *EventLog) Migrate() error {
	if err := l.DB.AutoMigrate(&models.PlayerEvent{}, &models.GameEvent{}); err != nil {
		return fmt.Errorf("failed to migrate event tables: %w", err)
	}
	return nil
}

func (l *EventLog) AddPlayerEvent(ctx context.Context, ev *models.PlayerEvent) error {
	if err := l.DB.WithContext(ctx).Create(ev).Error; err != nil {
		return fmt.Errorf("failed to record player event for %s: %w", ev.PlayerID, err)
	}
	return nil
}

func (l *EventLog) AddGameEvent(ctx context.Context, ev *models.GameEvent) error {
	if err := l.DB.WithContext(ctx).Create(ev).Error; err != nil {
		return fmt.Errorf("failed to record game event for %s: %w", ev.GameID, err)
	}
	return nil
}

// PlayerEvents returns a player's response trail, most recent first.
func (l *EventLog) PlayerEvents(ctx context.Context, gameID, playerID string) ([]models.PlayerEvent, error) {
	var events []models.PlayerEvent
	err := l.DB.WithContext(ctx).
		Where("game_id = ? AND player_id = ?", gameID, playerID).
		Order("timestamp DESC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list events for player %s: %w", playerID, err)
	}
	return events, nil
}

// GameEvents returns a game's narrative trail, most recent first.
func (l *EventLog) GameEvents(ctx context.Context, gameID string) ([]models.GameEvent, error) {
	var events []models.GameEvent
	err := l.DB.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("timestamp DESC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list events for game %s: %w", gameID, err)
	}
	return events, nil
}

// RunningTotals returns every scored response in a game in chronological
// order, for the score-over-time review graph.
func (l *EventLog) RunningTotals(ctx context.Context, gameID string) ([]models.PlayerEvent, error) {
	var events []models.PlayerEvent
	err := l.DB.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("timestamp ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list running totals for game %s: %w", gameID, err)
	}
	return events, nil
}
