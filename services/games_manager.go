// services/games_manager.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JonathanFoo0523/extreme-startup-scaled/models"
	"github.com/JonathanFoo0523/extreme-startup-scaled/taskqueue"
)

// GamesManager implements the administrative operations: creating games and
// players, pausing, round advancement, assistance, ending. Every mutation
// that in-flight tasks must not survive rotates the relevant token; most
// operations also seed a task chain.
type GamesManager struct {
	Games         GameStore
	Players       PlayerStore
	Events        EventRecorder
	Questions     QuestionSource
	QuestionQueue TaskQueue // administer_question_tasks
	MonitorQueue  TaskQueue // game_monitor_tasks
}

func NewGamesManager(games GameStore, players PlayerStore, events EventRecorder, questions QuestionSource, questionQueue, monitorQueue TaskQueue) *GamesManager {
	return &GamesManager{
		Games:         games,
		Players:       players,
		Events:        events,
		Questions:     questions,
		QuestionQueue: questionQueue,
		MonitorQueue:  monitorQueue,
	}
}

// GameView is the admin-facing snapshot of a game.
type GameView struct {
	models.Game
	Players         []string   `json:"players"`
	PlayersToAssist AssistList `json:"players_to_assist"`
	MaxRound        int        `json:"max_round"`
}

// AssistList names players who need help and players already being helped.
type AssistList struct {
	NeedsAssistance []string `json:"needs_assistance"`
	BeingAssisted   []string `json:"being_assisted"`
}

// FinalBoardEntry is one row of the end-of-game leaderboard.
type FinalBoardEntry struct {
	PlayerID      string  `json:"player_id"`
	Name          string  `json:"name"`
	Score         int     `json:"score"`
	LongestStreak int     `json:"longest_streak"`
	CorrectTally  int     `json:"correct_tally"`
	RequestCounts int     `json:"request_counts"`
	SuccessRatio  float64 `json:"success_ratio"`
}

// NewGame creates a game and seeds its three monitor chains.
func (m *GamesManager) NewGame(ctx context.Context, password string) (*models.Game, error) {
	game, err := m.Games.Add(ctx, password)
	if err != nil {
		return nil, err
	}
	if err := m.MonitorQueue.Send(ctx, taskqueue.MonitorTask{
		GameID:           game.GameID,
		Type:             taskqueue.TaskStartGame,
		ModificationHash: game.ModificationHash,
	}, 0); err != nil {
		return nil, fmt.Errorf("failed to seed monitors for game %s: %w", game.GameID, err)
	}
	return game, nil
}

// GameExists reports whether the game id is known.
func (m *GamesManager) GameExists(ctx context.Context, gameID string) (bool, error) {
	game, err := m.Games.Get(ctx, gameID)
	if err != nil {
		return false, err
	}
	return game != nil, nil
}

// GetGame assembles the admin view: record, active player ids, assistance
// lists and the bank's final round.
func (m *GamesManager) GetGame(ctx context.Context, gameID string) (*GameView, error) {
	game, err := m.Games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, nil
	}

	players, err := m.Players.Query(ctx, gameID, map[string]any{"active": true})
	if err != nil {
		return nil, err
	}

	view := &GameView{Game: *game}
	for _, p := range players {
		view.Players = append(view.Players, p.PlayerID)
		switch p.NeedsAssistance {
		case models.AssistanceNeeds:
			view.PlayersToAssist.NeedsAssistance = append(view.PlayersToAssist.NeedsAssistance, p.Name)
		case models.AssistanceGiven:
			view.PlayersToAssist.BeingAssisted = append(view.PlayersToAssist.BeingAssisted, p.Name)
		}
	}

	maxRound, err := m.Questions.MaxRound(ctx)
	if err != nil {
		return nil, err
	}
	view.MaxRound = maxRound
	return view, nil
}

// ListGames returns every game that has not ended, with active player ids.
func (m *GamesManager) ListGames(ctx context.Context) ([]GameView, error) {
	games, err := m.Games.ScanGames(ctx, false)
	if err != nil {
		return nil, err
	}

	views := make([]GameView, 0, len(games))
	for _, game := range games {
		players, err := m.Players.Query(ctx, game.GameID, map[string]any{"active": true})
		if err != nil {
			return nil, err
		}
		view := GameView{Game: game}
		for _, p := range players {
			view.Players = append(view.Players, p.PlayerID)
		}
		views = append(views, view)
	}
	return views, nil
}

// PauseGame halts question administration and monitoring. The game token is
// rotated so the auto-advance chain strands itself; player chains idle on the
// running flag and survive the pause.
func (m *GamesManager) PauseGame(ctx context.Context, gameID string) error {
	return m.Games.UpdateAttributes(ctx, gameID, map[string]any{
		"running":           false,
		"modification_hash": models.NewModificationHash(),
	})
}

// UnpauseGame resumes the game and re-seeds the monitor chains.
func (m *GamesManager) UnpauseGame(ctx context.Context, gameID string) error {
	hash := models.NewModificationHash()
	if err := m.Games.UpdateAttributes(ctx, gameID, map[string]any{
		"running":           true,
		"modification_hash": hash,
	}); err != nil {
		return err
	}
	return m.MonitorQueue.Send(ctx, taskqueue.MonitorTask{
		GameID:           gameID,
		Type:             taskqueue.TaskStartGame,
		ModificationHash: hash,
	}, 0)
}

// SetAutoMode turns on automatic round advancement and seeds a fresh
// auto-advance chain holding the new token.
func (m *GamesManager) SetAutoMode(ctx context.Context, gameID string) error {
	hash := models.NewModificationHash()
	if err := m.Games.UpdateAttributes(ctx, gameID, map[string]any{
		"auto_mode":         true,
		"modification_hash": hash,
	}); err != nil {
		return err
	}
	return m.MonitorQueue.Send(ctx, taskqueue.MonitorTask{
		GameID:           gameID,
		Type:             taskqueue.TaskAutoIncrement,
		ModificationHash: hash,
	}, 0)
}

// ClearAutoMode turns off automatic round advancement. The rotation strands
// the running auto-advance chain on its next token check.
func (m *GamesManager) ClearAutoMode(ctx context.Context, gameID string) error {
	return m.Games.UpdateAttributes(ctx, gameID, map[string]any{
		"auto_mode":         false,
		"modification_hash": models.NewModificationHash(),
	})
}

// EndGame marks the game terminal. Ended is never cleared; every chain
// terminates on its next gate check.
func (m *GamesManager) EndGame(ctx context.Context, gameID string) error {
	return m.Games.UpdateAttributes(ctx, gameID, map[string]any{
		"ended":             true,
		"modification_hash": models.NewModificationHash(),
	})
}

// InLastRound reports whether the game has reached the bank's final round.
func (m *GamesManager) InLastRound(ctx context.Context, gameID string) (bool, error) {
	game, err := m.Games.Get(ctx, gameID)
	if err != nil || game == nil {
		return false, err
	}
	maxRound, err := m.Questions.MaxRound(ctx)
	if err != nil {
		return false, err
	}
	return game.Round == maxRound, nil
}

// AdvanceRound moves the game to the next round by admin decision and resets
// every active player's per-round progress. Leaving the warmup round (round 0
// to 1) additionally wipes warmup scores and histories, rotates each player's
// token and restarts their question chains so nothing from the warmup
// lingers.
func (m *GamesManager) AdvanceRound(ctx context.Context, gameID string) error {
	newRound, err := m.Games.IncrementRound(ctx, gameID)
	if err != nil {
		return err
	}
	if err := m.Games.UpdateAttributes(ctx, gameID, map[string]any{
		"modification_hash": models.NewModificationHash(),
	}); err != nil {
		return err
	}

	players, err := m.Players.Query(ctx, gameID, map[string]any{"active": true})
	if err != nil {
		return err
	}

	for _, player := range players {
		if newRound != 1 {
			if err := m.Players.Update(ctx, gameID, player.PlayerID, map[string]any{"round_index": 0}); err != nil {
				return err
			}
			continue
		}

		hash := models.NewModificationHash()
		if err := m.Events.AddPlayerEvent(ctx, &models.PlayerEvent{
			ID:           uuid.NewString(),
			GameID:       gameID,
			PlayerID:     player.PlayerID,
			Timestamp:    time.Now(),
			Score:        0,
			Query:        "WARMUP_ENDED",
			Difficulty:   1,
			PointsGained: 0,
		}); err != nil {
			return err
		}
		if err := m.Players.Update(ctx, gameID, player.PlayerID, map[string]any{
			"round_index":       0,
			"streak":            "",
			"correct_tally":     0,
			"incorrect_tally":   0,
			"request_counts":    0,
			"score":             0,
			"modification_hash": hash,
		}); err != nil {
			return err
		}
		if err := m.QuestionQueue.Send(ctx, taskqueue.AdministerQuestionTask{
			GameID:           gameID,
			PlayerID:         player.PlayerID,
			ModificationHash: hash,
		}, 0); err != nil {
			return err
		}
	}
	return nil
}

// AddPlayer registers a player and seeds their question chain.
func (m *GamesManager) AddPlayer(ctx context.Context, gameID, name, api string) (*models.Player, error) {
	player, err := m.Players.Add(ctx, gameID, name, api)
	if err != nil {
		return nil, err
	}
	if err := m.QuestionQueue.Send(ctx, taskqueue.AdministerQuestionTask{
		GameID:           gameID,
		PlayerID:         player.PlayerID,
		ModificationHash: player.ModificationHash,
	}, 0); err != nil {
		return nil, fmt.Errorf("failed to seed question chain for player %s: %w", player.PlayerID, err)
	}
	return player, nil
}

// GetPlayer fetches one player record. Returns nil when absent.
func (m *GamesManager) GetPlayer(ctx context.Context, gameID, playerID string) (*models.Player, error) {
	return m.Players.Get(ctx, gameID, playerID)
}

// UpdatePlayer changes a player's name and/or endpoint.
func (m *GamesManager) UpdatePlayer(ctx context.Context, gameID, playerID, name, api string) error {
	set := map[string]any{}
	if name != "" {
		set["name"] = name
	}
	if api != "" {
		set["api"] = api
	}
	if len(set) == 0 {
		return nil
	}
	return m.Players.Update(ctx, gameID, playerID, set)
}

// RemovePlayer soft-deletes a player; their chain terminates on its next
// active check. Records are kept for the review endpoints.
func (m *GamesManager) RemovePlayer(ctx context.Context, gameID, playerID string) error {
	return m.Players.Update(ctx, gameID, playerID, map[string]any{"active": false})
}

// RemoveAllPlayers soft-deletes every player in a game.
func (m *GamesManager) RemoveAllPlayers(ctx context.Context, gameID string) error {
	players, err := m.Players.Query(ctx, gameID, nil)
	if err != nil {
		return err
	}
	for _, p := range players {
		if err := m.RemovePlayer(ctx, gameID, p.PlayerID); err != nil {
			return err
		}
	}
	return nil
}

// PlayersToAssist lists players needing help and players being helped.
func (m *GamesManager) PlayersToAssist(ctx context.Context, gameID string) (*AssistList, error) {
	needing, err := m.Players.Query(ctx, gameID, map[string]any{"needs_assistance": models.AssistanceNeeds})
	if err != nil {
		return nil, err
	}
	helped, err := m.Players.Query(ctx, gameID, map[string]any{"needs_assistance": models.AssistanceGiven})
	if err != nil {
		return nil, err
	}

	list := &AssistList{}
	for _, p := range needing {
		list.NeedsAssistance = append(list.NeedsAssistance, p.Name)
	}
	for _, p := range helped {
		list.BeingAssisted = append(list.BeingAssisted, p.Name)
	}
	return list, nil
}

// AssistPlayer promotes a player from "needs help" to "being helped". This is
// the only path to the being-helped state; the detector merely preserves it.
// Returns false if the named player is not currently flagged.
func (m *GamesManager) AssistPlayer(ctx context.Context, gameID, playerName string) (bool, error) {
	players, err := m.Players.Query(ctx, gameID, map[string]any{"name": playerName})
	if err != nil {
		return false, err
	}
	if len(players) == 0 || players[0].NeedsAssistance != models.AssistanceNeeds {
		return false, nil
	}

	err = m.Players.Update(ctx, gameID, players[0].PlayerID, map[string]any{
		"needs_assistance": models.AssistanceGiven,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// FinalBoard returns the score-ranked leaderboard with per-player success
// ratios, for the post-game review.
func (m *GamesManager) FinalBoard(ctx context.Context, gameID string) ([]FinalBoardEntry, error) {
	players, err := m.Players.QueryByScore(ctx, gameID, false)
	if err != nil {
		return nil, err
	}

	board := make([]FinalBoardEntry, 0, len(players))
	for _, p := range players {
		board = append(board, FinalBoardEntry{
			PlayerID:      p.PlayerID,
			Name:          p.Name,
			Score:         p.Score,
			LongestStreak: p.LongestStreak,
			CorrectTally:  p.CorrectTally,
			RequestCounts: p.RequestCounts,
			SuccessRatio:  p.SuccessRatio(),
		})
	}
	return board, nil
}
