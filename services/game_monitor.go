// services/game_monitor.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/JonathanFoo0523/extreme-startup-scaled/models"
	"github.com/JonathanFoo0523/extreme-startup-scaled/taskqueue"
)

const (
	// MonitorInterval is the self-reschedule delay of every monitor sub-loop.
	MonitorInterval = 2 * time.Second

	// AdvanceRunLength is the trailing correct run, within the current round,
	// that marks a player as ready for harder questions.
	AdvanceRunLength = 6

	// AdvanceRatioThreshold is the fraction of active players that must be
	// ready (and well ranked) before the round auto-advances.
	AdvanceRatioThreshold = 0.4

	// LeaderHoldThreshold is how long a new leader must keep the top spot
	// before the narrative event fires.
	LeaderHoldThreshold = 15 * time.Second

	// ComebackDuration is how long a comeback candidate must stay in the top
	// slice before the narrative event fires.
	ComebackDuration = 5 * time.Second
)

// GameMonitor runs the three per-game watcher chains: round auto-advance,
// new-leader tracking and comeback detection. Each chain is an independent
// sequence of self-rescheduled tasks; all state a chain needs travels in its
// task message.
type GameMonitor struct {
	Games   GameStore
	Players PlayerStore
	Events  EventRecorder
	Queue   TaskQueue // game_monitor_tasks

	now func() time.Time
}

func NewGameMonitor(games GameStore, players PlayerStore, events EventRecorder, queue TaskQueue) *GameMonitor {
	return &GameMonitor{
		Games:   games,
		Players: players,
		Events:  events,
		Queue:   queue,
		now:     time.Now,
	}
}

// Start seeds all three monitor chains for a game. Called on game creation
// and again on unpause; stale duplicates fence themselves out via the token
// (auto-advance) or terminate on the ended/paused gates.
func (gm *GameMonitor) Start(ctx context.Context, gameID, modificationHash string) error {
	seeds := []taskqueue.MonitorTask{
		{GameID: gameID, Type: taskqueue.TaskAutoIncrement, ModificationHash: modificationHash},
		{GameID: gameID, Type: taskqueue.TaskEpicComeback,
			PotentialPlayers:  map[string]int{},
			TransitionPlayers: map[string]taskqueue.TransitionRecord{}},
		{GameID: gameID, Type: taskqueue.TaskNewLeader},
	}
	for _, seed := range seeds {
		if err := gm.Queue.Send(ctx, seed, 0); err != nil {
			return fmt.Errorf("failed to seed %s monitor for game %s: %w", seed.Type, gameID, err)
		}
	}
	return nil
}

// AutoIncrementRound advances the round once enough well-ranked players are on
// a correct run within the current round. Token-guarded: a pause, unpause or
// manual round change rotates the game hash and strands this chain.
func (gm *GameMonitor) AutoIncrementRound(ctx context.Context, task taskqueue.MonitorTask) error {
	token, err := gm.Games.ValidateModificationHash(ctx, task.GameID, task.ModificationHash)
	if err != nil {
		if errors.Is(err, models.ErrStaleModificationHash) {
			log.Printf("Stale modification hash for game %s, dropping auto-advance chain", task.GameID)
			return nil
		}
		return err
	}

	game, err := gm.Games.Get(ctx, task.GameID)
	if err != nil {
		return err
	}
	if game == nil || game.Ended || !game.Running || !game.AutoMode {
		return nil
	}

	// Round 0 is the warmup; leaving it is always an admin decision.
	if game.Round > 0 {
		players, err := gm.Players.QueryByScore(ctx, task.GameID, true)
		if err != nil {
			return err
		}

		advancable := 0
		for pos, player := range players {
			window := models.RoundWindow(player.Streak, player.RoundIndex)
			run := models.TrailingRun(window, models.StreakCorrect)
			if run >= AdvanceRunLength && float64(pos) <= math.Max(0.6*float64(len(players)), 1) {
				advancable++
			}
		}

		total := math.Max(float64(len(players)), 1)
		if float64(advancable)/total > AdvanceRatioThreshold {
			if _, err := gm.Games.IncrementRound(ctx, task.GameID); err != nil {
				return err
			}
			for _, player := range players {
				if err := gm.Players.Update(ctx, task.GameID, player.PlayerID, map[string]any{"round_index": 0}); err != nil {
					return err
				}
			}
		}
	}

	return gm.Queue.Send(ctx, taskqueue.MonitorTask{
		GameID:           task.GameID,
		Type:             taskqueue.TaskAutoIncrement,
		ModificationHash: token,
	}, MonitorInterval)
}

// TrackNewLeader emits one narrative event per leadership span: whoever takes
// the top spot and holds it past the threshold gets the event, exactly once.
func (gm *GameMonitor) TrackNewLeader(ctx context.Context, task taskqueue.MonitorTask) error {
	game, err := gm.Games.Get(ctx, task.GameID)
	if err != nil {
		return err
	}
	if game == nil || game.Ended || !game.Running {
		return nil
	}

	players, err := gm.Players.QueryByScore(ctx, task.GameID, true)
	if err != nil {
		return err
	}

	prev, curr, timeIn := task.PrevLeader, task.CurrLeader, task.TimeIn
	if len(players) > 0 {
		top := players[0]
		switch {
		case curr != top.PlayerID:
			prev = curr
			curr = top.PlayerID
			timeIn = unixSeconds(gm.now())
		case unixSeconds(gm.now())-timeIn > LeaderHoldThreshold.Seconds() && prev != curr:
			if err := gm.Events.AddGameEvent(ctx, &models.GameEvent{
				ID:        uuid.NewString(),
				GameID:    task.GameID,
				Timestamp: gm.now(),
				Title:     "New Leader",
				Description: fmt.Sprintf("player %s beat previous leader and maintained that position for more than %d seconds",
					top.Name, int(LeaderHoldThreshold.Seconds())),
				PlayerID: top.PlayerID,
			}); err != nil {
				return err
			}
			// Marks the event as emitted for this leadership span.
			prev = curr
		}
	}

	return gm.Queue.Send(ctx, taskqueue.MonitorTask{
		GameID:     task.GameID,
		Type:       taskqueue.TaskNewLeader,
		PrevLeader: prev,
		CurrLeader: curr,
		TimeIn:     timeIn,
	}, MonitorInterval)
}

// DetectComeback watches for bottom-slice players who climb into the top
// slice and stay there. Candidates and their in-flight transitions travel in
// the task message, keyed by player id.
func (gm *GameMonitor) DetectComeback(ctx context.Context, task taskqueue.MonitorTask) error {
	game, err := gm.Games.Get(ctx, task.GameID)
	if err != nil {
		return err
	}
	if game == nil || game.Ended || !game.Running {
		return nil
	}

	players, err := gm.Players.QueryByScore(ctx, task.GameID, true)
	if err != nil {
		return err
	}

	potential := task.PotentialPlayers
	if potential == nil {
		potential = map[string]int{}
	}
	transitions := task.TransitionPlayers
	if transitions == nil {
		transitions = map[string]taskqueue.TransitionRecord{}
	}

	topSlice := map[string]bool{}
	for _, p := range topPercentile(players) {
		topSlice[p.PlayerID] = true
	}

	// Record the worst absolute rank seen for everyone currently in the
	// bottom slice.
	from := len(players) - len(bottomPercentile(players))
	for i, p := range bottomPercentile(players) {
		rank := from + i
		if worst, ok := potential[p.PlayerID]; !ok || rank > worst {
			potential[p.PlayerID] = rank
		}
	}

	for pid, worst := range potential {
		if topSlice[pid] {
			transitions[pid] = taskqueue.TransitionRecord{Worst: worst, TimeIn: unixSeconds(gm.now())}
			delete(potential, pid)
		}
	}

	for pid, record := range transitions {
		switch {
		case !topSlice[pid]:
			// Fell back out: the comeback attempt failed, restart the clock.
			potential[pid] = record.Worst
			delete(transitions, pid)
		case unixSeconds(gm.now())-record.TimeIn > ComebackDuration.Seconds():
			player, err := gm.Players.Get(ctx, task.GameID, pid)
			if err != nil {
				return err
			}
			name := pid
			if player != nil {
				name = player.Name
			}
			if err := gm.Events.AddGameEvent(ctx, &models.GameEvent{
				ID:        uuid.NewString(),
				GameID:    task.GameID,
				Timestamp: gm.now(),
				Title:     "Epic Comeback",
				Description: fmt.Sprintf("player %s climbed from the bottom of the board and held a top spot for more than %d seconds",
					name, int(ComebackDuration.Seconds())),
				PlayerID: pid,
			}); err != nil {
				return err
			}
			delete(transitions, pid)
		}
	}

	return gm.Queue.Send(ctx, taskqueue.MonitorTask{
		GameID:            task.GameID,
		Type:              taskqueue.TaskEpicComeback,
		PotentialPlayers:  potential,
		TransitionPlayers: transitions,
	}, MonitorInterval)
}

// topPercentile is the top 20% slice of a score-ordered player list; with
// fewer than five players the slice is empty.
func topPercentile(playersByScore []models.Player) []models.Player {
	end := int(math.Floor(float64(len(playersByScore)) * 0.2))
	return playersByScore[:end]
}

// bottomPercentile is the bottom 20% slice; boundary is ceil(0.8n) so small
// fields degenerate to an empty slice rather than flagging mid-table players.
func bottomPercentile(playersByScore []models.Player) []models.Player {
	from := int(math.Ceil(0.8 * float64(len(playersByScore))))
	return playersByScore[from:]
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixMilli()) / 1000.0
}
