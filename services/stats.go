// services/stats.go
package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/JonathanFoo0523/extreme-startup-scaled/models"
)

// StatsService computes the final statistics block for games that have ended
// and do not have one yet. It runs off a periodic job rather than a task
// chain: stats are a one-shot post-game summary, not live monitoring.
type StatsService struct {
	Games   GameStore
	Players PlayerStore
}

func NewStatsService(games GameStore, players PlayerStore) *StatsService {
	return &StatsService{Games: games, Players: players}
}

// StartScheduler runs the stats sweep every minute until the scheduler is
// shut down. Returns the scheduler so main can stop it on shutdown.
func (s *StatsService) StartScheduler(ctx context.Context) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			if err := s.Sweep(ctx); err != nil {
				log.Printf("❌ Stats sweep failed: %v", err)
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	return sched, nil
}

// Sweep stamps statistics onto every ended game that lacks them.
func (s *StatsService) Sweep(ctx context.Context) error {
	games, err := s.Games.ScanGames(ctx, true)
	if err != nil {
		return err
	}

	for _, game := range games {
		if game.Stats != nil {
			continue
		}
		stats, err := s.Compute(ctx, game.GameID)
		if err != nil {
			log.Printf("❌ Failed to compute stats for game %s: %v", game.GameID, err)
			continue
		}
		if err := s.Games.SetStats(ctx, game.GameID, stats); err != nil {
			log.Printf("❌ Failed to store stats for game %s: %v", game.GameID, err)
			continue
		}
		log.Printf("✅ Stored final stats for game %s", game.GameID)
	}
	return nil
}

// Compute derives the summary block from the final player table.
func (s *StatsService) Compute(ctx context.Context, gameID string) (*models.GameStats, error) {
	players, err := s.Players.QueryByScore(ctx, gameID, false)
	if err != nil {
		return nil, err
	}

	stats := &models.GameStats{}
	var totalRate float64
	var scored int
	for _, p := range players {
		stats.TotalRequests += p.RequestCounts
		if p.LongestStreak > stats.LongestStreak {
			stats.LongestStreak = p.LongestStreak
			stats.LongestStreakBy = p.Name
		}
		if p.RequestCounts == 0 {
			continue
		}
		rate := p.SuccessRatio()
		totalRate += rate
		scored++
		if rate > stats.BestSuccessRate {
			stats.BestSuccessRate = rate
			stats.BestSuccessRateBy = p.Name
		}
	}
	if scored > 0 {
		stats.AverageSuccessRate = totalRate / float64(scored)
	}
	return stats, nil
}
