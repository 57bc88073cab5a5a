// services/quiz_master.go
package services

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonathanFoo0523/extreme-startup-scaled/models"
	"github.com/JonathanFoo0523/extreme-startup-scaled/taskqueue"
	"github.com/JonathanFoo0523/extreme-startup-scaled/utils"
)

// QuizMaster executes one step of a per-player question chain: validate the
// concurrency token, ask the player's endpoint the current round's question,
// score the reply, persist, and reschedule itself. Each invocation is
// stateless; the chain's only memory is the task message itself.
type QuizMaster struct {
	Games     GameStore
	Players   PlayerStore
	Events    EventRecorder
	Queue     TaskQueue // administer_question_tasks
	Questions QuestionSource
	Client    *http.Client

	now func() time.Time
}

func NewQuizMaster(games GameStore, players PlayerStore, events EventRecorder, queue TaskQueue, questions QuestionSource) *QuizMaster {
	return &QuizMaster{
		Games:     games,
		Players:   players,
		Events:    events,
		Queue:     queue,
		Questions: questions,
		Client:    utils.PlayerClient,
		now:       time.Now,
	}
}

// AdministerQuestion runs one chain step. A stale token or a gate condition
// (game ended, player removed) ends the chain silently with a nil return; any
// non-nil error leaves the message unacknowledged so the queue redelivers it.
func (qm *QuizMaster) AdministerQuestion(ctx context.Context, task taskqueue.AdministerQuestionTask) error {
	prevDelay := time.Duration(task.PrevDelaySecs * float64(time.Second))
	if prevDelay <= 0 {
		prevDelay = DefaultDelay
	}

	token, err := qm.Players.ValidateModificationHash(ctx, task.GameID, task.PlayerID, task.ModificationHash)
	if err != nil {
		if errors.Is(err, models.ErrStaleModificationHash) {
			log.Printf("Stale modification hash for player %s, dropping chain", task.PlayerID)
			return nil
		}
		return err
	}

	player, err := qm.Players.Get(ctx, task.GameID, task.PlayerID)
	if err != nil {
		return err
	}
	game, err := qm.Games.Get(ctx, task.GameID)
	if err != nil {
		return err
	}
	if game == nil || player == nil {
		log.Printf("Game %s or player %s no longer exists, dropping chain", task.GameID, task.PlayerID)
		return nil
	}

	if game.Ended || !player.Active {
		return nil
	}
	if !game.Running {
		// Paused: keep the chain alive without contacting the endpoint.
		return qm.Queue.Send(ctx, taskqueue.AdministerQuestionTask{
			GameID:           task.GameID,
			PlayerID:         task.PlayerID,
			ModificationHash: token,
			PrevDelaySecs:    prevDelay.Seconds(),
		}, prevDelay)
	}

	question, err := qm.Questions.NextQuestion(ctx, game.Round)
	if err != nil {
		return err
	}

	outcome := qm.askPlayer(ctx, player.API, question)

	players, err := qm.Players.QueryByScore(ctx, task.GameID, true)
	if err != nil {
		return err
	}
	position := leaderboardPosition(players, task.PlayerID)
	pointsGained := calculatePointsGained(position, question.Points, outcome)

	newStreak := appendStreak(player.Streak, outcome)
	newRoundIndex := player.RoundIndex + 1
	assistance := UpdateAssistance(models.RoundWindow(newStreak, newRoundIndex), player.NeedsAssistance)

	if err := qm.Events.AddPlayerEvent(ctx, &models.PlayerEvent{
		ID:           uuid.NewString(),
		GameID:       task.GameID,
		PlayerID:     task.PlayerID,
		Timestamp:    qm.now(),
		Score:        player.Score + pointsGained,
		Query:        question.Text,
		Difficulty:   game.Round,
		PointsGained: pointsGained,
		ResponseType: string(outcome),
	}); err != nil {
		return err
	}

	set := map[string]any{
		"streak":           newStreak,
		"needs_assistance": assistance,
	}
	increments := []string{"round_index", "request_counts"}
	if outcome == models.OutcomeCorrect {
		increments = append(increments, "correct_tally")
		set["longest_streak"] = max(player.LongestStreak, models.TrailingRun(newStreak, models.StreakCorrect))
	} else {
		increments = append(increments, "incorrect_tally")
	}
	if err := qm.Players.Update(ctx, task.GameID, task.PlayerID, set, increments...); err != nil {
		return err
	}
	if err := qm.Players.IncrementScore(ctx, task.GameID, task.PlayerID, pointsGained); err != nil {
		return err
	}

	nextDelay := NextDelay(prevDelay, outcome)
	return qm.Queue.Send(ctx, taskqueue.AdministerQuestionTask{
		GameID:           task.GameID,
		PlayerID:         task.PlayerID,
		ModificationHash: token,
		PrevDelaySecs:    nextDelay.Seconds(),
	}, nextDelay)
}

// askPlayer sends the question to the player's endpoint as a GET with a single
// query parameter and classifies the exchange. Transport failures and
// timeouts are NO_SERVER_RESPONSE; non-2xx replies are ERROR_RESPONSE.
func (qm *QuizMaster) askPlayer(ctx context.Context, api string, question *models.Question) models.Outcome {
	u, err := url.Parse(api)
	if err != nil {
		return models.OutcomeNoServerResponse
	}
	params := u.Query()
	params.Set("q", question.Text)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return models.OutcomeNoServerResponse
	}
	resp, err := qm.Client.Do(req)
	if err != nil {
		return models.OutcomeNoServerResponse
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return models.OutcomeErrorResponse
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return models.OutcomeNoServerResponse
	}

	if strings.EqualFold(strings.TrimSpace(string(body)), strings.TrimSpace(question.Answer)) {
		return models.OutcomeCorrect
	}
	return models.OutcomeWrong
}

// calculatePointsGained applies the scoring rules: full value for a correct answer, a
// position-scaled deduction for a wrong one (leaders lose less per mistake),
// and a flat penalty for an endpoint problem.
func calculatePointsGained(position, questionPoints int, outcome models.Outcome) int {
	switch outcome {
	case models.OutcomeCorrect:
		return questionPoints
	case models.OutcomeWrong:
		return -questionPoints / position
	default:
		return -ProblemPenalty
	}
}

// leaderboardPosition is the player's 1-based rank in the score-ordered list.
// Recomputed on every invocation; other chains mutate scores concurrently.
func leaderboardPosition(playersByScore []models.Player, playerID string) int {
	for i, p := range playersByScore {
		if p.PlayerID == playerID {
			return i + 1
		}
	}
	return len(playersByScore) + 1
}

// appendStreak appends the outcome's code and truncates to the bounded window.
func appendStreak(streak string, outcome models.Outcome) string {
	s := streak + outcome.StreakCode()
	if len(s) > StreakLength {
		s = s[len(s)-StreakLength:]
	}
	return s
}
