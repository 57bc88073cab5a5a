package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/JonathanFoo0523/extreme-startup-scaled/models"
	"github.com/JonathanFoo0523/extreme-startup-scaled/taskqueue"
)

// In-memory fakes for the engine's collaborator interfaces.

type fakeGameStore struct {
	games map[string]*models.Game
}

func newFakeGameStore(games ...*models.Game) *fakeGameStore {
	s := &fakeGameStore{games: map[string]*models.Game{}}
	for _, g := range games {
		s.games[g.GameID] = g
	}
	return s
}

func (s *fakeGameStore) Add(ctx context.Context, password string) (*models.Game, error) {
	g := &models.Game{
		GameID:           models.NewID(),
		Password:         password,
		Running:          true,
		ModificationHash: models.NewModificationHash(),
	}
	s.games[g.GameID] = g
	return g, nil
}

func (s *fakeGameStore) Get(ctx context.Context, gameID string) (*models.Game, error) {
	g, ok := s.games[gameID]
	if !ok {
		return nil, nil
	}
	copied := *g
	return &copied, nil
}

func (s *fakeGameStore) ScanGames(ctx context.Context, ended bool) ([]models.Game, error) {
	var out []models.Game
	for _, g := range s.games {
		if g.Ended == ended {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (s *fakeGameStore) ValidateModificationHash(ctx context.Context, gameID, prev string) (string, error) {
	g, ok := s.games[gameID]
	if !ok {
		return "", fmt.Errorf("game %s not found", gameID)
	}
	if g.ModificationHash != prev {
		return "", models.ErrStaleModificationHash
	}
	g.ModificationHash = models.NewModificationHash()
	return g.ModificationHash, nil
}

func (s *fakeGameStore) UpdateAttributes(ctx context.Context, gameID string, attrs map[string]any) error {
	g, ok := s.games[gameID]
	if !ok {
		return fmt.Errorf("game %s not found", gameID)
	}
	for k, v := range attrs {
		switch k {
		case "running":
			g.Running = v.(bool)
		case "ended":
			g.Ended = v.(bool)
		case "auto_mode":
			g.AutoMode = v.(bool)
		case "round":
			g.Round = v.(int)
		case "modification_hash":
			g.ModificationHash = v.(string)
		default:
			return fmt.Errorf("fakeGameStore: unhandled attribute %s", k)
		}
	}
	return nil
}

func (s *fakeGameStore) IncrementRound(ctx context.Context, gameID string) (int, error) {
	g, ok := s.games[gameID]
	if !ok {
		return 0, fmt.Errorf("game %s not found", gameID)
	}
	g.Round++
	return g.Round, nil
}

func (s *fakeGameStore) SetStats(ctx context.Context, gameID string, stats *models.GameStats) error {
	g, ok := s.games[gameID]
	if !ok {
		return fmt.Errorf("game %s not found", gameID)
	}
	g.Stats = stats
	return nil
}

type fakePlayerStore struct {
	players map[string]*models.Player
}

func playerStoreKey(gameID, playerID string) string {
	return gameID + "/" + playerID
}

func newFakePlayerStore(players ...*models.Player) *fakePlayerStore {
	s := &fakePlayerStore{players: map[string]*models.Player{}}
	for _, p := range players {
		s.players[playerStoreKey(p.GameID, p.PlayerID)] = p
	}
	return s
}

func (s *fakePlayerStore) Add(ctx context.Context, gameID, name, api string) (*models.Player, error) {
	p := &models.Player{
		GameID:           gameID,
		PlayerID:         name + "-" + models.NewID(),
		Name:             name,
		API:              api,
		Active:           true,
		ModificationHash: models.NewModificationHash(),
	}
	s.players[playerStoreKey(gameID, p.PlayerID)] = p
	return p, nil
}

func (s *fakePlayerStore) Get(ctx context.Context, gameID, playerID string) (*models.Player, error) {
	p, ok := s.players[playerStoreKey(gameID, playerID)]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (s *fakePlayerStore) Query(ctx context.Context, gameID string, filters map[string]any) ([]models.Player, error) {
	var out []models.Player
	for _, p := range s.players {
		if p.GameID != gameID {
			continue
		}
		match := true
		for k, v := range filters {
			switch k {
			case "name":
				match = match && p.Name == v.(string)
			case "needs_assistance":
				match = match && p.NeedsAssistance == v.(int)
			case "active":
				match = match && p.Active == v.(bool)
			default:
				return nil, fmt.Errorf("fakePlayerStore: unhandled filter %s", k)
			}
		}
		if match {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *fakePlayerStore) QueryByScore(ctx context.Context, gameID string, activeOnly bool) ([]models.Player, error) {
	var out []models.Player
	for _, p := range s.players {
		if p.GameID != gameID {
			continue
		}
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, *p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

func (s *fakePlayerStore) ValidateModificationHash(ctx context.Context, gameID, playerID, prev string) (string, error) {
	p, ok := s.players[playerStoreKey(gameID, playerID)]
	if !ok {
		return "", fmt.Errorf("player %s not found", playerID)
	}
	if p.ModificationHash != prev {
		return "", models.ErrStaleModificationHash
	}
	p.ModificationHash = models.NewModificationHash()
	return p.ModificationHash, nil
}

func (s *fakePlayerStore) Update(ctx context.Context, gameID, playerID string, set map[string]any, increment ...string) error {
	p, ok := s.players[playerStoreKey(gameID, playerID)]
	if !ok {
		return fmt.Errorf("player %s not found", playerID)
	}
	for k, v := range set {
		switch k {
		case "name":
			p.Name = v.(string)
		case "api":
			p.API = v.(string)
		case "active":
			p.Active = v.(bool)
		case "streak":
			p.Streak = v.(string)
		case "needs_assistance":
			p.NeedsAssistance = v.(int)
		case "longest_streak":
			p.LongestStreak = v.(int)
		case "round_index":
			p.RoundIndex = v.(int)
		case "correct_tally":
			p.CorrectTally = v.(int)
		case "incorrect_tally":
			p.IncorrectTally = v.(int)
		case "request_counts":
			p.RequestCounts = v.(int)
		case "score":
			p.Score = v.(int)
		case "modification_hash":
			p.ModificationHash = v.(string)
		default:
			return fmt.Errorf("fakePlayerStore: unhandled attribute %s", k)
		}
	}
	for _, k := range increment {
		switch k {
		case "round_index":
			p.RoundIndex++
		case "request_counts":
			p.RequestCounts++
		case "correct_tally":
			p.CorrectTally++
		case "incorrect_tally":
			p.IncorrectTally++
		default:
			return fmt.Errorf("fakePlayerStore: unhandled increment %s", k)
		}
	}
	return nil
}

func (s *fakePlayerStore) IncrementScore(ctx context.Context, gameID, playerID string, delta int) error {
	p, ok := s.players[playerStoreKey(gameID, playerID)]
	if !ok {
		return fmt.Errorf("player %s not found", playerID)
	}
	p.Score += delta
	return nil
}

type fakeRecorder struct {
	playerEvents []models.PlayerEvent
	gameEvents   []models.GameEvent
}

func (r *fakeRecorder) AddPlayerEvent(ctx context.Context, ev *models.PlayerEvent) error {
	r.playerEvents = append(r.playerEvents, *ev)
	return nil
}

func (r *fakeRecorder) AddGameEvent(ctx context.Context, ev *models.GameEvent) error {
	r.gameEvents = append(r.gameEvents, *ev)
	return nil
}

type sentTask struct {
	payload any
	delay   time.Duration
}

type fakeQueue struct {
	sent []sentTask
}

func (q *fakeQueue) Send(ctx context.Context, payload any, delay time.Duration) error {
	q.sent = append(q.sent, sentTask{payload: payload, delay: delay})
	return nil
}

func (q *fakeQueue) lastQuestionTask(t testingT) taskqueue.AdministerQuestionTask {
	t.Helper()
	if len(q.sent) == 0 {
		t.Fatalf("expected a task to be enqueued")
	}
	task, ok := q.sent[len(q.sent)-1].payload.(taskqueue.AdministerQuestionTask)
	if !ok {
		t.Fatalf("expected AdministerQuestionTask, got %T", q.sent[len(q.sent)-1].payload)
	}
	return task
}

func (q *fakeQueue) lastMonitorTask(t testingT) taskqueue.MonitorTask {
	t.Helper()
	if len(q.sent) == 0 {
		t.Fatalf("expected a task to be enqueued")
	}
	task, ok := q.sent[len(q.sent)-1].payload.(taskqueue.MonitorTask)
	if !ok {
		t.Fatalf("expected MonitorTask, got %T", q.sent[len(q.sent)-1].payload)
	}
	return task
}

// testingT is the slice of *testing.T the fakes need.
type testingT interface {
	Helper()
	Fatalf(format string, args ...any)
}

type fakeQuestions struct {
	question models.Question
	maxRound int
}

func (f *fakeQuestions) NextQuestion(ctx context.Context, round int) (*models.Question, error) {
	q := f.question
	q.Round = round
	return &q, nil
}

func (f *fakeQuestions) MaxRound(ctx context.Context) (int, error) {
	return f.maxRound, nil
}
