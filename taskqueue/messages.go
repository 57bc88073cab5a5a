// taskqueue/messages.go
package taskqueue

// Queue names; overridable via QUESTION_QUEUE / MONITOR_QUEUE env vars.
const (
	QuestionQueueName = "administer_question_tasks"
	MonitorQueueName  = "game_monitor_tasks"
)

// Monitor task types carried in MonitorTask.Type.
const (
	TaskStartGame     = "START_GAME"
	TaskAutoIncrement = "AUTO_INCREMENT"
	TaskNewLeader     = "NEW_LEADER"
	TaskEpicComeback  = "EPIC_COMEBACK"
)

// AdministerQuestionTask is one step of a per-player question chain.
// PrevDelaySecs <= 0 means "use the default delay" (a fresh chain seed).
type AdministerQuestionTask struct {
	GameID           string  `json:"game_id"`
	PlayerID         string  `json:"player_id"`
	ModificationHash string  `json:"modification_hash"`
	PrevDelaySecs    float64 `json:"prev_delay,omitempty"`
}

// MonitorTask is one step of a per-game monitor chain. Which fields are
// meaningful depends on Type; the zero values are the seed state.
type MonitorTask struct {
	GameID           string `json:"game_id"`
	Type             string `json:"type"`
	ModificationHash string `json:"modification_hash,omitempty"`

	// NEW_LEADER state.
	PrevLeader string  `json:"prev_leader,omitempty"`
	CurrLeader string  `json:"curr_leader,omitempty"`
	TimeIn     float64 `json:"time_in,omitempty"` // unix seconds

	// EPIC_COMEBACK state. PotentialPlayers maps player id to the worst
	// leaderboard index observed while in the bottom slice.
	PotentialPlayers  map[string]int              `json:"potential_players,omitempty"`
	TransitionPlayers map[string]TransitionRecord `json:"transition_players,omitempty"`
}

// TransitionRecord tracks a comeback candidate that has reached the top slice.
type TransitionRecord struct {
	Worst  int     `json:"worst"`
	TimeIn float64 `json:"time_in"` // unix seconds when the top slice was entered
}
