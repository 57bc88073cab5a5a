package models

import "testing"

func TestStreakCode(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    string
	}{
		{OutcomeCorrect, "1"},
		{OutcomeWrong, "X"},
		{OutcomeErrorResponse, "0"},
		{OutcomeNoServerResponse, "0"},
	}
	for _, tt := range tests {
		if got := tt.outcome.StreakCode(); got != tt.want {
			t.Errorf("%s.StreakCode() = %q, want %q", tt.outcome, got, tt.want)
		}
	}
}

func TestTrailingRun(t *testing.T) {
	tests := []struct {
		name   string
		streak string
		cutset string
		want   int
	}{
		{"empty streak", "", StreakCorrect, 0},
		{"all correct", "1111", StreakCorrect, 4},
		{"run broken earlier", "X111", StreakCorrect, 3},
		{"run ends elsewhere", "111X", StreakCorrect, 0},
		{"mixed non-correct run", "11X00X", StreakNonCorrect, 4},
		{"non-correct run stopped by correct", "X0X1X0", StreakNonCorrect, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrailingRun(tt.streak, tt.cutset); got != tt.want {
				t.Errorf("TrailingRun(%q, %q) = %d, want %d", tt.streak, tt.cutset, got, tt.want)
			}
		})
	}
}

func TestRoundWindow(t *testing.T) {
	tests := []struct {
		name       string
		streak     string
		roundIndex int
		want       string
	}{
		{"zero index", "111X", 0, ""},
		{"negative index", "111X", -2, ""},
		{"partial window", "111X0", 2, "X0"},
		{"exact window", "111X", 4, "111X"},
		{"index past history", "1X", 30, "1X"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoundWindow(tt.streak, tt.roundIndex); got != tt.want {
				t.Errorf("RoundWindow(%q, %d) = %q, want %q", tt.streak, tt.roundIndex, got, tt.want)
			}
		})
	}
}

func TestSuccessRatio(t *testing.T) {
	p := &Player{CorrectTally: 3, RequestCounts: 4}
	if got := p.SuccessRatio(); got != 0.75 {
		t.Errorf("SuccessRatio() = %v, want 0.75", got)
	}

	idle := &Player{}
	if got := idle.SuccessRatio(); got != 0 {
		t.Errorf("SuccessRatio() with no requests = %v, want 0", got)
	}
}
