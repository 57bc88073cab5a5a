package services

import (
	"testing"
	"time"

	"github.com/JonathanFoo0523/extreme-startup-scaled/models"
)

func TestNextDelay(t *testing.T) {
	tests := []struct {
		name    string
		prev    time.Duration
		outcome models.Outcome
		want    time.Duration
	}{
		{"correct speeds up", 5 * time.Second, models.OutcomeCorrect, 4900 * time.Millisecond},
		{"correct clamps at minimum", 1 * time.Second, models.OutcomeCorrect, 1 * time.Second},
		{"correct just above minimum", 1050 * time.Millisecond, models.OutcomeCorrect, 1 * time.Second},
		{"wrong slows down", 5 * time.Second, models.OutcomeWrong, 5100 * time.Millisecond},
		{"wrong clamps at maximum", 20 * time.Second, models.OutcomeWrong, 20 * time.Second},
		{"wrong just below maximum", 19950 * time.Millisecond, models.OutcomeWrong, 20 * time.Second},
		{"error response backs off", 2 * time.Second, models.OutcomeErrorResponse, 10 * time.Second},
		{"no response backs off", 18 * time.Second, models.OutcomeNoServerResponse, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextDelay(tt.prev, tt.outcome)
			if got != tt.want {
				t.Errorf("NextDelay(%v, %s) = %v, want %v", tt.prev, tt.outcome, got, tt.want)
			}
		})
	}
}

func TestNextDelayStaysWithinBounds(t *testing.T) {
	outcomes := []models.Outcome{
		models.OutcomeCorrect,
		models.OutcomeWrong,
		models.OutcomeErrorResponse,
		models.OutcomeNoServerResponse,
	}

	for _, outcome := range outcomes {
		delay := DefaultDelay
		for i := 0; i < 500; i++ {
			delay = NextDelay(delay, outcome)
			if delay < MinRequestInterval || delay > MaxRequestInterval {
				t.Fatalf("delay %v escaped [%v, %v] after %d steps of %s",
					delay, MinRequestInterval, MaxRequestInterval, i+1, outcome)
			}
		}
	}
}
