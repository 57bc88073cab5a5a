package services

import (
	"strings"
	"testing"

	"github.com/JonathanFoo0523/extreme-startup-scaled/models"
)

func TestUpdateAssistance(t *testing.T) {
	tests := []struct {
		name        string
		roundStreak string
		prev        int
		want        int
	}{
		{"empty streak", "", models.AssistanceNone, models.AssistanceNone},
		{"short struggle stays unflagged", strings.Repeat("X", AssistanceThreshold), models.AssistanceNone, models.AssistanceNone},
		{"long wrong run flags", strings.Repeat("X", AssistanceThreshold+1), models.AssistanceNone, models.AssistanceNeeds},
		{"long problem run flags", strings.Repeat("0", AssistanceThreshold+1), models.AssistanceNone, models.AssistanceNeeds},
		{"mixed non-correct run flags", "X0X0X0X0X0X0X0X0", models.AssistanceNone, models.AssistanceNeeds},
		{"correct answer resets the run", strings.Repeat("X", 20) + "1" + strings.Repeat("X", 10), models.AssistanceNone, models.AssistanceNone},
		{"recovery clears the flag", strings.Repeat("X", 20) + "1", models.AssistanceNeeds, models.AssistanceNone},
		{"being helped is preserved while struggling", strings.Repeat("X", AssistanceThreshold+1), models.AssistanceGiven, models.AssistanceGiven},
		{"being helped clears on recovery", "1", models.AssistanceGiven, models.AssistanceNone},
		{"detector never promotes to being helped", strings.Repeat("X", AssistanceThreshold+1), models.AssistanceNeeds, models.AssistanceNeeds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UpdateAssistance(tt.roundStreak, tt.prev)
			if got != tt.want {
				t.Errorf("UpdateAssistance(%q, %d) = %d, want %d", tt.roundStreak, tt.prev, got, tt.want)
			}
		})
	}
}
