package model

import (
	"testing"
	"time"
)

func TestRemainingSeconds(t *testing.T) {
	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	attempt := ActiveAttempt{
		TimeBudgetSeconds: 600,
		StartedAt:         started,
	}

	cases := []struct {
		name string
		now  time.Time
		want int
	}{
		{"at start", started, 600},
		{"halfway", started.Add(5 * time.Minute), 300},
		{"at deadline", started.Add(10 * time.Minute), 0},
		{"past deadline clamps to zero", started.Add(time.Hour), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := attempt.RemainingSeconds(tc.now); got != tc.want {
				t.Errorf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestSanitizeStripsCorrectOption(t *testing.T) {
	q := Question{
		QuestionText:  "What is 2+2?",
		OptionA:       "3",
		OptionB:       "4",
		OptionC:       "5",
		OptionD:       "6",
		CorrectOption: AnswerTagB,
	}
	s := q.Sanitize()
	if s.QuestionText != q.QuestionText || s.OptionB != "4" {
		t.Errorf("sanitized view lost question content: %+v", s)
	}
	// QuestionForStudent has no correct-option field at all; this test
	// documents that Sanitize is the boundary where it disappears.
}
