package model

import (
	"time"

	"github.com/google/uuid"
)

// ActiveAttempt is the ephemeral record of an exam in progress, kept in
// Redis keyed by the authenticated user. A user has at most one; starting
// another exam overwrites it, submission or logout consumes it.
type ActiveAttempt struct {
	ExamID            uuid.UUID `json:"exam_id"`
	TimeBudgetSeconds int       `json:"time_budget_seconds"`
	StartedAt         time.Time `json:"started_at"`
}

// RemainingSeconds reports the advisory time left on the attempt's budget.
// The budget is informational only and is never enforced at grading.
func (a ActiveAttempt) RemainingSeconds(now time.Time) int {
	deadline := a.StartedAt.Add(time.Duration(a.TimeBudgetSeconds) * time.Second)
	remaining := int(deadline.Sub(now).Seconds())
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// SubmitAttemptRequest maps question IDs to the chosen option tag.
// Keys that do not belong to the attempt's exam are ignored at grading;
// questions absent from the map count as unanswered, so an empty or
// missing map is a valid zero-answer submission.
type SubmitAttemptRequest struct {
	Answers map[string]string `json:"answers"`
}

// AttemptOutcome is returned once an attempt has been graded.
type AttemptOutcome struct {
	ResultID       uuid.UUID `json:"result_id"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Percentage     float64   `json:"percentage"`
}

// AttemptState reports the caller's in-progress attempt, if any.
type AttemptState struct {
	ExamID            uuid.UUID `json:"exam_id"`
	TimeBudgetSeconds int       `json:"time_budget_seconds"`
	RemainingSeconds  int       `json:"remaining_seconds"`
	StartedAt         time.Time `json:"started_at"`
}
