package model

import (
	"time"

	"github.com/google/uuid"
)

// Exam represents an exam definition.
type Exam struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	TimeLimitMinutes int       `json:"time_limit_minutes"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CreateExamRequest is the payload for creating a new exam. An omitted
// time limit falls back to DefaultTimeLimitMinutes.
type CreateExamRequest struct {
	Title            string `json:"title" binding:"required,min=3,max=255"`
	Description      string `json:"description" binding:"max=2000"`
	TimeLimitMinutes int    `json:"time_limit_minutes" binding:"omitempty,min=1,max=480"`
}

// DefaultTimeLimitMinutes applies when an exam is created without an
// explicit time limit.
const DefaultTimeLimitMinutes = 30

// UpdateExamRequest is the payload for updating an existing exam.
type UpdateExamRequest struct {
	Title            string `json:"title" binding:"required,min=3,max=255"`
	Description      string `json:"description" binding:"max=2000"`
	TimeLimitMinutes int    `json:"time_limit_minutes" binding:"required,min=1,max=480"`
}

// ExamPaper is the student-facing view of an exam: the exam itself plus
// its questions in presentation order, correct answers withheld.
type ExamPaper struct {
	Exam              Exam                 `json:"exam"`
	Questions         []QuestionForStudent `json:"questions"`
	TimeBudgetSeconds int                  `json:"time_budget_seconds"`
}
