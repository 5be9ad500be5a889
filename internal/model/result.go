package model

import (
	"time"

	"github.com/google/uuid"
)

// Result is the persisted outcome of one completed attempt. TotalQuestions
// is a snapshot taken at submission time; later edits to the exam's
// question set never alter it.
type Result struct {
	ID             uuid.UUID `json:"id"`
	UserID         int       `json:"user_id"`
	ExamID         uuid.UUID `json:"exam_id"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	TakenAt        time.Time `json:"taken_at"`
}

// ResultWithExam is a result joined with its exam title, for the
// student-facing results view.
type ResultWithExam struct {
	Result
	ExamTitle string `json:"exam_title"`
}

// ResultWithContext is a result joined with username and exam title, for
// the admin-facing global view.
type ResultWithContext struct {
	Result
	Username  string `json:"username"`
	ExamTitle string `json:"exam_title"`
}
