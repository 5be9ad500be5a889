package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/examhall/examhall-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ErrExamNotFound is returned when the requested exam does not exist.
var ErrExamNotFound = errors.New("exam not found")

// PaperSource provides an exam and its sanitized (answer-stripped) questions.
type PaperSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
	SanitizedQuestions(ctx context.Context, examID uuid.UUID) ([]model.QuestionForStudent, error)
}

// AnswerKeySource provides the authoritative question rows, correct tags
// included. Grading never trusts client-supplied question lists.
type AnswerKeySource interface {
	ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Question, error)
}

// ResultWriter appends completed-attempt records.
type ResultWriter interface {
	Create(ctx context.Context, res *model.Result) error
}

// AttemptService drives the exam-taking state machine: Idle → InProgress
// on start, InProgress → Idle on submission.
type AttemptService struct {
	papers   PaperSource
	key      AnswerKeySource
	results  ResultWriter
	attempts AttemptStore
	log      zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	papers PaperSource,
	key AnswerKeySource,
	results ResultWriter,
	attempts AttemptStore,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		papers:   papers,
		key:      key,
		results:  results,
		attempts: attempts,
		log:      log.With().Str("component", "attempt_service").Logger(),
	}
}

// Start opens an attempt on the given exam for the user. The question
// order is freshly shuffled on every call, so reopening reshuffles, and
// the stored attempt record is overwritten. Correct answers never appear
// in the returned paper.
func (s *AttemptService) Start(ctx context.Context, userID int, examID uuid.UUID) (*model.ExamPaper, error) {
	exam, err := s.papers.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, ErrExamNotFound) || errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}

	questions, err := s.papers.SanitizedQuestions(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	// Uniform shuffle of the presentation order. Grading joins by
	// question ID, so order never affects scores.
	shuffled := make([]model.QuestionForStudent, len(questions))
	copy(shuffled, questions)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	attempt := &model.ActiveAttempt{
		ExamID:            exam.ID,
		TimeBudgetSeconds: exam.TimeLimitMinutes * 60,
		StartedAt:         time.Now().UTC(),
	}
	if err := s.attempts.Put(ctx, userID, attempt); err != nil {
		return nil, fmt.Errorf("store attempt: %w", err)
	}

	s.log.Debug().
		Int("user_id", userID).
		Str("exam_id", exam.ID.String()).
		Int("questions", len(shuffled)).
		Msg("attempt started")

	return &model.ExamPaper{
		Exam:              *exam,
		Questions:         shuffled,
		TimeBudgetSeconds: attempt.TimeBudgetSeconds,
	}, nil
}

// Submit grades the caller's in-progress attempt and records the result.
// The attempt record is consumed atomically first, so a concurrent
// duplicate submission observes no attempt and fails with
// ErrNoActiveAttempt instead of writing a second result.
//
// Grading is joined by question ID against the questions belonging to the
// stored exam at grading time: extraneous keys in answers are ignored and
// missing keys count as unanswered. The elapsed time budget is advisory
// and is never checked here.
func (s *AttemptService) Submit(ctx context.Context, userID int, answers map[string]string) (*model.AttemptOutcome, error) {
	attempt, err := s.attempts.Take(ctx, userID)
	if err != nil {
		return nil, err
	}

	questions, err := s.key.ListByExam(ctx, attempt.ExamID)
	if err != nil {
		s.restore(ctx, userID, attempt)
		return nil, fmt.Errorf("load answer key: %w", err)
	}

	score := 0
	for _, q := range questions {
		if answers[q.ID.String()] == string(q.CorrectOption) {
			score++
		}
	}
	total := len(questions)

	res := &model.Result{
		UserID:         userID,
		ExamID:         attempt.ExamID,
		Score:          score,
		TotalQuestions: total,
		TakenAt:        time.Now().UTC(),
	}
	if err := s.results.Create(ctx, res); err != nil {
		s.restore(ctx, userID, attempt)
		return nil, fmt.Errorf("record result: %w", err)
	}

	s.log.Info().
		Int("user_id", userID).
		Str("exam_id", attempt.ExamID.String()).
		Int("score", score).
		Int("total", total).
		Msg("attempt graded")

	return &model.AttemptOutcome{
		ResultID:       res.ID,
		Score:          score,
		TotalQuestions: total,
		Percentage:     Percentage(score, total),
	}, nil
}

// State reports the caller's in-progress attempt with the advisory time
// remaining, or ErrNoActiveAttempt.
func (s *AttemptService) State(ctx context.Context, userID int) (*model.AttemptState, error) {
	attempt, err := s.attempts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.AttemptState{
		ExamID:            attempt.ExamID,
		TimeBudgetSeconds: attempt.TimeBudgetSeconds,
		RemainingSeconds:  attempt.RemainingSeconds(time.Now().UTC()),
		StartedAt:         attempt.StartedAt,
	}, nil
}

// Abandon discards the caller's attempt record, if any. Used on logout.
func (s *AttemptService) Abandon(ctx context.Context, userID int) error {
	return s.attempts.Clear(ctx, userID)
}

// restore puts a consumed attempt back so a failed submission can be
// retried. Best effort: the failure being handled is already the error
// the caller sees.
func (s *AttemptService) restore(ctx context.Context, userID int, attempt *model.ActiveAttempt) {
	if err := s.attempts.Put(ctx, userID, attempt); err != nil {
		s.log.Error().Err(err).Int("user_id", userID).Msg("failed to restore attempt")
	}
}

// Percentage converts a score/total pair to a percentage rounded to one
// decimal place. A zero-question exam yields 0, not a division fault.
func Percentage(score, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(score)/float64(total)*1000) / 10
}
