package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/examhall/examhall-backend/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ─── Fakes ──────────────────────────────────────────────────────────

type fakePaperSource struct {
	exams     map[uuid.UUID]*model.Exam
	questions map[uuid.UUID][]model.Question
}

func (f *fakePaperSource) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	exam, ok := f.exams[id]
	if !ok {
		return nil, ErrExamNotFound
	}
	return exam, nil
}

func (f *fakePaperSource) SanitizedQuestions(_ context.Context, examID uuid.UUID) ([]model.QuestionForStudent, error) {
	sanitized := make([]model.QuestionForStudent, 0, len(f.questions[examID]))
	for _, q := range f.questions[examID] {
		sanitized = append(sanitized, q.Sanitize())
	}
	return sanitized, nil
}

func (f *fakePaperSource) ListByExam(_ context.Context, examID uuid.UUID) ([]model.Question, error) {
	return f.questions[examID], nil
}

type fakeResultWriter struct {
	mu      sync.Mutex
	results []*model.Result
	fail    error
}

func (f *fakeResultWriter) Create(_ context.Context, res *model.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	res.ID = uuid.New()
	f.results = append(f.results, res)
	return nil
}

// memoryAttemptStore mirrors the Redis store's Take atomicity with a mutex.
type memoryAttemptStore struct {
	mu       sync.Mutex
	attempts map[int]*model.ActiveAttempt
}

func newMemoryAttemptStore() *memoryAttemptStore {
	return &memoryAttemptStore{attempts: make(map[int]*model.ActiveAttempt)}
}

func (s *memoryAttemptStore) Put(_ context.Context, userID int, attempt *model.ActiveAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[userID] = attempt
	return nil
}

func (s *memoryAttemptStore) Get(_ context.Context, userID int) (*model.ActiveAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt, ok := s.attempts[userID]
	if !ok {
		return nil, ErrNoActiveAttempt
	}
	return attempt, nil
}

func (s *memoryAttemptStore) Take(_ context.Context, userID int) (*model.ActiveAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt, ok := s.attempts[userID]
	if !ok {
		return nil, ErrNoActiveAttempt
	}
	delete(s.attempts, userID)
	return attempt, nil
}

func (s *memoryAttemptStore) Clear(_ context.Context, userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, userID)
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────

func buildExam(title string, timeLimit int, correct []model.AnswerTag) (*model.Exam, []model.Question) {
	exam := &model.Exam{
		ID:               uuid.New(),
		Title:            title,
		TimeLimitMinutes: timeLimit,
	}
	questions := make([]model.Question, 0, len(correct))
	for i, tag := range correct {
		questions = append(questions, model.Question{
			ID:            uuid.New(),
			ExamID:        exam.ID,
			QuestionText:  "q",
			OptionA:       "a",
			OptionB:       "b",
			OptionC:       "c",
			OptionD:       "d",
			CorrectOption: tag,
			Position:      i + 1,
		})
	}
	return exam, questions
}

func newTestService(exam *model.Exam, questions []model.Question) (*AttemptService, *fakePaperSource, *fakeResultWriter, *memoryAttemptStore) {
	papers := &fakePaperSource{
		exams:     map[uuid.UUID]*model.Exam{exam.ID: exam},
		questions: map[uuid.UUID][]model.Question{exam.ID: questions},
	}
	results := &fakeResultWriter{}
	store := newMemoryAttemptStore()
	svc := NewAttemptService(papers, papers, results, store, zerolog.Nop())
	return svc, papers, results, store
}

// ─── Tests ──────────────────────────────────────────────────────────

func TestStartUnknownExam(t *testing.T) {
	exam, questions := buildExam("Algebra", 30, []model.AnswerTag{model.AnswerTagA})
	svc, _, _, _ := newTestService(exam, questions)

	_, err := svc.Start(context.Background(), 1, uuid.New())
	if !errors.Is(err, ErrExamNotFound) {
		t.Fatalf("expected ErrExamNotFound, got %v", err)
	}
}

func TestStartStripsCorrectAnswers(t *testing.T) {
	exam, questions := buildExam("Algebra", 30, []model.AnswerTag{
		model.AnswerTagB, model.AnswerTagD, model.AnswerTagA,
	})
	svc, _, _, _ := newTestService(exam, questions)

	paper, err := svc.Start(context.Background(), 1, exam.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(paper.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(paper.Questions))
	}
	if paper.TimeBudgetSeconds != 30*60 {
		t.Errorf("expected budget %d, got %d", 30*60, paper.TimeBudgetSeconds)
	}
	// The sanitized shape has no correct tag at the type level; check the
	// IDs line up with the catalog regardless of order.
	known := make(map[uuid.UUID]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}
	for _, q := range paper.Questions {
		if !known[q.ID] {
			t.Errorf("paper contains unknown question %s", q.ID)
		}
	}
}

func TestSubmitAllCorrect(t *testing.T) {
	correct := []model.AnswerTag{
		model.AnswerTagB, model.AnswerTagD, model.AnswerTagA, model.AnswerTagB, model.AnswerTagB,
	}
	exam, questions := buildExam("Python Basics", 10, correct)
	svc, _, results, _ := newTestService(exam, questions)
	ctx := context.Background()

	if _, err := svc.Start(ctx, 7, exam.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	answers := make(map[string]string, len(questions))
	for _, q := range questions {
		answers[q.ID.String()] = string(q.CorrectOption)
	}

	outcome, err := svc.Submit(ctx, 7, answers)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Score != 5 || outcome.TotalQuestions != 5 {
		t.Errorf("expected 5/5, got %d/%d", outcome.Score, outcome.TotalQuestions)
	}
	if outcome.Percentage != 100.0 {
		t.Errorf("expected 100.0, got %v", outcome.Percentage)
	}
	if len(results.results) != 1 {
		t.Fatalf("expected 1 persisted result, got %d", len(results.results))
	}
	if results.results[0].UserID != 7 {
		t.Errorf("result recorded for user %d, want 7", results.results[0].UserID)
	}
}

func TestSubmitPartialScore(t *testing.T) {
	correct := []model.AnswerTag{
		model.AnswerTagB, model.AnswerTagD, model.AnswerTagA, model.AnswerTagB, model.AnswerTagB,
	}
	exam, questions := buildExam("Python Basics", 10, correct)
	svc, _, _, _ := newTestService(exam, questions)
	ctx := context.Background()

	if _, err := svc.Start(ctx, 1, exam.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	// First two right, third wrong, fourth unanswered, fifth right.
	answers := map[string]string{
		questions[0].ID.String(): "B",
		questions[1].ID.String(): "D",
		questions[2].ID.String(): "C",
		questions[4].ID.String(): "B",
	}

	outcome, err := svc.Submit(ctx, 1, answers)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Score != 3 || outcome.TotalQuestions != 5 {
		t.Errorf("expected 3/5, got %d/%d", outcome.Score, outcome.TotalQuestions)
	}
	if outcome.Percentage != 60.0 {
		t.Errorf("expected 60.0, got %v", outcome.Percentage)
	}
}

func TestSubmitIgnoresExtraneousKeys(t *testing.T) {
	exam, questions := buildExam("Algebra", 30, []model.AnswerTag{model.AnswerTagA})
	svc, _, _, _ := newTestService(exam, questions)
	ctx := context.Background()

	if _, err := svc.Start(ctx, 1, exam.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	answers := map[string]string{
		questions[0].ID.String(): "A",
		uuid.New().String():      "B",
		"not-even-a-uuid":        "C",
	}

	outcome, err := svc.Submit(ctx, 1, answers)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Score != 1 || outcome.TotalQuestions != 1 {
		t.Errorf("expected 1/1, got %d/%d", outcome.Score, outcome.TotalQuestions)
	}
}

func TestSubmitEmptyAnswers(t *testing.T) {
	exam, questions := buildExam("Algebra", 30, []model.AnswerTag{
		model.AnswerTagA, model.AnswerTagB,
	})
	svc, _, _, _ := newTestService(exam, questions)
	ctx := context.Background()

	if _, err := svc.Start(ctx, 1, exam.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	outcome, err := svc.Submit(ctx, 1, map[string]string{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Score != 0 || outcome.TotalQuestions != 2 {
		t.Errorf("expected 0/2, got %d/%d", outcome.Score, outcome.TotalQuestions)
	}
	if outcome.Percentage != 0.0 {
		t.Errorf("expected 0.0, got %v", outcome.Percentage)
	}
}

func TestSubmitZeroQuestionExam(t *testing.T) {
	exam, questions := buildExam("Empty", 5, nil)
	svc, _, _, _ := newTestService(exam, questions)
	ctx := context.Background()

	if _, err := svc.Start(ctx, 1, exam.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	outcome, err := svc.Submit(ctx, 1, map[string]string{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Score != 0 || outcome.TotalQuestions != 0 {
		t.Errorf("expected 0/0, got %d/%d", outcome.Score, outcome.TotalQuestions)
	}
	if outcome.Percentage != 0.0 {
		t.Errorf("expected 0.0 for zero-question exam, got %v", outcome.Percentage)
	}
}

func TestSubmitWithoutAttempt(t *testing.T) {
	exam, questions := buildExam("Algebra", 30, []model.AnswerTag{model.AnswerTagA})
	svc, _, _, _ := newTestService(exam, questions)

	_, err := svc.Submit(context.Background(), 1, map[string]string{})
	if !errors.Is(err, ErrNoActiveAttempt) {
		t.Fatalf("expected ErrNoActiveAttempt, got %v", err)
	}
}

func TestSubmitConsumesAttempt(t *testing.T) {
	exam, questions := buildExam("Algebra", 30, []model.AnswerTag{model.AnswerTagA})
	svc, _, results, _ := newTestService(exam, questions)
	ctx := context.Background()

	if _, err := svc.Start(ctx, 1, exam.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.Submit(ctx, 1, map[string]string{}); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	// The second submission must observe no attempt, not a second result.
	_, err := svc.Submit(ctx, 1, map[string]string{})
	if !errors.Is(err, ErrNoActiveAttempt) {
		t.Fatalf("expected ErrNoActiveAttempt on resubmit, got %v", err)
	}
	if len(results.results) != 1 {
		t.Errorf("expected exactly 1 result, got %d", len(results.results))
	}
}

func TestConcurrentSubmitWritesOneResult(t *testing.T) {
	exam, questions := buildExam("Algebra", 30, []model.AnswerTag{model.AnswerTagA})
	svc, _, results, _ := newTestService(exam, questions)
	ctx := context.Background()

	if _, err := svc.Start(ctx, 1, exam.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	const submitters = 8
	var wg sync.WaitGroup
	errs := make(chan error, submitters)
	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Submit(ctx, 1, map[string]string{})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, ErrNoActiveAttempt) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("expected exactly 1 successful submit, got %d", succeeded)
	}
	if len(results.results) != 1 {
		t.Errorf("expected exactly 1 persisted result, got %d", len(results.results))
	}
}

func TestSubmitRestoresAttemptOnPersistFailure(t *testing.T) {
	exam, questions := buildExam("Algebra", 30, []model.AnswerTag{model.AnswerTagA})
	svc, _, results, store := newTestService(exam, questions)
	ctx := context.Background()

	if _, err := svc.Start(ctx, 1, exam.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	results.fail = errors.New("db down")
	if _, err := svc.Submit(ctx, 1, map[string]string{}); err == nil {
		t.Fatal("expected submit to fail")
	}

	// The attempt must be retryable after the failure.
	if _, err := store.Get(ctx, 1); err != nil {
		t.Fatalf("attempt not restored: %v", err)
	}
	results.fail = nil
	if _, err := svc.Submit(ctx, 1, map[string]string{}); err != nil {
		t.Fatalf("retry submit: %v", err)
	}
}

func TestReopenOverwritesAttempt(t *testing.T) {
	examA, questionsA := buildExam("Algebra", 30, []model.AnswerTag{model.AnswerTagA})
	examB, questionsB := buildExam("Biology", 15, []model.AnswerTag{model.AnswerTagC})
	svc, papers, _, store := newTestService(examA, questionsA)
	papers.exams[examB.ID] = examB
	papers.questions[examB.ID] = questionsB
	ctx := context.Background()

	if _, err := svc.Start(ctx, 1, examA.ID); err != nil {
		t.Fatalf("start A: %v", err)
	}
	if _, err := svc.Start(ctx, 1, examB.ID); err != nil {
		t.Fatalf("start B: %v", err)
	}

	attempt, err := store.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get attempt: %v", err)
	}
	if attempt.ExamID != examB.ID {
		t.Errorf("attempt tracks exam %s, want %s", attempt.ExamID, examB.ID)
	}
	if attempt.TimeBudgetSeconds != 15*60 {
		t.Errorf("budget %d, want %d", attempt.TimeBudgetSeconds, 15*60)
	}
}

func TestGradingUsesQuestionSetAtSubmission(t *testing.T) {
	exam, questions := buildExam("Algebra", 30, []model.AnswerTag{model.AnswerTagA})
	svc, papers, _, _ := newTestService(exam, questions)
	ctx := context.Background()

	if _, err := svc.Start(ctx, 1, exam.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	// A question added mid-attempt counts against the total at grading.
	extra := model.Question{
		ID:            uuid.New(),
		ExamID:        exam.ID,
		CorrectOption: model.AnswerTagD,
		Position:      2,
	}
	papers.questions[exam.ID] = append(papers.questions[exam.ID], extra)

	outcome, err := svc.Submit(ctx, 1, map[string]string{
		questions[0].ID.String(): "A",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Score != 1 || outcome.TotalQuestions != 2 {
		t.Errorf("expected 1/2, got %d/%d", outcome.Score, outcome.TotalQuestions)
	}
}

func TestStateReportsRemainingTime(t *testing.T) {
	exam, questions := buildExam("Algebra", 30, []model.AnswerTag{model.AnswerTagA})
	svc, _, _, _ := newTestService(exam, questions)
	ctx := context.Background()

	if _, err := svc.Start(ctx, 1, exam.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	state, err := svc.State(ctx, 1)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.ExamID != exam.ID {
		t.Errorf("state tracks exam %s, want %s", state.ExamID, exam.ID)
	}
	if state.RemainingSeconds <= 0 || state.RemainingSeconds > 30*60 {
		t.Errorf("remaining %d out of range", state.RemainingSeconds)
	}
}

func TestStateWithoutAttempt(t *testing.T) {
	exam, questions := buildExam("Algebra", 30, []model.AnswerTag{model.AnswerTagA})
	svc, _, _, _ := newTestService(exam, questions)

	_, err := svc.State(context.Background(), 1)
	if !errors.Is(err, ErrNoActiveAttempt) {
		t.Fatalf("expected ErrNoActiveAttempt, got %v", err)
	}
}

func TestSubmitAcceptedAfterBudgetElapsed(t *testing.T) {
	exam, questions := buildExam("Algebra", 1, []model.AnswerTag{model.AnswerTagA})
	svc, _, _, store := newTestService(exam, questions)
	ctx := context.Background()

	if _, err := svc.Start(ctx, 1, exam.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Backdate the attempt well past its budget. The deadline is advisory,
	// so grading still proceeds.
	attempt, _ := store.Get(ctx, 1)
	attempt.StartedAt = time.Now().UTC().Add(-time.Hour)
	store.Put(ctx, 1, attempt)

	outcome, err := svc.Submit(ctx, 1, map[string]string{
		questions[0].ID.String(): "A",
	})
	if err != nil {
		t.Fatalf("submit after deadline: %v", err)
	}
	if outcome.Score != 1 {
		t.Errorf("expected score 1, got %d", outcome.Score)
	}
}

func TestAbandonClearsAttempt(t *testing.T) {
	exam, questions := buildExam("Algebra", 30, []model.AnswerTag{model.AnswerTagA})
	svc, _, _, _ := newTestService(exam, questions)
	ctx := context.Background()

	if _, err := svc.Start(ctx, 1, exam.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := svc.Abandon(ctx, 1); err != nil {
		t.Fatalf("abandon: %v", err)
	}
	if _, err := svc.State(ctx, 1); !errors.Is(err, ErrNoActiveAttempt) {
		t.Fatalf("expected ErrNoActiveAttempt after abandon, got %v", err)
	}
}

func TestPercentage(t *testing.T) {
	cases := []struct {
		score, total int
		want         float64
	}{
		{0, 0, 0},
		{0, 5, 0},
		{5, 5, 100},
		{3, 5, 60},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{1, 7, 14.3},
	}
	for _, tc := range cases {
		if got := Percentage(tc.score, tc.total); got != tc.want {
			t.Errorf("Percentage(%d, %d) = %v, want %v", tc.score, tc.total, got, tc.want)
		}
	}
}
