package service

import (
	"context"
	"errors"

	"github.com/examhall/examhall-backend/internal/model"
	"github.com/examhall/examhall-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrResultNotFound is returned when the requested result does not exist.
var ErrResultNotFound = errors.New("result not found")

// ResultService handles result ledger business logic.
type ResultService struct {
	resultRepo *repository.ResultRepository
}

// NewResultService creates a new ResultService.
func NewResultService(resultRepo *repository.ResultRepository) *ResultService {
	return &ResultService{resultRepo: resultRepo}
}

// ListForUser retrieves one user's results, newest first. The user ID
// always comes from the authenticated session, never from the request.
func (s *ResultService) ListForUser(ctx context.Context, userID int) ([]model.ResultWithExam, error) {
	results, err := s.resultRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []model.ResultWithExam{}
	}
	return results, nil
}

// ListAll retrieves results across all users, newest first. limit <= 0
// lists everything.
func (s *ResultService) ListAll(ctx context.Context, limit int) ([]model.ResultWithContext, error) {
	results, err := s.resultRepo.ListAll(ctx, limit)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []model.ResultWithContext{}
	}
	return results, nil
}

// Delete removes a result record. Admin-only, unconditional.
func (s *ResultService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.resultRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrResultNotFound
		}
		return err
	}
	return nil
}
