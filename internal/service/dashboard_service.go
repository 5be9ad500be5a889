package service

import (
	"context"

	"github.com/examhall/examhall-backend/internal/model"
	"github.com/examhall/examhall-backend/internal/repository"
)

// recentResultCount bounds the dashboard's recent-results panel.
const recentResultCount = 10

// DashboardData consolidates all metrics for the admin dashboard.
type DashboardData struct {
	TotalStudents  int                       `json:"total_students"`
	TotalExams     int                       `json:"total_exams"`
	TotalQuestions int                       `json:"total_questions"`
	TotalAttempts  int                       `json:"total_attempts"`
	RecentResults  []model.ResultWithContext `json:"recent_results"`
}

// DashboardService handles admin dashboard business logic.
type DashboardService struct {
	repo       *repository.DashboardRepository
	resultRepo *repository.ResultRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(repo *repository.DashboardRepository, resultRepo *repository.ResultRepository) *DashboardService {
	return &DashboardService{repo: repo, resultRepo: resultRepo}
}

// GetDashboardData fetches summary counts and the most recent results.
func (s *DashboardService) GetDashboardData(ctx context.Context) (*DashboardData, error) {
	students, exams, questions, attempts, err := s.repo.GetSummaryCounts(ctx)
	if err != nil {
		return nil, err
	}

	recent, err := s.resultRepo.ListAll(ctx, recentResultCount)
	if err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []model.ResultWithContext{}
	}

	return &DashboardData{
		TotalStudents:  students,
		TotalExams:     exams,
		TotalQuestions: questions,
		TotalAttempts:  attempts,
		RecentResults:  recent,
	}, nil
}
