package service

import (
	"context"
	"errors"

	"github.com/examhall/examhall-backend/internal/model"
	"github.com/examhall/examhall-backend/internal/repository"
	"github.com/jackc/pgx/v5"
)

// ErrUserNotFound is returned when the requested account does not exist.
var ErrUserNotFound = errors.New("user not found")

// UserService handles account business logic.
type UserService struct {
	userRepo *repository.UserRepository
	auth     *AuthService
}

// NewUserService creates a new UserService.
func NewUserService(userRepo *repository.UserRepository, auth *AuthService) *UserService {
	return &UserService{userRepo: userRepo, auth: auth}
}

// Register creates a student account. Duplicate username/email surfaces
// as repository.ErrDuplicateIdentity from the unique-constraint check.
// Role is always student here; admins are seeded, never self-assigned.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleStudent,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int) (*model.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetByUsername retrieves a user by username.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}

// ListStudents retrieves all student accounts.
func (s *UserService) ListStudents(ctx context.Context) ([]model.User, error) {
	students, err := s.userRepo.ListStudents(ctx)
	if err != nil {
		return nil, err
	}
	if students == nil {
		students = []model.User{}
	}
	return students, nil
}

// DeleteStudent removes a student account; the FK cascade removes the
// student's results. Non-student accounts are refused by the repository.
func (s *UserService) DeleteStudent(ctx context.Context, id int) error {
	if err := s.userRepo.DeleteStudent(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
