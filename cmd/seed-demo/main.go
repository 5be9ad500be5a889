package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/examhall/examhall-backend/internal/config"
	"github.com/examhall/examhall-backend/internal/database"
	"github.com/examhall/examhall-backend/internal/logger"
	"github.com/examhall/examhall-backend/internal/model"
	"github.com/examhall/examhall-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// seedAdmins are the demo admin accounts. Rotate these credentials before
// exposing a seeded instance anywhere public.
var seedAdmins = []struct {
	username string
	email    string
	password string
}{
	{"admin", "admin@example.com", "admin123"},
	{"superadmin", "superadmin@example.com", "super123"},
}

type seedQuestion struct {
	text    string
	a, b    string
	c, d    string
	correct model.AnswerTag
}

var pythonBasicsQuestions = []seedQuestion{
	{"What is Python?", "A snake", "A programming language", "A game", "A food", model.AnswerTagB},
	{"Which of the following is not a Python data type?", "List", "Dictionary", "Tuple", "Array", model.AnswerTagD},
	{"What is the output of print(2 + 2)?", "4", "22", "Error", "None", model.AnswerTagA},
	{"Which of these is used to define a function in Python?", "function", "def", "define", "func", model.AnswerTagB},
	{"What symbol is used for comments in Python?", "//", "#", "--", "/*", model.AnswerTagB},
}

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)

	// ─── Seed Admin Accounts ───────────────────────────────────────────
	for _, a := range seedAdmins {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.password), cfg.BcryptCost)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to hash password")
		}
		user := &model.User{
			Username:     a.username,
			Email:        a.email,
			PasswordHash: string(hash),
			Role:         model.RoleAdmin,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicateIdentity) {
				fmt.Printf("Admin '%s' already exists, skipping\n", a.username)
				continue
			}
			log.Fatal().Err(err).Str("username", a.username).Msg("Failed to seed admin")
		}
		fmt.Printf("Seeded admin '%s' (ID %d)\n", user.Username, user.ID)
	}

	// ─── Seed Sample Exam ──────────────────────────────────────────────
	exams, err := examRepo.List(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list exams")
	}
	for _, e := range exams {
		if e.Title == "Python Basics" {
			fmt.Println("Sample exam already exists, nothing to do")
			return
		}
	}

	exam := &model.Exam{
		Title:            "Python Basics",
		Description:      "Test your knowledge of Python fundamentals",
		TimeLimitMinutes: 10,
	}
	if err := examRepo.Create(ctx, exam); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed exam")
	}

	for _, q := range pythonBasicsQuestions {
		question := &model.Question{
			ExamID:        exam.ID,
			QuestionText:  q.text,
			OptionA:       q.a,
			OptionB:       q.b,
			OptionC:       q.c,
			OptionD:       q.d,
			CorrectOption: q.correct,
		}
		if err := questionRepo.Create(ctx, question); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed question")
		}
	}

	fmt.Printf("Seeded exam '%s' with %d questions (ID %s)\n", exam.Title, len(pythonBasicsQuestions), exam.ID)
}
