package repository

import (
	"context"

	"github.com/examhall/examhall-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResultRepository handles completed-attempt records. Results are
// append-only except for admin deletion.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Create appends a result record.
func (r *ResultRepository) Create(ctx context.Context, res *model.Result) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO results (user_id, exam_id, score, total_questions, taken_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		res.UserID, res.ExamID, res.Score, res.TotalQuestions, res.TakenAt,
	).Scan(&res.ID)
}

// ListByUser retrieves one user's results, newest first, joined with the
// exam title for display.
func (r *ResultRepository) ListByUser(ctx context.Context, userID int) ([]model.ResultWithExam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.user_id, r.exam_id, r.score, r.total_questions, r.taken_at, e.title
		 FROM results r
		 JOIN exams e ON r.exam_id = e.id
		 WHERE r.user_id = $1
		 ORDER BY r.taken_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.ResultWithExam
	for rows.Next() {
		var res model.ResultWithExam
		if err := rows.Scan(&res.ID, &res.UserID, &res.ExamID, &res.Score, &res.TotalQuestions, &res.TakenAt, &res.ExamTitle); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// ListAll retrieves results across all users, newest first, joined with
// username and exam title. limit <= 0 means no limit.
func (r *ResultRepository) ListAll(ctx context.Context, limit int) ([]model.ResultWithContext, error) {
	query := `SELECT r.id, r.user_id, r.exam_id, r.score, r.total_questions, r.taken_at, u.username, e.title
	          FROM results r
	          JOIN users u ON r.user_id = u.id
	          JOIN exams e ON r.exam_id = e.id
	          ORDER BY r.taken_at DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.ResultWithContext
	for rows.Next() {
		var res model.ResultWithContext
		if err := rows.Scan(&res.ID, &res.UserID, &res.ExamID, &res.Score, &res.TotalQuestions, &res.TakenAt, &res.Username, &res.ExamTitle); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// Delete removes a result record by ID.
func (r *ResultRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM results WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
