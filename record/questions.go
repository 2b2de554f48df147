package record

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func (a *Accessor) CreateQuestion(ctx context.Context, q Question, now time.Time) (*Question, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	id := uuid.New()

	query := `INSERT INTO record_questions (id, text, answer_type, active, created_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := a.db.ExecContext(ctx, query, id, q.Text, q.AnswerType, true, now); err != nil {
		return nil, fmt.Errorf("exec context: %w", err)
	}

	return &Question{
		ID:         id,
		Text:       q.Text,
		AnswerType: q.AnswerType,
		Active:     true,
		CreatedAt:  now,
	}, nil
}

// GetQuestions lists the intake form in the order the questions were created.
func (a *Accessor) GetQuestions(ctx context.Context, activeOnly bool) ([]Question, error) {
	query := `SELECT id, text, answer_type, active, created_at FROM record_questions ORDER BY created_at`
	if activeOnly {
		query = `SELECT id, text, answer_type, active, created_at FROM record_questions WHERE active ORDER BY created_at`
	}

	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	defer rows.Close()

	questions := []Question{}
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.Text, &q.AnswerType, &q.Active, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return questions, nil
}

// SetQuestionActive retires or restores a question. Answers already given are
// kept. It reports whether the question exists.
func (a *Accessor) SetQuestionActive(ctx context.Context, id uuid.UUID, active bool) (bool, error) {
	res, err := a.db.ExecContext(ctx, `UPDATE record_questions SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return false, fmt.Errorf("exec context: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
