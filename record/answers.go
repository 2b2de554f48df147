package record

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// SaveAnswers replaces the answers given at the appointment. Every answer must
// target an active question and carry the value its type asks for.
func (a *Accessor) SaveAnswers(ctx context.Context, appointmentID uuid.UUID, answers []Answer) (err error) {
	ids := make([]string, 0, len(answers))
	seen := make(map[uuid.UUID]bool, len(answers))
	for _, answer := range answers {
		if seen[answer.QuestionID] {
			return fmt.Errorf("%w for question %s", ErrDuplicateAnswer, answer.QuestionID)
		}
		seen[answer.QuestionID] = true
		ids = append(ids, answer.QuestionID.String())
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if len(answers) > 0 {
		types, err := activeQuestionTypes(ctx, tx, ids)
		if err != nil {
			return err
		}
		for _, answer := range answers {
			t, ok := types[answer.QuestionID]
			if !ok {
				return fmt.Errorf("%w: %s", ErrUnknownQuestion, answer.QuestionID)
			}
			if !answer.matches(t) {
				return fmt.Errorf("%w: %s expects %s", ErrAnswerType, answer.QuestionID, t)
			}
		}
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM record_answers WHERE appointment_id = $1`, appointmentID); err != nil {
		return fmt.Errorf("delete answers: %w", err)
	}

	query := `INSERT INTO record_answers (appointment_id, question_id, answer_text, answer_boolean) VALUES ($1, $2, $3, $4)`
	for _, answer := range answers {
		if _, err = tx.ExecContext(ctx, query, appointmentID, answer.QuestionID, answer.Text, answer.Boolean); err != nil {
			return fmt.Errorf("insert answer: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func activeQuestionTypes(ctx context.Context, tx *sql.Tx, ids []string) (map[uuid.UUID]AnswerType, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, answer_type FROM record_questions WHERE id = ANY($1) AND active`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	types := make(map[uuid.UUID]AnswerType, len(ids))
	for rows.Next() {
		var id uuid.UUID
		var t AnswerType
		if err := rows.Scan(&id, &t); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		types[id] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return types, nil
}

func (a *Accessor) GetAnswers(ctx context.Context, appointmentID uuid.UUID) ([]Answer, error) {
	query := `SELECT ra.question_id, ra.answer_text, ra.answer_boolean FROM record_answers ra JOIN record_questions q ON q.id = ra.question_id WHERE ra.appointment_id = $1 ORDER BY q.created_at`
	rows, err := a.db.QueryContext(ctx, query, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	defer rows.Close()

	answers := []Answer{}
	for rows.Next() {
		var answer Answer
		var text sql.NullString
		var boolean sql.NullBool
		if err := rows.Scan(&answer.QuestionID, &text, &boolean); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		answer.Text, answer.Boolean = nullable(text, boolean)
		answers = append(answers, answer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return answers, nil
}

// GetClientRecord is the client's clinical record: every answer given at any
// of their appointments, oldest appointment first.
func (a *Accessor) GetClientRecord(ctx context.Context, clientID uuid.UUID) ([]Entry, error) {
	query := `SELECT ra.appointment_id, ap.start_at, ra.question_id, q.text, ra.answer_text, ra.answer_boolean FROM record_answers ra JOIN appointments ap ON ap.id = ra.appointment_id JOIN record_questions q ON q.id = ra.question_id WHERE ap.client_id = $1 ORDER BY ap.start_at, q.created_at`
	rows, err := a.db.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var text sql.NullString
		var boolean sql.NullBool
		if err := rows.Scan(&e.AppointmentID, &e.AppointmentStart, &e.QuestionID, &e.Question, &text, &boolean); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		e.Text, e.Boolean = nullable(text, boolean)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return entries, nil
}

func nullable(text sql.NullString, boolean sql.NullBool) (*string, *bool) {
	var s *string
	var b *bool
	if text.Valid {
		s = &text.String
	}
	if boolean.Valid {
		b = &boolean.Bool
	}
	return s, b
}
