package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"clinic-scheduling/availability"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	selectColumns = `SELECT id, client_id, professional_id, procedure_id, start_at, end_at, status, price, notes, created_at FROM appointments`

	// exclusion_violation, raised by the appointments_no_overlap constraint.
	pqExclusionViolation = "23P01"
)

// CreateAppointment books [Start, End) for the professional. The professional
// row is locked for the duration of the transaction so two concurrent bookings
// cannot both pass the conflict checks.
func (a *Accessor) CreateAppointment(ctx context.Context, appt Appointment, now time.Time) (_ *Appointment, err error) {
	if err := appt.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var locked uuid.UUID
	if err = tx.QueryRowContext(ctx, `SELECT id FROM professionals WHERE id = $1 FOR UPDATE`, appt.ProfessionalID).Scan(&locked); err != nil {
		return nil, fmt.Errorf("lock professional: %w", err)
	}

	var taken bool
	query := `SELECT EXISTS (SELECT 1 FROM appointments WHERE professional_id = $1 AND status = ANY($2) AND start_at < $4 AND end_at > $3)`
	if err = tx.QueryRowContext(ctx, query, appt.ProfessionalID, pq.Array(occupyingStatuses()), appt.Start, appt.End).Scan(&taken); err != nil {
		return nil, fmt.Errorf("check appointments: %w", err)
	}
	if taken {
		err = ErrSlotTaken
		return nil, err
	}

	var blocked bool
	query = `SELECT EXISTS (SELECT 1 FROM schedule_blocks WHERE (professional_id = $1 OR professional_id IS NULL) AND start_at < $3 AND end_at > $2)`
	if err = tx.QueryRowContext(ctx, query, appt.ProfessionalID, appt.Start, appt.End).Scan(&blocked); err != nil {
		return nil, fmt.Errorf("check blocks: %w", err)
	}
	if blocked {
		err = ErrSlotTaken
		return nil, err
	}

	id := uuid.New()

	query = `INSERT INTO appointments (id, client_id, professional_id, procedure_id, start_at, end_at, status, price, notes, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err = tx.ExecContext(ctx, query, id, appt.ClientID, appt.ProfessionalID, appt.ProcedureID, appt.Start, appt.End, availability.StatusScheduled, appt.Price, appt.Notes, now); err != nil {
		if isExclusionViolation(err) {
			err = ErrSlotTaken
			return nil, err
		}
		return nil, fmt.Errorf("exec context: %w", err)
	}

	if err = tx.Commit(); err != nil {
		if isExclusionViolation(err) {
			err = ErrSlotTaken
			return nil, err
		}
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &Appointment{
		ID:             id,
		ClientID:       appt.ClientID,
		ProfessionalID: appt.ProfessionalID,
		ProcedureID:    appt.ProcedureID,
		Start:          appt.Start,
		End:            appt.End,
		Status:         availability.StatusScheduled,
		Price:          appt.Price,
		Notes:          appt.Notes,
		CreatedAt:      now,
	}, nil
}

func (a *Accessor) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := a.db.QueryRowContext(ctx, selectColumns+` WHERE id = $1`, id)
	appt, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}
	return appt, nil
}

// UpdateStatus moves the appointment to status. It returns nil when the
// appointment does not exist and ErrInvalidTransition when the move is not allowed.
func (a *Accessor) UpdateStatus(ctx context.Context, id uuid.UUID, status availability.BookingStatus) (_ *Appointment, err error) {
	if !status.Valid() {
		return nil, fmt.Errorf("validate: unknown status %q", status)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	appt, err := scanAppointment(tx.QueryRowContext(ctx, selectColumns+` WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = tx.Rollback()
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}

	if !CanTransition(appt.Status, status) {
		err = fmt.Errorf("%w: %s to %s", ErrInvalidTransition, appt.Status, status)
		return nil, err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE appointments SET status = $1 WHERE id = $2`, status, id); err != nil {
		return nil, fmt.Errorf("exec context: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	appt.Status = status
	return appt, nil
}

// GetOccupyingAppointments returns the scheduled and confirmed appointments of
// the professional that intersect [from, to).
func (a *Accessor) GetOccupyingAppointments(ctx context.Context, professionalID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	query := selectColumns + ` WHERE professional_id = $1 AND status = ANY($2) AND start_at < $4 AND end_at > $3 ORDER BY start_at`
	rows, err := a.db.QueryContext(ctx, query, professionalID, pq.Array(occupyingStatuses()), from, to)
	if err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	defer rows.Close()

	return collect(rows)
}

// CompletePastAppointments marks every scheduled or confirmed appointment
// that ended at or before now as completed.
func (a *Accessor) CompletePastAppointments(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE appointments SET status = $1 WHERE status = ANY($2) AND end_at <= $3`
	res, err := a.db.ExecContext(ctx, query, availability.StatusCompleted, pq.Array(occupyingStatuses()), now)
	if err != nil {
		return 0, fmt.Errorf("exec context: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func isExclusionViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqExclusionViolation
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAppointment(s scanner) (*Appointment, error) {
	var appt Appointment
	var price sql.NullFloat64
	var notes sql.NullString
	if err := s.Scan(&appt.ID, &appt.ClientID, &appt.ProfessionalID, &appt.ProcedureID, &appt.Start, &appt.End, &appt.Status, &price, &notes, &appt.CreatedAt); err != nil {
		return nil, err
	}
	if price.Valid {
		appt.Price = &price.Float64
	}
	appt.Notes = notes.String
	return &appt, nil
}

func collect(rows *sql.Rows) ([]Appointment, error) {
	appointments := []Appointment{}
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		appointments = append(appointments, *appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return appointments, nil
}
