package professional

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"clinic-scheduling/availability"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// SetWeeklyAvailability replaces the professional's whole week. Days missing
// from week become days off.
func (a *Accessor) SetWeeklyAvailability(ctx context.Context, professionalID uuid.UUID, week []availability.WeeklyAvailability) (err error) {
	if err := ValidateWeek(week); err != nil {
		return fmt.Errorf("validate: %w", err)
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

	if _, err = tx.ExecContext(ctx, `DELETE FROM professional_availability WHERE professional_id = $1`, professionalID); err != nil {
		return fmt.Errorf("delete availability: %w", err)
	}

	if len(week) > 0 {
		days := make([]int64, len(week))
		starts := make([]string, len(week))
		ends := make([]string, len(week))
		for i, w := range week {
			days[i] = int64(w.DayOfWeek)
			starts[i] = w.StartTime.String()
			ends[i] = w.EndTime.String()
		}

		query := `INSERT INTO professional_availability (professional_id, day_of_week, start_time, end_time) SELECT $1, unnest($2::smallint[]), unnest($3::time[]), unnest($4::time[])`
		if _, err = tx.ExecContext(ctx, query, professionalID, pq.Array(days), pq.Array(starts), pq.Array(ends)); err != nil {
			return fmt.Errorf("insert availability: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (a *Accessor) GetWeeklyAvailability(ctx context.Context, professionalID uuid.UUID) ([]availability.WeeklyAvailability, error) {
	query := `SELECT day_of_week, start_time, end_time FROM professional_availability WHERE professional_id = $1 ORDER BY day_of_week`
	rows, err := a.db.QueryContext(ctx, query, professionalID)
	if err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	defer rows.Close()

	week := []availability.WeeklyAvailability{}
	for rows.Next() {
		var w availability.WeeklyAvailability
		if err := rows.Scan(&w.DayOfWeek, &w.StartTime, &w.EndTime); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		week = append(week, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return week, nil
}

// GetAvailabilityForDay returns nil when the professional does not work on day.
func (a *Accessor) GetAvailabilityForDay(ctx context.Context, professionalID uuid.UUID, day availability.DayOfWeek) (*availability.WeeklyAvailability, error) {
	w := availability.WeeklyAvailability{DayOfWeek: day}

	query := `SELECT start_time, end_time FROM professional_availability WHERE professional_id = $1 AND day_of_week = $2`
	row := a.db.QueryRowContext(ctx, query, professionalID, int(day))
	if err := row.Scan(&w.StartTime, &w.EndTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}

	return &w, nil
}
