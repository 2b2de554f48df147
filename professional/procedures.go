package professional

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

func (a *Accessor) CreateProcedure(ctx context.Context, p Procedure) (*Procedure, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	id := uuid.New()

	query := `INSERT INTO procedures (id, name, description, duration_minutes, active) VALUES ($1, $2, $3, $4, $5)`
	if _, err := a.db.ExecContext(ctx, query, id, p.Name, p.Description, p.DurationMinutes, true); err != nil {
		return nil, fmt.Errorf("exec context: %w", err)
	}

	return &Procedure{
		ID:              id,
		Name:            p.Name,
		Description:     p.Description,
		DurationMinutes: p.DurationMinutes,
		Active:          true,
	}, nil
}

func (a *Accessor) GetProcedure(ctx context.Context, id uuid.UUID) (*Procedure, error) {
	var p Procedure
	var description sql.NullString

	query := `SELECT id, name, description, duration_minutes, active FROM procedures WHERE id = $1`
	row := a.db.QueryRowContext(ctx, query, id)
	if err := row.Scan(&p.ID, &p.Name, &description, &p.DurationMinutes, &p.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}
	p.Description = description.String

	return &p, nil
}

// LinkProcedure records that the professional performs the procedure. Linking twice is a no-op.
func (a *Accessor) LinkProcedure(ctx context.Context, professionalID, procedureID uuid.UUID) error {
	query := `INSERT INTO professional_procedures (professional_id, procedure_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := a.db.ExecContext(ctx, query, professionalID, procedureID); err != nil {
		return fmt.Errorf("exec context: %w", err)
	}
	return nil
}

func (a *Accessor) OffersProcedure(ctx context.Context, professionalID, procedureID uuid.UUID) (bool, error) {
	var offered bool

	query := `SELECT EXISTS (SELECT 1 FROM professional_procedures WHERE professional_id = $1 AND procedure_id = $2)`
	if err := a.db.QueryRowContext(ctx, query, professionalID, procedureID).Scan(&offered); err != nil {
		return false, fmt.Errorf("scan: %w", err)
	}
	return offered, nil
}

// GetProceduresForProfessional lists the active procedures the professional performs.
func (a *Accessor) GetProceduresForProfessional(ctx context.Context, professionalID uuid.UUID) ([]Procedure, error) {
	query := `SELECT p.id, p.name, p.description, p.duration_minutes, p.active FROM procedures p JOIN professional_procedures pp ON pp.procedure_id = p.id WHERE pp.professional_id = $1 AND p.active ORDER BY p.name`
	rows, err := a.db.QueryContext(ctx, query, professionalID)
	if err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	defer rows.Close()

	procedures := []Procedure{}
	for rows.Next() {
		var p Procedure
		var description sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &description, &p.DurationMinutes, &p.Active); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		p.Description = description.String
		procedures = append(procedures, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return procedures, nil
}
