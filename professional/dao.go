package professional

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

func (a *Accessor) CreateProfessional(ctx context.Context, p Professional) (*Professional, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	id := uuid.New()

	query := `INSERT INTO professionals (id, name, specialty, active) VALUES ($1, $2, $3, $4)`
	if _, err := a.db.ExecContext(ctx, query, id, p.Name, p.Specialty, true); err != nil {
		return nil, fmt.Errorf("exec context: %w", err)
	}

	return &Professional{
		ID:        id,
		Name:      p.Name,
		Specialty: p.Specialty,
		Active:    true,
	}, nil
}

func (a *Accessor) GetProfessional(ctx context.Context, id uuid.UUID) (*Professional, error) {
	var p Professional
	var specialty sql.NullString

	query := `SELECT id, name, specialty, active FROM professionals WHERE id = $1`
	row := a.db.QueryRowContext(ctx, query, id)
	if err := row.Scan(&p.ID, &p.Name, &specialty, &p.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}
	p.Specialty = specialty.String

	return &p, nil
}

func (a *Accessor) GetProfessionals(ctx context.Context, activeOnly bool) ([]Professional, error) {
	query := `SELECT id, name, specialty, active FROM professionals ORDER BY name`
	if activeOnly {
		query = `SELECT id, name, specialty, active FROM professionals WHERE active ORDER BY name`
	}

	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	defer rows.Close()

	professionals := []Professional{}
	for rows.Next() {
		var p Professional
		var specialty sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &specialty, &p.Active); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		p.Specialty = specialty.String
		professionals = append(professionals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return professionals, nil
}
