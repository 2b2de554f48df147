package professional

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const selectPriceColumns = `SELECT id, procedure_id, professional_id, amount, description FROM prices`

// SetPrice stores the price of a procedure, replacing the previous one for the
// same procedure and professional.
func (a *Accessor) SetPrice(ctx context.Context, p Price) (_ *Price, err error) {
	if err := p.Validate(); err != nil {
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

	query := `DELETE FROM prices WHERE procedure_id = $1 AND professional_id IS NOT DISTINCT FROM $2`
	if _, err = tx.ExecContext(ctx, query, p.ProcedureID, p.ProfessionalID); err != nil {
		return nil, fmt.Errorf("delete price: %w", err)
	}

	id := uuid.New()

	query = `INSERT INTO prices (id, procedure_id, professional_id, amount, description) VALUES ($1, $2, $3, $4, $5)`
	if _, err = tx.ExecContext(ctx, query, id, p.ProcedureID, p.ProfessionalID, p.Amount, p.Description); err != nil {
		return nil, fmt.Errorf("insert price: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &Price{
		ID:             id,
		ProcedureID:    p.ProcedureID,
		ProfessionalID: p.ProfessionalID,
		Amount:         p.Amount,
		Description:    p.Description,
	}, nil
}

// GetPrice resolves what the professional charges for the procedure: their own
// price when set, otherwise the clinic default. It returns nil when neither exists.
func (a *Accessor) GetPrice(ctx context.Context, procedureID, professionalID uuid.UUID) (*Price, error) {
	query := selectPriceColumns + ` WHERE procedure_id = $1 AND (professional_id = $2 OR professional_id IS NULL) ORDER BY professional_id NULLS LAST LIMIT 1`
	p, err := scanPrice(a.db.QueryRowContext(ctx, query, procedureID, professionalID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}
	return p, nil
}

// GetPrices lists every price of the procedure, the clinic default first.
func (a *Accessor) GetPrices(ctx context.Context, procedureID uuid.UUID) ([]Price, error) {
	rows, err := a.db.QueryContext(ctx, selectPriceColumns+` WHERE procedure_id = $1 ORDER BY professional_id NULLS FIRST`, procedureID)
	if err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	defer rows.Close()

	prices := []Price{}
	for rows.Next() {
		p, err := scanPrice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		prices = append(prices, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return prices, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPrice(s scanner) (*Price, error) {
	var p Price
	var professionalID uuid.NullUUID
	var description sql.NullString
	if err := s.Scan(&p.ID, &p.ProcedureID, &professionalID, &p.Amount, &description); err != nil {
		return nil, err
	}
	if professionalID.Valid {
		p.ProfessionalID = &professionalID.UUID
	}
	p.Description = description.String
	return &p, nil
}
