package block

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const selectColumns = `SELECT id, professional_id, start_at, end_at, reason, created_at FROM schedule_blocks`

func (a *Accessor) CreateBlock(ctx context.Context, b Block, now time.Time) (*Block, error) {
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	id := uuid.New()

	query := `INSERT INTO schedule_blocks (id, professional_id, start_at, end_at, reason, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := a.db.ExecContext(ctx, query, id, b.ProfessionalID, b.Start, b.End, b.Reason, now); err != nil {
		return nil, fmt.Errorf("exec context: %w", err)
	}

	return &Block{
		ID:             id,
		ProfessionalID: b.ProfessionalID,
		Start:          b.Start,
		End:            b.End,
		Reason:         b.Reason,
		CreatedAt:      now,
	}, nil
}

func (a *Accessor) GetBlock(ctx context.Context, id uuid.UUID) (*Block, error) {
	row := a.db.QueryRowContext(ctx, selectColumns+` WHERE id = $1`, id)
	b, err := scanBlock(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}
	return b, nil
}

// DeleteBlock reports whether a block was removed.
func (a *Accessor) DeleteBlock(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := a.db.ExecContext(ctx, `DELETE FROM schedule_blocks WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("exec context: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// GetBlocksOverlapping returns the professional's blocks and the clinic-wide
// blocks that intersect [from, to).
func (a *Accessor) GetBlocksOverlapping(ctx context.Context, professionalID uuid.UUID, from, to time.Time) ([]Block, error) {
	query := selectColumns + ` WHERE (professional_id = $1 OR professional_id IS NULL) AND start_at < $3 AND end_at > $2 ORDER BY start_at`
	rows, err := a.db.QueryContext(ctx, query, professionalID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	defer rows.Close()

	blocks := []Block{}
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		blocks = append(blocks, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return blocks, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBlock(s scanner) (*Block, error) {
	var b Block
	var professionalID uuid.NullUUID
	var reason sql.NullString
	if err := s.Scan(&b.ID, &professionalID, &b.Start, &b.End, &reason, &b.CreatedAt); err != nil {
		return nil, err
	}
	if professionalID.Valid {
		id := professionalID.UUID
		b.ProfessionalID = &id
	}
	b.Reason = reason.String
	return &b, nil
}
