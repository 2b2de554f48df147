package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func (a *Accessor) CreateClient(ctx context.Context, c Client, now time.Time) (*Client, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	id := uuid.New()
	cpf := c.NormalizedCPF()

	query := `INSERT INTO clients (id, full_name, cpf, email, phone, birth_date, active, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := a.db.ExecContext(ctx, query, id, c.FullName, cpf, c.Email, c.Phone, c.BirthDate, true, now); err != nil {
		return nil, fmt.Errorf("exec context: %w", err)
	}

	return &Client{
		ID:        id,
		FullName:  c.FullName,
		CPF:       cpf,
		Email:     c.Email,
		Phone:     c.Phone,
		BirthDate: c.BirthDate,
		Active:    true,
		CreatedAt: now,
	}, nil
}

func (a *Accessor) GetClients(ctx context.Context) ([]Client, error) {
	clients := []Client{}

	query := `SELECT id, full_name, cpf, email, phone, birth_date, active, created_at FROM clients ORDER BY full_name`
	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		clients = append(clients, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return clients, nil
}

func (a *Accessor) GetClient(ctx context.Context, id uuid.UUID) (*Client, error) {
	query := `SELECT id, full_name, cpf, email, phone, birth_date, active, created_at FROM clients WHERE id = $1`
	c, err := scanClient(a.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}
	return c, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanClient(row scanner) (*Client, error) {
	var (
		c         Client
		cpf       sql.NullString
		email     sql.NullString
		phone     sql.NullString
		birthDate sql.NullTime
	)
	if err := row.Scan(&c.ID, &c.FullName, &cpf, &email, &phone, &birthDate, &c.Active, &c.CreatedAt); err != nil {
		return nil, err
	}
	if cpf.Valid {
		c.CPF = &cpf.String
	}
	if birthDate.Valid {
		c.BirthDate = &birthDate.Time
	}
	c.Email = email.String
	c.Phone = phone.String
	return &c, nil
}
