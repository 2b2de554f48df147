package record

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// unique_violation, raised by the one-consent-per-appointment constraint.
const pqUniqueViolation = "23505"

// SignConsent records the signed term of an appointment. An appointment is
// signed at most once; a second signature returns ErrAlreadySigned.
func (a *Accessor) SignConsent(ctx context.Context, c Consent, now time.Time) (*Consent, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	id := uuid.New()

	query := `INSERT INTO consent_terms (id, appointment_id, signed_by, signer_ip, signed_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := a.db.ExecContext(ctx, query, id, c.AppointmentID, c.SignedBy, c.SignerIP, now); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return nil, ErrAlreadySigned
		}
		return nil, fmt.Errorf("exec context: %w", err)
	}

	return &Consent{
		ID:            id,
		AppointmentID: c.AppointmentID,
		SignedBy:      c.SignedBy,
		SignerIP:      c.SignerIP,
		SignedAt:      now,
	}, nil
}

func (a *Accessor) GetConsent(ctx context.Context, appointmentID uuid.UUID) (*Consent, error) {
	var c Consent
	var signerIP sql.NullString
	query := `SELECT id, appointment_id, signed_by, signer_ip, signed_at FROM consent_terms WHERE appointment_id = $1`
	row := a.db.QueryRowContext(ctx, query, appointmentID)
	if err := row.Scan(&c.ID, &c.AppointmentID, &c.SignedBy, &signerIP, &c.SignedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}
	c.SignerIP = signerIP.String
	return &c, nil
}
