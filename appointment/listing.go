package appointment

import (
	"context"
	"fmt"
	"time"

	"clinic-scheduling/availability"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
)

var dialect = goqu.Dialect("postgres")

// Filter narrows ListAppointments. Zero fields are ignored. From and To select
// appointments that intersect [From, To).
type Filter struct {
	ProfessionalID *uuid.UUID
	ClientID       *uuid.UUID
	Status         availability.BookingStatus
	From           *time.Time
	To             *time.Time
	Limit          uint
	Offset         uint
}

func (a *Accessor) ListAppointments(ctx context.Context, filter Filter) ([]Appointment, error) {
	ds := dialect.Select(
		"id", "client_id", "professional_id", "procedure_id", "start_at",
		"end_at", "status", "price", "notes", "created_at",
	).From("appointments").Prepared(true)

	if filter.ProfessionalID != nil {
		ds = ds.Where(goqu.Ex{"professional_id": filter.ProfessionalID.String()})
	}

	if filter.ClientID != nil {
		ds = ds.Where(goqu.Ex{"client_id": filter.ClientID.String()})
	}

	if filter.Status != "" {
		ds = ds.Where(goqu.Ex{"status": string(filter.Status)})
	}

	if filter.From != nil {
		ds = ds.Where(goqu.C("end_at").Gt(*filter.From))
	}

	if filter.To != nil {
		ds = ds.Where(goqu.C("start_at").Lt(*filter.To))
	}

	ds = ds.Order(goqu.I("start_at").Asc())

	if filter.Limit > 0 {
		ds = ds.Limit(filter.Limit)
	}

	if filter.Offset > 0 {
		ds = ds.Offset(filter.Offset)
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	defer rows.Close()

	return collect(rows)
}
