package appointment

import (
	"errors"
	"slices"
	"time"

	"clinic-scheduling/availability"

	"github.com/google/uuid"
)

var (
	ErrSlotTaken           = errors.New("time slot is no longer available")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrProcedureNotOffered = errors.New("procedure is not offered by the professional")
)

type Appointment struct {
	ID             uuid.UUID                  `json:"id"`
	ClientID       uuid.UUID                  `json:"client_id"`
	ProfessionalID uuid.UUID                  `json:"professional_id"`
	ProcedureID    uuid.UUID                  `json:"procedure_id"`
	Start          time.Time                  `json:"start"`
	End            time.Time                  `json:"end"`
	Status         availability.BookingStatus `json:"status"`
	Price          *float64                   `json:"price,omitempty"`
	Notes          string                     `json:"notes,omitempty"`
	CreatedAt      time.Time                  `json:"created_at"`
}

func (a *Appointment) Validate() error {
	if a.ClientID == uuid.Nil {
		return errors.New("client id is required")
	}
	if a.ProfessionalID == uuid.Nil {
		return errors.New("professional id is required")
	}
	if a.ProcedureID == uuid.Nil {
		return errors.New("procedure id is required")
	}
	if a.Start.IsZero() || a.End.IsZero() {
		return errors.New("start and end are required")
	}
	if !a.Start.Before(a.End) {
		return errors.New("start must be before end")
	}
	if a.Price != nil && *a.Price < 0 {
		return errors.New("price must not be negative")
	}
	return nil
}

func (a *Appointment) Booking() availability.Booking {
	return availability.Booking{Start: a.Start, End: a.End, Status: a.Status}
}

func Bookings(appointments []Appointment) []availability.Booking {
	out := make([]availability.Booking, 0, len(appointments))
	for _, a := range appointments {
		out = append(out, a.Booking())
	}
	return out
}

var transitions = map[availability.BookingStatus][]availability.BookingStatus{
	availability.StatusScheduled: {availability.StatusConfirmed, availability.StatusCancelled, availability.StatusCompleted},
	availability.StatusConfirmed: {availability.StatusCancelled, availability.StatusCompleted},
}

// CanTransition reports whether an appointment in status from may move to to.
// Completed and cancelled appointments are final.
func CanTransition(from, to availability.BookingStatus) bool {
	return slices.Contains(transitions[from], to)
}

func occupyingStatuses() []string {
	out := make([]string, 0, len(availability.OccupyingStatuses))
	for _, s := range availability.OccupyingStatuses {
		out = append(out, string(s))
	}
	return out
}
