package professional

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"clinic-scheduling/availability"

	"github.com/google/uuid"
)

type Professional struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Specialty string    `json:"specialty,omitempty"`
	Active    bool      `json:"active"`
}

func (p *Professional) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}

type Procedure struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	Active          bool      `json:"active"`
}

func (p *Procedure) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("name is required")
	}
	if p.DurationMinutes <= 0 {
		return errors.New("duration minutes must be greater than 0")
	}
	return nil
}

func (p *Procedure) Duration() time.Duration {
	return time.Duration(p.DurationMinutes) * time.Minute
}

// ValidateWeek checks every record and that no weekday appears twice.
func ValidateWeek(week []availability.WeeklyAvailability) error {
	seen := make(map[availability.DayOfWeek]bool, len(week))
	for _, w := range week {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("invalid availability - %s: %w", w.DayOfWeek, err)
		}
		if seen[w.DayOfWeek] {
			return fmt.Errorf("duplicate availability for %s", w.DayOfWeek)
		}
		seen[w.DayOfWeek] = true
	}
	return nil
}

// Price is what a procedure costs. A nil ProfessionalID is the clinic default;
// a professional specific price overrides it.
type Price struct {
	ID             uuid.UUID  `json:"id"`
	ProcedureID    uuid.UUID  `json:"procedure_id"`
	ProfessionalID *uuid.UUID `json:"professional_id,omitempty"`
	Amount         float64    `json:"amount"`
	Description    string     `json:"description,omitempty"`
}

func (p *Price) Validate() error {
	if p.ProcedureID == uuid.Nil {
		return errors.New("procedure ID is required")
	}
	if p.Amount < 0 || math.IsNaN(p.Amount) || math.IsInf(p.Amount, 0) {
		return errors.New("amount must be a non-negative number")
	}
	return nil
}
