package block

import (
	"errors"
	"time"

	"clinic-scheduling/availability"

	"github.com/google/uuid"
)

// Block is a period in which a professional, or the whole clinic when
// ProfessionalID is nil, takes no appointments.
type Block struct {
	ID             uuid.UUID  `json:"id"`
	ProfessionalID *uuid.UUID `json:"professional_id"`
	Start          time.Time  `json:"start"`
	End            time.Time  `json:"end"`
	Reason         string     `json:"reason,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (b *Block) Validate() error {
	if b.Start.IsZero() || b.End.IsZero() {
		return errors.New("start and end are required")
	}
	if !b.Start.Before(b.End) {
		return errors.New("start must be before end")
	}
	return nil
}

func (b *Block) ClinicWide() bool {
	return b.ProfessionalID == nil
}

// Interval converts blocks into the shape the slot calculator works with.
func Interval(blocks []Block) []availability.Block {
	out := make([]availability.Block, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, availability.Block{Start: b.Start, End: b.End})
	}
	return out
}
