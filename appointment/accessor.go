package appointment

import (
	"context"
	"database/sql"
	"time"

	"clinic-scheduling/availability"
	"clinic-scheduling/block"

	"github.com/google/uuid"
)

type ProfessionalAccessor interface {
	GetAvailabilityForDay(ctx context.Context, professionalID uuid.UUID, day availability.DayOfWeek) (*availability.WeeklyAvailability, error)
}

type BlockAccessor interface {
	GetBlocksOverlapping(ctx context.Context, professionalID uuid.UUID, from, to time.Time) ([]block.Block, error)
}

type Accessor struct {
	db                   *sql.DB
	professionalAccessor ProfessionalAccessor
	blockAccessor        BlockAccessor
}

func NewAccessor(db *sql.DB, professionalAccessor ProfessionalAccessor, blockAccessor BlockAccessor) *Accessor {
	return &Accessor{
		db:                   db,
		professionalAccessor: professionalAccessor,
		blockAccessor:        blockAccessor,
	}
}
