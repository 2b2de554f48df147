package appointment

import (
	"context"
	"fmt"
	"time"

	"clinic-scheduling/availability"
	"clinic-scheduling/block"

	"github.com/google/uuid"
)

type SlotOptions struct {
	SlotLength time.Duration
	Rule       availability.OverlapRule
}

// AvailableSlots lists the free slot start times of the professional on the
// calendar day of date, interpreted in date's location.
func (a *Accessor) AvailableSlots(ctx context.Context, professionalID uuid.UUID, date time.Time, opts SlotOptions) ([]availability.TimeOfDay, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	window, err := a.professionalAccessor.GetAvailabilityForDay(ctx, professionalID, availability.DayOfWeekOf(dayStart))
	if err != nil {
		return nil, fmt.Errorf("get availability for day: %w", err)
	}
	if window == nil {
		return []availability.TimeOfDay{}, nil
	}

	appointments, err := a.GetOccupyingAppointments(ctx, professionalID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("get occupying appointments: %w", err)
	}

	blocks, err := a.blockAccessor.GetBlocksOverlapping(ctx, professionalID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("get blocks overlapping: %w", err)
	}

	return availability.ComputeAvailableSlots(availability.Query{
		Date:         dayStart,
		Availability: window,
		Bookings:     Bookings(appointments),
		Blocks:       block.Interval(blocks),
		SlotLength:   opts.SlotLength,
		Rule:         opts.Rule,
	}), nil
}
