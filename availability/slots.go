// Package availability computes the free appointment slots of a professional
// on one calendar day. It performs no I/O and keeps no state; the result is a
// snapshot and does not reserve anything.
package availability

import "time"

// ComputeAvailableSlots returns the start times of every slot of q.SlotLength
// that fits inside the availability window of q.Date and does not collide with
// an occupying booking or a block. The result is ascending and duplicate-free.
func ComputeAvailableSlots(q Query) []TimeOfDay {
	slots := []TimeOfDay{}
	if q.Availability == nil {
		return slots
	}

	length := slotMinutes(q.SlotLength)
	start, end := q.Availability.StartTime, q.Availability.EndTime
	if !start.Valid() || !end.Valid() || start >= end {
		return slots
	}

	busy := busyIntervals(q.Bookings, q.Blocks)

	// Walk wall-clock minutes so a repeated or skipped DST hour cannot emit
	// the same time of day twice.
	for t := start; t+length <= end; t += length {
		if occupied(t.On(q.Date), (t+length).On(q.Date), busy, q.Rule) {
			continue
		}
		slots = append(slots, t)
	}

	return slots
}

// slotMinutes rounds length up to whole minutes. Anything under a minute
// means the default.
func slotMinutes(length time.Duration) TimeOfDay {
	if length < time.Minute {
		length = DefaultSlotLength
	}
	return TimeOfDay((length + time.Minute - 1) / time.Minute)
}

type interval struct {
	start time.Time
	end   time.Time
}

// busyIntervals drops bookings that do not hold time, whatever the caller passed.
func busyIntervals(bookings []Booking, blocks []Block) []interval {
	busy := make([]interval, 0, len(bookings)+len(blocks))
	for _, b := range bookings {
		if !b.Status.Occupies() {
			continue
		}
		busy = append(busy, interval{start: b.Start, end: b.End})
	}
	for _, b := range blocks {
		busy = append(busy, interval{start: b.Start, end: b.End})
	}
	return busy
}

func occupied(slotStart, slotEnd time.Time, busy []interval, rule OverlapRule) bool {
	for _, other := range busy {
		if rule == OverlapLegacy {
			if !slotStart.Before(other.start) && slotStart.Before(other.end) {
				return true
			}
			continue
		}
		if Overlaps(slotStart, slotEnd, other.start, other.end) {
			return true
		}
	}
	return false
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
