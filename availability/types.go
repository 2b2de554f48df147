package availability

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultSlotLength is used when a query does not specify a positive length.
const DefaultSlotLength = 30 * time.Minute

// DayOfWeek numbers weekdays 0-6 starting on Sunday, the same as time.Weekday.
//
//	0 Sunday, 1 Monday, 2 Tuesday, 3 Wednesday, 4 Thursday, 5 Friday, 6 Saturday
type DayOfWeek int

const (
	Sunday DayOfWeek = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

func DayOfWeekOf(date time.Time) DayOfWeek {
	return DayOfWeek(date.Weekday())
}

// DayOfWeekFromLegacy converts the Sunday=1..Saturday=7 numbering used by
// older clinic records.
func DayOfWeekFromLegacy(n int) (DayOfWeek, error) {
	d := DayOfWeek(n - 1)
	if !d.Valid() {
		return 0, fmt.Errorf("legacy day of week out of range: %d", n)
	}
	return d, nil
}

func (d DayOfWeek) Valid() bool {
	return d >= Sunday && d <= Saturday
}

func (d DayOfWeek) String() string {
	if !d.Valid() {
		return fmt.Sprintf("DayOfWeek(%d)", int(d))
	}
	return time.Weekday(d).String()
}

type WeeklyAvailability struct {
	DayOfWeek DayOfWeek `json:"day_of_week"`
	StartTime TimeOfDay `json:"start_time"`
	EndTime   TimeOfDay `json:"end_time"`
}

func (w *WeeklyAvailability) Validate() error {
	if !w.DayOfWeek.Valid() {
		return fmt.Errorf("day of week out of range: %d", int(w.DayOfWeek))
	}
	if !w.StartTime.Valid() || !w.EndTime.Valid() {
		return errors.New("start and end time must be within the day")
	}
	if w.StartTime >= w.EndTime {
		return errors.New("start time must be before end time")
	}
	return nil
}

type BookingStatus string

const (
	StatusScheduled BookingStatus = "SCHEDULED"
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusCompleted BookingStatus = "COMPLETED"
	StatusCancelled BookingStatus = "CANCELLED"
)

// OccupyingStatuses are the booking states that reserve time.
var OccupyingStatuses = []BookingStatus{StatusScheduled, StatusConfirmed}

func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown booking status %q", s)
	}
	return status, nil
}

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s BookingStatus) Occupies() bool {
	return s == StatusScheduled || s == StatusConfirmed
}

type Booking struct {
	Start  time.Time     `json:"start_time"`
	End    time.Time     `json:"end_time"`
	Status BookingStatus `json:"status"`
}

type Block struct {
	Start time.Time `json:"start_time"`
	End   time.Time `json:"end_time"`
}

// OverlapRule selects how a candidate slot is tested against bookings and blocks.
type OverlapRule string

const (
	// OverlapStrict rejects a slot when [slot, slot+length) intersects [start, end).
	OverlapStrict OverlapRule = "strict"
	// OverlapLegacy only rejects a slot whose start lies inside [start, end).
	OverlapLegacy OverlapRule = "legacy"
)

func ParseOverlapRule(s string) (OverlapRule, error) {
	switch rule := OverlapRule(strings.ToLower(strings.TrimSpace(s))); rule {
	case "", OverlapStrict:
		return OverlapStrict, nil
	case OverlapLegacy:
		return OverlapLegacy, nil
	default:
		return "", fmt.Errorf("unknown overlap rule %q", s)
	}
}

// Query is the input of ComputeAvailableSlots. Availability must be the
// record for the weekday of Date, or nil when the professional is off.
type Query struct {
	Date         time.Time
	Availability *WeeklyAvailability
	Bookings     []Booking
	Blocks       []Block
	SlotLength   time.Duration
	Rule         OverlapRule
}
