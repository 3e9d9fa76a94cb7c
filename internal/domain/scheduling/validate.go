package scheduling

import (
	"time"

	"github.com/wellbee/wellbee/internal/domain/doctor"
)

// Rejection reasons reported by slot validation. The first failing check
// determines the reason, so callers can echo the relevant constraint back
// to the client.
const (
	ReasonDayUnavailable      = "day unavailable"
	ReasonOutsideWorkingHours = "outside working hours"
	ReasonDayFullyBooked      = "day fully booked"
	ReasonSlotTaken           = "slot already booked"
)

// ValidationError carries a rejection reason plus the doctor constraint that
// triggered it, so the booking form can be re-rendered with context.
type ValidationError struct {
	Reason        string               `json:"error"`
	AvailableDays []string             `json:"available_days,omitempty"`
	WorkingHours  *doctor.WorkingHours `json:"working_hours,omitempty"`
}

func (e *ValidationError) Error() string { return e.Reason }

// ValidateSlot checks a proposed booking against the doctor's available days
// and working hours, in that order. Daily capacity and per-slot uniqueness
// are enforced transactionally by the store at insert time.
func ValidateSlot(d *doctor.Doctor, date time.Time, slot TimeSlot) *ValidationError {
	if !d.AvailableOn(date.Weekday().String()) {
		return &ValidationError{
			Reason:        ReasonDayUnavailable,
			AvailableDays: d.AvailableDays,
		}
	}
	if !doctor.ValidTimeOfDay(slot.Start) || !doctor.ValidTimeOfDay(slot.End) ||
		slot.Start >= slot.End ||
		slot.Start < d.WorkingHours.Start || slot.End > d.WorkingHours.End {
		wh := d.WorkingHours
		return &ValidationError{
			Reason:       ReasonOutsideWorkingHours,
			WorkingHours: &wh,
		}
	}
	return nil
}
