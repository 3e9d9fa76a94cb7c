package scheduling

import "errors"

var (
	// ErrNotFound is returned when no appointment matches the lookup.
	ErrNotFound = errors.New("appointment not found")

	// ErrDoctorNotFound is returned when the booking target doctor is missing.
	ErrDoctorNotFound = errors.New("doctor not found")

	// ErrUnauthorized is returned when the requesting principal is neither
	// the appointment's doctor nor its patient, or lacks the required role.
	ErrUnauthorized = errors.New("not authorized for this appointment")

	// ErrInvalidTransition is returned for a disallowed status change.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrDayFullyBooked is returned when the doctor's daily capacity is
	// reached for the requested date.
	ErrDayFullyBooked = errors.New("day fully booked")

	// ErrSlotTaken is returned when another active appointment already holds
	// the exact doctor/date/slot.
	ErrSlotTaken = errors.New("slot already booked")
)
