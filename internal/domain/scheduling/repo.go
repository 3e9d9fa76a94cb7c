package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists appointments. Create enforces the daily-capacity and
// per-slot uniqueness constraints atomically with the insert, so a booking
// can never slip past capacity through a read-then-write race.
type Repository interface {
	// Create inserts the appointment if the doctor has fewer than maxPerDay
	// active appointments on the date and the exact slot is free. Returns
	// ErrDayFullyBooked or ErrSlotTaken otherwise.
	Create(ctx context.Context, a *Appointment, maxPerDay int) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// Update persists status, meeting link, clinical notes and rating.
	Update(ctx context.Context, a *Appointment) error
	// ListByDoctor returns the doctor's appointments sorted by date
	// descending then slot start descending.
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	// ListByPatient returns the patient's appointments with the same order.
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	// CountForDay counts the doctor's non-cancelled appointments on a date.
	CountForDay(ctx context.Context, doctorID uuid.UUID, date time.Time) (int, error)
	// BookedSlots returns the slot start times already held for the doctor
	// on a date, excluding cancelled appointments.
	BookedSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]string, error)
}
