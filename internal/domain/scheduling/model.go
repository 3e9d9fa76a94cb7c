// Package scheduling implements appointment booking, the status lifecycle and
// meeting-link assignment. It is the only writer of appointment status and
// meeting links.
package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Status is an appointment's lifecycle state.
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

var validStatuses = map[Status]bool{
	StatusScheduled: true, StatusInProgress: true,
	StatusCompleted: true, StatusCancelled: true,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool { return validStatuses[s] }

// CanTransitionTo reports whether the status change is allowed. Cancellation
// is reachable from every state; the rest follow the call lifecycle.
func (s Status) CanTransitionTo(next Status) bool {
	if next == StatusCancelled {
		return true
	}
	switch s {
	case StatusScheduled:
		return next == StatusInProgress
	case StatusInProgress:
		return next == StatusCompleted
	default:
		return false
	}
}

// Type is the consultation channel.
type Type string

const (
	TypeVideo    Type = "video"
	TypeInPerson Type = "in-person"
	TypePhone    Type = "phone"
)

var validTypes = map[Type]bool{
	TypeVideo: true, TypeInPerson: true, TypePhone: true,
}

// Valid reports whether t is a known appointment type.
func (t Type) Valid() bool { return validTypes[t] }

// TimeSlot is a candidate booking interval. Start and End are zero-padded
// HH:MM time-of-day strings, which order correctly as strings.
type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Rating is a patient's review attached when an appointment completes.
type Rating struct {
	Score  int       `json:"score"`
	Review *string   `json:"review,omitempty"`
	Date   time.Time `json:"date"`
}

// Appointment maps to the appointments table.
type Appointment struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	DoctorID     uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	PatientID    uuid.UUID  `db:"patient_id" json:"patient_id"`
	Date         time.Time  `db:"date" json:"date"`
	Slot         TimeSlot   `json:"time_slot"`
	Status       Status     `db:"status" json:"status"`
	Type         Type       `db:"type" json:"type"`
	Symptoms     *string    `db:"symptoms" json:"symptoms,omitempty"`
	Diagnosis    *string    `db:"diagnosis" json:"diagnosis,omitempty"`
	Prescription *string    `db:"prescription" json:"prescription,omitempty"`
	Notes        *string    `db:"notes" json:"notes,omitempty"`
	MeetingLink  *string    `db:"meeting_link" json:"meeting_link,omitempty"`
	FollowUpDate *time.Time `db:"follow_up_date" json:"follow_up_date,omitempty"`
	Rating       *Rating    `json:"rating,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Weekday returns the appointment date's weekday name (e.g. "Monday").
func (a *Appointment) Weekday() string {
	return a.Date.Weekday().String()
}
