package doctor

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// WorkingHours is a doctor's daily availability window. Start and End are
// zero-padded HH:MM time-of-day strings, which compare correctly as strings.
type WorkingHours struct {
	Start string `db:"working_hours_start" json:"start"`
	End   string `db:"working_hours_end" json:"end"`
}

// Doctor maps to the doctors table.
type Doctor struct {
	ID                    uuid.UUID    `db:"id" json:"id"`
	Email                 string       `db:"email" json:"email"`
	Name                  string       `db:"name" json:"name"`
	Specialization        string       `db:"specialization" json:"specialization"`
	Qualification         *string      `db:"qualification" json:"qualification,omitempty"`
	ExperienceYears       int          `db:"experience_years" json:"experience_years"`
	WorkingHours          WorkingHours `db:"" json:"working_hours"`
	AvailableDays         []string     `db:"available_days" json:"available_days"`
	MaxAppointmentsPerDay int          `db:"max_appointments_per_day" json:"max_appointments_per_day"`
	About                 *string      `db:"about" json:"about,omitempty"`
	AverageRating         float64      `db:"average_rating" json:"average_rating"`
	IsAvailable           bool         `db:"is_available" json:"is_available"`
	CreatedAt             time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time    `db:"updated_at" json:"updated_at"`
}

// Rating is one patient review of a doctor.
type Rating struct {
	ID       uuid.UUID `db:"id" json:"id"`
	DoctorID uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Score    int       `db:"score" json:"score"`
	Review   *string   `db:"review" json:"review,omitempty"`
	RatedAt  time.Time `db:"rated_at" json:"rated_at"`
}

var timeOfDayPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidTimeOfDay reports whether s is a zero-padded HH:MM string.
func ValidTimeOfDay(s string) bool {
	return timeOfDayPattern.MatchString(s)
}

// Validate checks the doctor's availability invariants.
func (d *Doctor) Validate() error {
	if !ValidTimeOfDay(d.WorkingHours.Start) || !ValidTimeOfDay(d.WorkingHours.End) {
		return fmt.Errorf("working hours must be zero-padded HH:MM times")
	}
	if d.WorkingHours.Start >= d.WorkingHours.End {
		return fmt.Errorf("working hours start %s must be before end %s",
			d.WorkingHours.Start, d.WorkingHours.End)
	}
	if len(d.AvailableDays) == 0 {
		return fmt.Errorf("at least one available day is required")
	}
	for _, day := range d.AvailableDays {
		if !validWeekdays[day] {
			return fmt.Errorf("invalid weekday name: %s", day)
		}
	}
	if d.MaxAppointmentsPerDay <= 0 {
		return fmt.Errorf("max appointments per day must be positive")
	}
	return nil
}

var validWeekdays = map[string]bool{
	"Sunday": true, "Monday": true, "Tuesday": true, "Wednesday": true,
	"Thursday": true, "Friday": true, "Saturday": true,
}

// AvailableOn reports whether the doctor accepts appointments on the given
// weekday name (e.g. "Monday").
func (d *Doctor) AvailableOn(weekday string) bool {
	for _, day := range d.AvailableDays {
		if day == weekday {
			return true
		}
	}
	return false
}
