package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wellbee/wellbee/internal/domain/doctor"
	"github.com/wellbee/wellbee/internal/domain/notification"
	"github.com/wellbee/wellbee/internal/platform/auth"
	"github.com/wellbee/wellbee/internal/platform/video"
)

// NotificationEmitter decouples scheduling from notification persistence.
// Implementations must be best effort and never return an error.
type NotificationEmitter interface {
	Emit(ctx context.Context, targetUserID, fromUserID uuid.UUID, typ notification.Type, message string, appointmentID *uuid.UUID)
}

// Service orchestrates booking, status transitions and meeting-link
// assignment. Every operation takes the authenticated principal explicitly;
// nothing is read from ambient state.
type Service struct {
	appts        Repository
	doctors      doctor.Repository
	emitter      NotificationEmitter
	rooms        video.RoomProvider
	fallbackBase string
	logger       zerolog.Logger
}

func NewService(appts Repository, doctors doctor.Repository, emitter NotificationEmitter, rooms video.RoomProvider, fallbackBase string, logger zerolog.Logger) *Service {
	return &Service{
		appts:        appts,
		doctors:      doctors,
		emitter:      emitter,
		rooms:        rooms,
		fallbackBase: fallbackBase,
		logger:       logger,
	}
}

// BookRequest carries the patient's booking intent.
type BookRequest struct {
	DoctorID uuid.UUID
	Date     time.Time
	Slot     TimeSlot
	Symptoms *string
	Type     Type
}

// BookAppointment validates the requested slot against the doctor's
// availability and persists the appointment in scheduled status. The booking
// notification to the doctor is best effort.
func (s *Service) BookAppointment(ctx context.Context, principal auth.Principal, req BookRequest) (*Appointment, error) {
	patientID, err := uuid.Parse(principal.UserID)
	if err != nil {
		return nil, ErrUnauthorized
	}

	d, err := s.doctors.GetByID(ctx, req.DoctorID)
	if err != nil {
		if errors.Is(err, doctor.ErrNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	if req.Type == "" {
		req.Type = TypeVideo
	}
	if !req.Type.Valid() {
		return nil, &ValidationError{Reason: "invalid appointment type"}
	}

	if verr := ValidateSlot(d, req.Date, req.Slot); verr != nil {
		return nil, verr
	}

	a := &Appointment{
		DoctorID:  d.ID,
		PatientID: patientID,
		Date:      req.Date,
		Slot:      req.Slot,
		Status:    StatusScheduled,
		Type:      req.Type,
		Symptoms:  req.Symptoms,
	}
	if err := s.appts.Create(ctx, a, d.MaxAppointmentsPerDay); err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("%s booked an appointment on %s at %s",
		principal.Name, a.Date.Format("2006-01-02"), a.Slot.Start)
	s.emitter.Emit(ctx, d.ID, patientID, notification.TypeAppointment, msg, &a.ID)

	return a, nil
}

// StartVideoCall assigns a meeting link and moves the appointment to
// in-progress. Only the appointment's doctor may start the call. Repeated
// calls return the existing link without emitting another notification. When
// the room provider is absent or fails, a deterministic public room URL
// keyed by the appointment ID is used instead.
func (s *Service) StartVideoCall(ctx context.Context, principal auth.Principal, appointmentID uuid.UUID) (*Appointment, error) {
	requesterID, err := uuid.Parse(principal.UserID)
	if err != nil {
		return nil, ErrUnauthorized
	}

	a, err := s.appts.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !principal.IsDoctor() || a.DoctorID != requesterID {
		return nil, ErrUnauthorized
	}

	if a.Status == StatusInProgress && a.MeetingLink != nil {
		return a, nil
	}
	if !a.Status.CanTransitionTo(StatusInProgress) {
		return nil, ErrInvalidTransition
	}

	link := s.provisionRoom(ctx, a)
	a.MeetingLink = &link
	a.Status = StatusInProgress
	if err := s.appts.Update(ctx, a); err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, a.PatientID, a.DoctorID, notification.TypeVideo,
		"Your video consultation has started. Join now.", &a.ID)

	return a, nil
}

// provisionRoom asks the room provider for a meeting URL and recovers any
// provider failure locally with the deterministic fallback room. A provider
// error is never surfaced to the caller.
func (s *Service) provisionRoom(ctx context.Context, a *Appointment) string {
	if s.rooms == nil {
		return video.FallbackURL(s.fallbackBase, a.ID.String())
	}

	expiresAt := time.Now().Add(2 * time.Hour)
	link, err := s.rooms.CreateRoom(ctx, a.ID.String(), expiresAt)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("appointment_id", a.ID.String()).
			Msg("room provider failed, using fallback room")
		return video.FallbackURL(s.fallbackBase, a.ID.String())
	}
	return link
}

// StatusUpdate carries a requested status change, optionally with a rating
// when completing the appointment.
type StatusUpdate struct {
	Status Status
	Score  *int
	Review *string
}

// UpdateStatus applies a lifecycle transition requested by the appointment's
// doctor or patient. Completing with a rating appends it to the doctor's
// rating list and recomputes the average.
func (s *Service) UpdateStatus(ctx context.Context, principal auth.Principal, appointmentID uuid.UUID, upd StatusUpdate) (*Appointment, error) {
	requesterID, err := uuid.Parse(principal.UserID)
	if err != nil {
		return nil, ErrUnauthorized
	}

	a, err := s.appts.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if a.DoctorID != requesterID && a.PatientID != requesterID {
		return nil, ErrUnauthorized
	}

	if !upd.Status.Valid() {
		return nil, &ValidationError{Reason: "invalid status"}
	}
	if !a.Status.CanTransitionTo(upd.Status) {
		return nil, ErrInvalidTransition
	}

	a.Status = upd.Status

	if upd.Status == StatusCompleted && upd.Score != nil {
		if *upd.Score < 1 || *upd.Score > 5 {
			return nil, &ValidationError{Reason: "rating score must be between 1 and 5"}
		}
		a.Rating = &Rating{Score: *upd.Score, Review: upd.Review, Date: time.Now().UTC()}
		avg, err := s.doctors.AddRating(ctx, &doctor.Rating{
			DoctorID: a.DoctorID,
			Score:    *upd.Score,
			Review:   upd.Review,
		})
		if err != nil {
			return nil, err
		}
		s.logger.Info().
			Str("doctor_id", a.DoctorID.String()).
			Float64("average_rating", avg).
			Msg("doctor rating updated")
	}

	if err := s.appts.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ListByDoctor returns the doctor's appointments, latest first.
func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appts.ListByDoctor(ctx, doctorID, limit, offset)
}

// ListByPatient returns the patient's appointments, latest first.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appts.ListByPatient(ctx, patientID, limit, offset)
}

// AvailableSlots returns the doctor's open slots for a date: the full
// working-hours grid minus slots already held by active appointments. A date
// outside the doctor's available days is a validation error.
func (s *Service) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]TimeSlot, error) {
	d, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, doctor.ErrNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	if !d.AvailableOn(date.Weekday().String()) {
		return nil, &ValidationError{Reason: ReasonDayUnavailable, AvailableDays: d.AvailableDays}
	}

	booked, err := s.appts.BookedSlots(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(booked))
	for _, start := range booked {
		taken[start] = true
	}

	var open []TimeSlot
	for _, slot := range Slots(d.WorkingHours.Start, d.WorkingHours.End) {
		if !taken[slot.Start] {
			open = append(open, slot)
		}
	}
	return open, nil
}
