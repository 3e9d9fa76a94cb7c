package integration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wellbee/wellbee/internal/domain/scheduling"
)

// 2026-09-07 is a Monday.
var bookingDate = time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

func newAppointment(doctorID, patientID uuid.UUID, date time.Time, start, end string) *scheduling.Appointment {
	return &scheduling.Appointment{
		DoctorID:  doctorID,
		PatientID: patientID,
		Date:      date,
		Slot:      scheduling.TimeSlot{Start: start, End: end},
		Status:    scheduling.StatusScheduled,
		Type:      scheduling.TypeVideo,
	}
}

func TestAppointmentCreate_CapacityEnforced(t *testing.T) {
	ctx := context.Background()
	repo := scheduling.NewRepoPG(globalDB.Pool)
	doc := createTestDoctor(t, ctx, 2)

	patient := createTestUser(t, ctx, "patient")
	for _, start := range []string{"09:00", "09:15"} {
		a := newAppointment(doc.ID, patient, bookingDate, start, addFifteen(start))
		if err := repo.Create(ctx, a, doc.MaxAppointmentsPerDay); err != nil {
			t.Fatalf("booking %s failed: %v", start, err)
		}
	}

	a := newAppointment(doc.ID, patient, bookingDate, "10:00", "10:15")
	err := repo.Create(ctx, a, doc.MaxAppointmentsPerDay)
	if !errors.Is(err, scheduling.ErrDayFullyBooked) {
		t.Fatalf("expected day fully booked, got %v", err)
	}
}

func TestAppointmentCreate_ConcurrentLastSlot(t *testing.T) {
	ctx := context.Background()
	repo := scheduling.NewRepoPG(globalDB.Pool)
	doc := createTestDoctor(t, ctx, 1)

	const attempts = 8
	starts := []string{"09:00", "09:15", "09:30", "09:45", "10:00", "10:15", "10:30", "10:45"}
	patients := make([]uuid.UUID, attempts)
	for i := range patients {
		patients[i] = createTestUser(t, ctx, "patient")
	}

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a := newAppointment(doc.ID, patients[i], bookingDate, starts[i], addFifteen(starts[i]))
			errs[i] = repo.Create(ctx, a, doc.MaxAppointmentsPerDay)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, scheduling.ErrDayFullyBooked) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("%d concurrent bookings succeeded for capacity 1", succeeded)
	}
}

func TestAppointmentCreate_ExactSlotUnique(t *testing.T) {
	ctx := context.Background()
	repo := scheduling.NewRepoPG(globalDB.Pool)
	doc := createTestDoctor(t, ctx, 10)

	first := newAppointment(doc.ID, createTestUser(t, ctx, "patient"), bookingDate, "11:00", "11:15")
	if err := repo.Create(ctx, first, doc.MaxAppointmentsPerDay); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	dup := newAppointment(doc.ID, createTestUser(t, ctx, "patient"), bookingDate, "11:00", "11:15")
	err := repo.Create(ctx, dup, doc.MaxAppointmentsPerDay)
	if !errors.Is(err, scheduling.ErrSlotTaken) {
		t.Fatalf("expected slot taken, got %v", err)
	}

	// Cancelling the first booking frees the slot for rebooking.
	first.Status = scheduling.StatusCancelled
	if err := repo.Update(ctx, first); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	rebook := newAppointment(doc.ID, createTestUser(t, ctx, "patient"), bookingDate, "11:00", "11:15")
	if err := repo.Create(ctx, rebook, doc.MaxAppointmentsPerDay); err != nil {
		t.Fatalf("rebooking a cancelled slot failed: %v", err)
	}
}

func TestAppointmentCreate_MissingDoctor(t *testing.T) {
	ctx := context.Background()
	repo := scheduling.NewRepoPG(globalDB.Pool)
	a := newAppointment(uuid.New(), createTestUser(t, ctx, "patient"), bookingDate, "09:00", "09:15")
	if err := repo.Create(ctx, a, 10); !errors.Is(err, scheduling.ErrDoctorNotFound) {
		t.Fatalf("expected doctor not found, got %v", err)
	}
}

func TestAppointmentUpdate_RatingRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := scheduling.NewRepoPG(globalDB.Pool)
	doc := createTestDoctor(t, ctx, 10)

	a := newAppointment(doc.ID, createTestUser(t, ctx, "patient"), bookingDate, "14:00", "14:15")
	if err := repo.Create(ctx, a, doc.MaxAppointmentsPerDay); err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	link := "https://rooms.example.com/r1"
	review := "helpful"
	a.Status = scheduling.StatusCompleted
	a.MeetingLink = &link
	a.Rating = &scheduling.Rating{Score: 5, Review: &review, Date: time.Now().UTC()}
	if err := repo.Update(ctx, a); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, err := repo.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != scheduling.StatusCompleted {
		t.Errorf("status %s", got.Status)
	}
	if got.MeetingLink == nil || *got.MeetingLink != link {
		t.Errorf("meeting link %v", got.MeetingLink)
	}
	if got.Rating == nil || got.Rating.Score != 5 || got.Rating.Review == nil || *got.Rating.Review != review {
		t.Errorf("rating %+v", got.Rating)
	}
}

func TestListByDoctor_LatestFirst(t *testing.T) {
	ctx := context.Background()
	repo := scheduling.NewRepoPG(globalDB.Pool)
	doc := createTestDoctor(t, ctx, 10)
	patient := createTestUser(t, ctx, "patient")

	earlier := bookingDate
	later := bookingDate.AddDate(0, 0, 1) // Tuesday
	for _, tc := range []struct {
		date  time.Time
		start string
	}{
		{earlier, "09:00"},
		{later, "09:00"},
		{earlier, "10:00"},
	} {
		a := newAppointment(doc.ID, patient, tc.date, tc.start, addFifteen(tc.start))
		if err := repo.Create(ctx, a, doc.MaxAppointmentsPerDay); err != nil {
			t.Fatalf("booking %v %s failed: %v", tc.date, tc.start, err)
		}
	}

	items, total, err := repo.ListByDoctor(ctx, doc.ID, 20, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("total %d, want 3", total)
	}
	// Latest date first, then latest slot start.
	if !items[0].Date.After(items[1].Date) {
		t.Errorf("dates not descending: %v then %v", items[0].Date, items[1].Date)
	}
	if items[1].Slot.Start != "10:00" || items[2].Slot.Start != "09:00" {
		t.Errorf("slot starts not descending within day: %s then %s",
			items[1].Slot.Start, items[2].Slot.Start)
	}
}

func addFifteen(start string) string {
	slots := scheduling.Slots(start, "23:45")
	if len(slots) == 0 {
		return start
	}
	return slots[0].End
}
