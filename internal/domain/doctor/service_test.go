package doctor

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

// -- Mock Repository --

type mockRepo struct {
	store   map[uuid.UUID]*Doctor
	ratings map[uuid.UUID][]*Rating
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		store:   make(map[uuid.UUID]*Doctor),
		ratings: make(map[uuid.UUID][]*Rating),
	}
}

func (m *mockRepo) Create(_ context.Context, d *Doctor) error {
	d.ID = uuid.New()
	m.store[d.ID] = d
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	d, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*Doctor, error) {
	for _, d := range m.store {
		if d.Email == email {
			return d, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Update(_ context.Context, d *Doctor) error {
	if _, ok := m.store[d.ID]; !ok {
		return ErrNotFound
	}
	m.store[d.ID] = d
	return nil
}

func (m *mockRepo) List(_ context.Context, specialization string, limit, offset int) ([]*Doctor, int, error) {
	var out []*Doctor
	for _, d := range m.store {
		if specialization == "" || d.Specialization == specialization {
			out = append(out, d)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) AddRating(_ context.Context, r *Rating) (float64, error) {
	d, ok := m.store[r.DoctorID]
	if !ok {
		return 0, ErrNotFound
	}
	m.ratings[r.DoctorID] = append(m.ratings[r.DoctorID], r)
	sum := 0
	for _, rr := range m.ratings[r.DoctorID] {
		sum += rr.Score
	}
	d.AverageRating = float64(sum) / float64(len(m.ratings[r.DoctorID]))
	return d.AverageRating, nil
}

func (m *mockRepo) ListRatings(_ context.Context, doctorID uuid.UUID) ([]*Rating, error) {
	return m.ratings[doctorID], nil
}

func registerTestDoctor(t *testing.T, svc *Service) *Doctor {
	t.Helper()
	d := &Doctor{
		Email:                 "lee@example.com",
		Name:                  "Dr. Lee",
		Specialization:        "General",
		WorkingHours:          WorkingHours{Start: "09:00", End: "17:00"},
		AvailableDays:         []string{"Monday"},
		MaxAppointmentsPerDay: 5,
	}
	if err := svc.Register(context.Background(), d); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	return d
}

func TestRegister_Defaults(t *testing.T) {
	svc := NewService(newMockRepo())
	d := &Doctor{
		Email:          "lee@example.com",
		Name:           "Dr. Lee",
		Specialization: "General",
		WorkingHours:   WorkingHours{Start: "09:00", End: "17:00"},
		AvailableDays:  []string{"Monday"},
	}
	if err := svc.Register(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.MaxAppointmentsPerDay != 10 {
		t.Errorf("daily capacity %d, want default 10", d.MaxAppointmentsPerDay)
	}
	if !d.IsAvailable {
		t.Error("registered doctor should be available")
	}
}

func TestRegister_MissingFields(t *testing.T) {
	svc := NewService(newMockRepo())
	for _, d := range []*Doctor{
		{Name: "Dr. Lee", Specialization: "General"},
		{Email: "lee@example.com", Specialization: "General"},
		{Email: "lee@example.com", Name: "Dr. Lee"},
	} {
		if err := svc.Register(context.Background(), d); err == nil {
			t.Errorf("expected error for %+v", d)
		}
	}
}

func TestRegister_InvalidWorkingHours(t *testing.T) {
	svc := NewService(newMockRepo())
	d := &Doctor{
		Email:          "lee@example.com",
		Name:           "Dr. Lee",
		Specialization: "General",
		WorkingHours:   WorkingHours{Start: "17:00", End: "09:00"},
		AvailableDays:  []string{"Monday"},
	}
	if err := svc.Register(context.Background(), d); err == nil {
		t.Fatal("expected error for inverted working hours")
	}
}

func TestRateDoctor_MeanRecomputed(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	d := registerTestDoctor(t, svc)

	for _, score := range []int{4, 5} {
		if _, err := svc.RateDoctor(context.Background(), d.ID, score, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	avg, err := svc.RateDoctor(context.Background(), d.ID, 3, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if avg != 4.0 {
		t.Errorf("average %v, want 4.0 for ratings [4 5 3]", avg)
	}
}

func TestRateDoctor_ScoreBounds(t *testing.T) {
	svc := NewService(newMockRepo())
	for _, score := range []int{0, 6, -1} {
		if _, err := svc.RateDoctor(context.Background(), uuid.New(), score, nil); err == nil {
			t.Errorf("score %d should be rejected", score)
		}
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := NewService(newMockRepo())
	if _, err := svc.Get(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected error")
	}
}
