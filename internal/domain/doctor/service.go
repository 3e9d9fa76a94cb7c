package doctor

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Register(ctx context.Context, d *Doctor) error {
	if d.Email == "" {
		return fmt.Errorf("email is required")
	}
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	if d.Specialization == "" {
		return fmt.Errorf("specialization is required")
	}
	if d.MaxAppointmentsPerDay == 0 {
		d.MaxAppointmentsPerDay = 10
	}
	if err := d.Validate(); err != nil {
		return err
	}
	d.IsAvailable = true
	return s.repo.Create(ctx, d)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*Doctor, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *Service) Update(ctx context.Context, d *Doctor) error {
	return s.repo.Update(ctx, d)
}

func (s *Service) List(ctx context.Context, specialization string, limit, offset int) ([]*Doctor, int, error) {
	return s.repo.List(ctx, specialization, limit, offset)
}

// RateDoctor appends a rating and returns the recomputed average, the
// arithmetic mean of all ratings including the new one.
func (s *Service) RateDoctor(ctx context.Context, doctorID uuid.UUID, score int, review *string) (float64, error) {
	if score < 1 || score > 5 {
		return 0, fmt.Errorf("rating score must be between 1 and 5")
	}
	return s.repo.AddRating(ctx, &Rating{DoctorID: doctorID, Score: score, Review: review})
}

func (s *Service) ListRatings(ctx context.Context, doctorID uuid.UUID) ([]*Rating, error) {
	return s.repo.ListRatings(ctx, doctorID)
}
