package doctor

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetByEmail(ctx context.Context, email string) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	List(ctx context.Context, specialization string, limit, offset int) ([]*Doctor, int, error)
	// AddRating appends a rating and recomputes the doctor's average rating
	// in the same transaction.
	AddRating(ctx context.Context, r *Rating) (float64, error)
	ListRatings(ctx context.Context, doctorID uuid.UUID) ([]*Rating, error)
}
