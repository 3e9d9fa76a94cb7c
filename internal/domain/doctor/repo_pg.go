package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no doctor matches the lookup.
var ErrNotFound = errors.New("doctor not found")

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const doctorCols = `id, email, name, specialization, qualification, experience_years,
	working_hours_start, working_hours_end, available_days, max_appointments_per_day,
	about, average_rating, is_available, created_at, updated_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.Email, &d.Name, &d.Specialization, &d.Qualification,
		&d.ExperienceYears, &d.WorkingHours.Start, &d.WorkingHours.End, &d.AvailableDays,
		&d.MaxAppointmentsPerDay, &d.About, &d.AverageRating, &d.IsAvailable,
		&d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &d, err
}

func (r *repoPG) Create(ctx context.Context, d *Doctor) error {
	if err := d.Validate(); err != nil {
		return err
	}
	d.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO doctors (id, email, name, specialization, qualification, experience_years,
			working_hours_start, working_hours_end, available_days, max_appointments_per_day,
			about, is_available)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		d.ID, d.Email, d.Name, d.Specialization, d.Qualification, d.ExperienceYears,
		d.WorkingHours.Start, d.WorkingHours.End, d.AvailableDays, d.MaxAppointmentsPerDay,
		d.About, d.IsAvailable)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return scanDoctor(r.pool.QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE id = $1`, id))
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*Doctor, error) {
	return scanDoctor(r.pool.QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE email = $1`, email))
}

func (r *repoPG) Update(ctx context.Context, d *Doctor) error {
	if err := d.Validate(); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE doctors SET name=$2, specialization=$3, qualification=$4, experience_years=$5,
			working_hours_start=$6, working_hours_end=$7, available_days=$8,
			max_appointments_per_day=$9, about=$10, is_available=$11, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.Name, d.Specialization, d.Qualification, d.ExperienceYears,
		d.WorkingHours.Start, d.WorkingHours.End, d.AvailableDays,
		d.MaxAppointmentsPerDay, d.About, d.IsAvailable)
	return err
}

func (r *repoPG) List(ctx context.Context, specialization string, limit, offset int) ([]*Doctor, int, error) {
	where := `WHERE is_available`
	args := []interface{}{}
	if specialization != "" {
		where += ` AND specialization = $1`
		args = append(args, specialization)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM doctors `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM doctors %s ORDER BY name LIMIT $%d OFFSET $%d`,
		doctorCols, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

func (r *repoPG) AddRating(ctx context.Context, rt *Rating) (float64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rt.ID = uuid.New()
	if _, err := tx.Exec(ctx, `
		INSERT INTO doctor_ratings (id, doctor_id, score, review)
		VALUES ($1,$2,$3,$4)`,
		rt.ID, rt.DoctorID, rt.Score, rt.Review); err != nil {
		return 0, err
	}

	var avg float64
	if err := tx.QueryRow(ctx, `
		UPDATE doctors SET average_rating = (
			SELECT AVG(score) FROM doctor_ratings WHERE doctor_id = $1
		), updated_at = NOW()
		WHERE id = $1
		RETURNING average_rating`, rt.DoctorID).Scan(&avg); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}

	return avg, tx.Commit(ctx)
}

func (r *repoPG) ListRatings(ctx context.Context, doctorID uuid.UUID) ([]*Rating, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, doctor_id, score, review, rated_at
		FROM doctor_ratings WHERE doctor_id = $1 ORDER BY rated_at DESC`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []*Rating
	for rows.Next() {
		var rt Rating
		if err := rows.Scan(&rt.ID, &rt.DoctorID, &rt.Score, &rt.Review, &rt.RatedAt); err != nil {
			return nil, err
		}
		ratings = append(ratings, &rt)
	}
	return ratings, rows.Err()
}
