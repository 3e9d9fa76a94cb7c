package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const apptCols = `id, doctor_id, patient_id, date, slot_start, slot_end, status, type,
	symptoms, diagnosis, prescription, notes, meeting_link, follow_up_date,
	rating_score, rating_review, rating_date, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var (
		a           Appointment
		ratingScore *int
		ratingText  *string
		ratingDate  *time.Time
	)
	err := row.Scan(&a.ID, &a.DoctorID, &a.PatientID, &a.Date, &a.Slot.Start,
		&a.Slot.End, &a.Status, &a.Type, &a.Symptoms, &a.Diagnosis,
		&a.Prescription, &a.Notes, &a.MeetingLink, &a.FollowUpDate,
		&ratingScore, &ratingText, &ratingDate, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if ratingScore != nil {
		a.Rating = &Rating{Score: *ratingScore, Review: ratingText}
		if ratingDate != nil {
			a.Rating.Date = *ratingDate
		}
	}
	return &a, nil
}

// Create locks the doctor row, re-checks daily capacity and inserts, all in
// one transaction. The partial unique index on (doctor_id, date, slot_start)
// independently rejects an exact-slot duplicate.
func (r *repoPG) Create(ctx context.Context, a *Appointment, maxPerDay int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var doctorID uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM doctors WHERE id = $1 FOR UPDATE`, a.DoctorID).Scan(&doctorID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDoctorNotFound
	}
	if err != nil {
		return err
	}

	var count int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM appointments
		WHERE doctor_id = $1 AND date = $2 AND status <> 'cancelled'`,
		a.DoctorID, a.Date).Scan(&count)
	if err != nil {
		return err
	}
	if count >= maxPerDay {
		return ErrDayFullyBooked
	}

	a.ID = uuid.New()
	err = tx.QueryRow(ctx, `
		INSERT INTO appointments (id, doctor_id, patient_id, date, slot_start, slot_end, status, type, symptoms)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at, updated_at`,
		a.ID, a.DoctorID, a.PatientID, a.Date, a.Slot.Start, a.Slot.End,
		a.Status, a.Type, a.Symptoms,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrSlotTaken
		}
		return err
	}

	return tx.Commit(ctx)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointments WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	var ratingScore *int
	var ratingText *string
	var ratingDate *time.Time
	if a.Rating != nil {
		ratingScore = &a.Rating.Score
		ratingText = a.Rating.Review
		ratingDate = &a.Rating.Date
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments SET
			status = $2, type = $3, symptoms = $4, diagnosis = $5,
			prescription = $6, notes = $7, meeting_link = $8,
			follow_up_date = $9, rating_score = $10, rating_review = $11,
			rating_date = $12, updated_at = NOW()
		WHERE id = $1`,
		a.ID, a.Status, a.Type, a.Symptoms, a.Diagnosis, a.Prescription,
		a.Notes, a.MeetingLink, a.FollowUpDate, ratingScore, ratingText, ratingDate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx, `doctor_id`, doctorID, limit, offset)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx, `patient_id`, patientID, limit, offset)
}

func (r *repoPG) list(ctx context.Context, column string, id uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE `+column+` = $1`, id).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+apptCols+` FROM appointments
		WHERE `+column+` = $1
		ORDER BY date DESC, slot_start DESC
		LIMIT $2 OFFSET $3`, id, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *repoPG) BookedSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT slot_start FROM appointments
		WHERE doctor_id = $1 AND date = $2 AND status <> 'cancelled'
		ORDER BY slot_start`, doctorID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var starts []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		starts = append(starts, s)
	}
	return starts, rows.Err()
}

func (r *repoPG) CountForDay(ctx context.Context, doctorID uuid.UUID, date time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM appointments
		WHERE doctor_id = $1 AND date = $2 AND status <> 'cancelled'`,
		doctorID, date).Scan(&count)
	return count, err
}
