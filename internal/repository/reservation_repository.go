package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/hoa-community-api/internal/model"
)

// ReservationRepo provides access to the 'reservations' table.  Status
// decisions are single conditional updates checked by affected-row count,
// never read-then-write.  It satisfies the ActiveReservations half of
// booking.Timeline.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// Create inserts a reservation in pending state and populates its
// generated ID.  The conflict check runs before this call; the composite
// unique index on (facility_id, date, start_time, end_time) is the last
// line of defense against two identical slots racing past the check.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations (user_id, facility_id, date, start_time, end_time, status)
			   VALUES (?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		res.UserID, res.FacilityID, res.Date.Format("2006-01-02"), res.StartTime, res.EndTime,
		model.ReservationPending)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	res.Status = model.ReservationPending
	return nil
}

// GetByID returns a single reservation.  ErrNotFound is returned when no
// row exists.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT id, user_id, facility_id, date, start_time, end_time, status, created_at
			   FROM reservations WHERE id = ?`
	var res model.Reservation
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&res.ID, &res.UserID, &res.FacilityID, &res.Date, &res.StartTime, &res.EndTime,
		&res.Status, &res.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ActiveReservations returns the pending and approved reservations for a
// facility and date, ordered ascending by start time then id so conflict
// checks are deterministic.
func (r *ReservationRepo) ActiveReservations(ctx context.Context, facilityID uint64, date time.Time) ([]model.Reservation, error) {
	const q = `SELECT id, user_id, facility_id, date, start_time, end_time, status, created_at
			   FROM reservations
			   WHERE facility_id = ? AND date = ? AND status IN (?, ?)
			   ORDER BY start_time ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, facilityID, date.Format("2006-01-02"),
		model.ReservationPending, model.ReservationApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		var res model.Reservation
		if err := rows.Scan(&res.ID, &res.UserID, &res.FacilityID, &res.Date,
			&res.StartTime, &res.EndTime, &res.Status, &res.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByUser returns all reservations made by a user, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	const q = `SELECT id, user_id, facility_id, date, start_time, end_time, status, created_at
			   FROM reservations WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		var res model.Reservation
		if err := rows.Scan(&res.ID, &res.UserID, &res.FacilityID, &res.Date,
			&res.StartTime, &res.EndTime, &res.Status, &res.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Decide flips a pending reservation to approved or rejected in one
// conditional update.  ErrAlreadyDecided is returned when the row was no
// longer pending, which also covers two admins racing on the same row.
func (r *ReservationRepo) Decide(ctx context.Context, id uint64, status string) error {
	const q = `UPDATE reservations SET status = ? WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, q, status, id, model.ReservationPending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadyDecided
	}
	return nil
}
