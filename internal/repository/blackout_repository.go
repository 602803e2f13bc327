package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/hoa-community-api/internal/model"
)

// BlackoutRepo provides access to the 'blackout_periods' table.  It
// satisfies the BlackoutsCovering half of booking.Timeline.
type BlackoutRepo struct {
	db *sql.DB
}

// NewBlackoutRepo returns a new BlackoutRepo bound to the given database.
func NewBlackoutRepo(db *sql.DB) *BlackoutRepo { return &BlackoutRepo{db: db} }

// Create inserts a blackout period and populates its generated ID.  Nil
// start/end times store as NULL, which the conflict checker reads as an
// all-day block.
func (r *BlackoutRepo) Create(ctx context.Context, b *model.BlackoutPeriod) error {
	const q = `INSERT INTO blackout_periods
			   (facility_id, start_date, end_date, start_time, end_time, reason)
			   VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		b.FacilityID, b.StartDate.Format("2006-01-02"), b.EndDate.Format("2006-01-02"),
		b.StartTime, b.EndTime, b.Reason)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// BlackoutsCovering returns blackout periods for a facility whose date
// range contains the given date, ordered by start date then start time so
// conflict checks are deterministic.
func (r *BlackoutRepo) BlackoutsCovering(ctx context.Context, facilityID uint64, date time.Time) ([]model.BlackoutPeriod, error) {
	const q = `SELECT id, facility_id, start_date, end_date, start_time, end_time, reason, created_at, updated_at
			   FROM blackout_periods
			   WHERE facility_id = ? AND start_date <= ? AND end_date >= ?
			   ORDER BY start_date ASC, start_time ASC, id ASC`
	day := date.Format("2006-01-02")
	rows, err := r.db.QueryContext(ctx, q, facilityID, day, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBlackouts(rows)
}

// ListByFacility returns every blackout period declared for a facility,
// ordered by start date.
func (r *BlackoutRepo) ListByFacility(ctx context.Context, facilityID uint64) ([]model.BlackoutPeriod, error) {
	const q = `SELECT id, facility_id, start_date, end_date, start_time, end_time, reason, created_at, updated_at
			   FROM blackout_periods WHERE facility_id = ?
			   ORDER BY start_date ASC, start_time ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, facilityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBlackouts(rows)
}

// Delete removes a blackout period.  ErrNotFound is returned when no row
// was deleted.
func (r *BlackoutRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM blackout_periods WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanBlackouts(rows *sql.Rows) ([]model.BlackoutPeriod, error) {
	out := make([]model.BlackoutPeriod, 0)
	for rows.Next() {
		var (
			b          model.BlackoutPeriod
			startTime  sql.NullString
			endTime    sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.FacilityID, &b.StartDate, &b.EndDate,
			&startTime, &endTime, &b.Reason, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		if startTime.Valid {
			v := startTime.String
			b.StartTime = &v
		}
		if endTime.Valid {
			v := endTime.String
			b.EndTime = &v
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
