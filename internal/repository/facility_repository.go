package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/hoa-community-api/internal/model"
)

// FacilityRepo provides access to the 'facilities' table.  Facilities are
// managed by admins and browsed by everyone; bookings and blackout periods
// reference them by id.
type FacilityRepo struct {
	db *sql.DB
}

// NewFacilityRepo returns a new FacilityRepo bound to the given database.
func NewFacilityRepo(db *sql.DB) *FacilityRepo { return &FacilityRepo{db: db} }

// Create inserts a facility and populates its generated ID.
func (r *FacilityRepo) Create(ctx context.Context, f *model.Facility) error {
	const q = `INSERT INTO facilities (name, description, is_active) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, f.Name, f.Description, f.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	return nil
}

// GetByID returns a single facility.  sql.ErrNoRows is returned when the
// facility does not exist.
func (r *FacilityRepo) GetByID(ctx context.Context, id uint64) (*model.Facility, error) {
	const q = `SELECT id, name, description, is_active, created_at FROM facilities WHERE id = ?`
	var f model.Facility
	err := r.db.QueryRowContext(ctx, q, id).Scan(&f.ID, &f.Name, &f.Description, &f.IsActive, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ListActive returns all active facilities ordered by name for browsing.
func (r *FacilityRepo) ListActive(ctx context.Context) ([]model.Facility, error) {
	const q = `SELECT id, name, description, is_active, created_at
			   FROM facilities WHERE is_active = 1 ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Facility, 0)
	for rows.Next() {
		var f model.Facility
		if err := rows.Scan(&f.ID, &f.Name, &f.Description, &f.IsActive, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
