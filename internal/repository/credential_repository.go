package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/hoa-community-api/internal/access"
	"github.com/iliyamo/hoa-community-api/internal/model"
)

// CredentialRepo provides access to the 'visitor_credentials' and
// 'entry_records' tables.  Status transitions are performed as single
// conditional UPDATE statements keyed on the current status, and the
// affected-row count decides success; the repository never reads a row to
// decide whether to write it.  It satisfies access.CodeDirectory and
// access.GateStore.
type CredentialRepo struct {
	db *sql.DB
}

// NewCredentialRepo returns a new CredentialRepo bound to the given database.
func NewCredentialRepo(db *sql.DB) *CredentialRepo { return &CredentialRepo{db: db} }

const credentialColumns = `id, resident_id, visitor_name, visitor_email, visitor_contact,
	vehicle_plate, reason, one_time_pin, visit_date, visit_end_date,
	visit_start_time, visit_end_time, status, approved_by, approved_at,
	declined_reason, entry_id, created_at, updated_at`

// Create inserts a new credential in pending state and populates its
// generated ID.  The one-time PIN stays NULL until approval.
func (r *CredentialRepo) Create(ctx context.Context, c *model.VisitorCredential) error {
	const q = `INSERT INTO visitor_credentials
		(resident_id, visitor_name, visitor_email, visitor_contact, vehicle_plate, reason,
		 visit_date, visit_end_date, visit_start_time, visit_end_time, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var endDate interface{}
	if c.VisitEndDate != nil {
		endDate = c.VisitEndDate.Format("2006-01-02")
	}
	res, err := r.db.ExecContext(ctx, q,
		c.ResidentID, c.VisitorName, c.VisitorEmail, c.VisitorContact, c.VehiclePlate, c.Reason,
		c.VisitDate.Format("2006-01-02"), endDate, c.StartTime, c.EndTime, model.CredentialPending)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	c.Status = model.CredentialPending
	return nil
}

// GetByID returns a single credential.  ErrNotFound is returned when no
// row exists.
func (r *CredentialRepo) GetByID(ctx context.Context, id uint64) (*model.VisitorCredential, error) {
	q := `SELECT ` + credentialColumns + ` FROM visitor_credentials WHERE id = ?`
	c, err := scanCredential(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return c, err
}

// ListByResident returns all credentials requested by a resident, newest
// first.
func (r *CredentialRepo) ListByResident(ctx context.Context, residentID uint64) ([]model.VisitorCredential, error) {
	q := `SELECT ` + credentialColumns + ` FROM visitor_credentials
		  WHERE resident_id = ? ORDER BY created_at DESC`
	return r.list(ctx, q, residentID)
}

// ListByStatus returns all credentials in the given status, oldest first so
// admins work the approval queue in arrival order.
func (r *CredentialRepo) ListByStatus(ctx context.Context, status string) ([]model.VisitorCredential, error) {
	q := `SELECT ` + credentialColumns + ` FROM visitor_credentials
		  WHERE status = ? ORDER BY created_at ASC`
	return r.list(ctx, q, status)
}

// CodeInUse reports whether any credential, in any state, holds the code.
// Codes are globally unique for the lifetime of the table.
func (r *CredentialRepo) CodeInUse(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM visitor_credentials WHERE one_time_pin = ?)`, code).Scan(&exists)
	return exists, err
}

// Approve attaches the code and flips the credential from pending to
// approved, stamping the deciding admin and time, all in one conditional
// update.  ErrAlreadyDecided is returned when the row was no longer
// pending.  The unique index on one_time_pin backstops a concurrent
// issuance that picked the same code.
func (r *CredentialRepo) Approve(ctx context.Context, id uint64, code string, adminID uint64) error {
	const q = `UPDATE visitor_credentials
			   SET status = ?, one_time_pin = ?, approved_by = ?, approved_at = UTC_TIMESTAMP()
			   WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, q, model.CredentialApproved, code, adminID, id, model.CredentialPending)
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

// Decline flips the credential from pending to declined with the given
// reason.  ErrAlreadyDecided is returned when the row was no longer
// pending.
func (r *CredentialRepo) Decline(ctx context.Context, id uint64, adminID uint64, reason string) error {
	const q = `UPDATE visitor_credentials
			   SET status = ?, declined_reason = ?, approved_by = ?, approved_at = UTC_TIMESTAMP()
			   WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, q, model.CredentialDeclined, reason, adminID, id, model.CredentialPending)
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

// FindByCode loads the credential holding the code for the check-in flow.
// access.ErrCredentialNotFound is returned when no row matches so the
// gatekeeper can reject with unknown_code.
func (r *CredentialRepo) FindByCode(ctx context.Context, code string) (*model.VisitorCredential, error) {
	q := `SELECT ` + credentialColumns + ` FROM visitor_credentials WHERE one_time_pin = ?`
	c, err := scanCredential(r.db.QueryRowContext(ctx, q, code))
	if err == sql.ErrNoRows {
		return nil, access.ErrCredentialNotFound
	}
	return c, err
}

// ConsumeAndRecordEntry marks the credential used and creates its entry
// record in one transaction.  The status flip is a conditional update on
// code and approved status; when it affects no row the credential was
// consumed (or expired) by someone else and false is returned with nothing
// written.  This is the at-most-once guarantee for check-in.
func (r *CredentialRepo) ConsumeAndRecordEntry(ctx context.Context, code string, entry *model.EntryRecord) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE visitor_credentials SET status = ? WHERE one_time_pin = ? AND status = ?`,
		model.CredentialUsed, code, model.CredentialApproved)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	ins, err := tx.ExecContext(ctx,
		`INSERT INTO entry_records (credential_id, guest_name, guest_email, guest_contact, pass_ref, arrived_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.CredentialID, entry.GuestName, entry.GuestEmail, entry.GuestContact,
		entry.PassRef, entry.ArrivedAt.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return false, err
	}
	entryID, err := ins.LastInsertId()
	if err != nil {
		return false, err
	}
	entry.ID = uint64(entryID)

	if _, err := tx.ExecContext(ctx,
		`UPDATE visitor_credentials SET entry_id = ? WHERE one_time_pin = ?`,
		entry.ID, code); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	committed = true
	return true, nil
}

// MarkExpired flips an approved credential to expired (lazy expiry at
// access time).  Affecting no rows is not an error: a concurrent writer
// already settled the terminal state.
func (r *CredentialRepo) MarkExpired(ctx context.Context, credentialID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE visitor_credentials SET status = ? WHERE id = ? AND status = ?`,
		model.CredentialExpired, credentialID, model.CredentialApproved)
	return err
}

func (r *CredentialRepo) list(ctx context.Context, q string, args ...interface{}) ([]model.VisitorCredential, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.VisitorCredential, 0)
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCredential(row rowScanner) (*model.VisitorCredential, error) {
	var (
		c              model.VisitorCredential
		vehiclePlate   sql.NullString
		reason         sql.NullString
		pin            sql.NullString
		visitEndDate   sql.NullTime
		approvedBy     sql.NullInt64
		approvedAt     sql.NullTime
		declinedReason sql.NullString
		entryID        sql.NullInt64
	)
	err := row.Scan(
		&c.ID, &c.ResidentID, &c.VisitorName, &c.VisitorEmail, &c.VisitorContact,
		&vehiclePlate, &reason, &pin, &c.VisitDate, &visitEndDate,
		&c.StartTime, &c.EndTime, &c.Status, &approvedBy, &approvedAt,
		&declinedReason, &entryID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if vehiclePlate.Valid {
		v := vehiclePlate.String
		c.VehiclePlate = &v
	}
	if reason.Valid {
		v := reason.String
		c.Reason = &v
	}
	if pin.Valid {
		v := pin.String
		c.OneTimePIN = &v
	}
	if visitEndDate.Valid {
		v := visitEndDate.Time
		c.VisitEndDate = &v
	}
	if approvedBy.Valid {
		v := uint64(approvedBy.Int64)
		c.ApprovedBy = &v
	}
	if approvedAt.Valid {
		v := approvedAt.Time
		c.ApprovedAt = &v
	}
	if declinedReason.Valid {
		v := declinedReason.String
		c.DeclinedReason = &v
	}
	if entryID.Valid {
		v := uint64(entryID.Int64)
		c.EntryID = &v
	}
	return &c, nil
}
