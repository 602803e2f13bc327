package model

import "time"

// Credential statuses as stored in visitor_credentials.status.  The
// lifecycle is pending → approved|declined, then approved → used|expired.
// declined, used and expired are terminal.
const (
	CredentialPending  = "pending"
	CredentialApproved = "approved"
	CredentialDeclined = "declined"
	CredentialExpired  = "expired"
	CredentialUsed     = "used"
)

// VisitorCredential is a time-limited, single-use gate pass requested by a
// resident for a named visitor.  The one-time PIN is generated lazily when
// an admin approves the request; until then OneTimePIN is nil.  The visit
// window is described by a start date, an optional end date (multi-day
// visits) and start/end times of day.  When the end time precedes the start
// time on a single-day visit, the window spans into the next calendar day.
//
// Fields:
//  ID             – primary key identifier.
//  ResidentID     – homeowner who requested the visit.
//  VisitorName    – full name of the visitor.
//  VisitorEmail   – email the approval notification is sent to.
//  VisitorContact – phone number of the visitor.
//  VehiclePlate   – plate number when arriving by car (nullable).
//  Reason         – reason for the visit (nullable).
//  OneTimePIN     – unique 6-digit code, set on approval (nullable).
//  VisitDate      – first day of the visit window.
//  VisitEndDate   – last day for multi-day visits (nullable; defaults to VisitDate).
//  StartTime      – time of day the window opens, "HH:MM:SS".
//  EndTime        – time of day the window closes, "HH:MM:SS".
//  Status         – lifecycle status, see constants above.
//  ApprovedBy     – admin who decided the request (nullable).
//  ApprovedAt     – when the decision was made (nullable).
//  DeclinedReason – reason given on decline (nullable).
//  EntryID        – entry record created when the PIN was consumed (nullable).
//  CreatedAt      – timestamp of creation.
//  UpdatedAt      – timestamp of last update.
type VisitorCredential struct {
	ID             uint64     // visitor_credentials.id
	ResidentID     uint64     // visitor_credentials.resident_id
	VisitorName    string     // visitor_credentials.visitor_name
	VisitorEmail   string     // visitor_credentials.visitor_email
	VisitorContact string     // visitor_credentials.visitor_contact
	VehiclePlate   *string    // visitor_credentials.vehicle_plate (nullable)
	Reason         *string    // visitor_credentials.reason (nullable)
	OneTimePIN     *string    // visitor_credentials.one_time_pin (nullable, unique)
	VisitDate      time.Time  // visitor_credentials.visit_date (DATE)
	VisitEndDate   *time.Time // visitor_credentials.visit_end_date (DATE, nullable)
	StartTime      string     // visitor_credentials.visit_start_time (TIME)
	EndTime        string     // visitor_credentials.visit_end_time (TIME)
	Status         string     // visitor_credentials.status
	ApprovedBy     *uint64    // visitor_credentials.approved_by (nullable)
	ApprovedAt     *time.Time // visitor_credentials.approved_at (nullable)
	DeclinedReason *string    // visitor_credentials.declined_reason (nullable)
	EntryID        *uint64    // visitor_credentials.entry_id (nullable)
	CreatedAt      time.Time  // visitor_credentials.created_at
	UpdatedAt      time.Time  // visitor_credentials.updated_at
}

// EntryRecord logs a successful check-in at the gate.  Exactly one entry
// record exists per consumed credential; it is created in the same
// transaction that flips the credential to "used".
//
// Fields:
//  ID           – primary key identifier.
//  CredentialID – credential that was consumed.
//  GuestName    – name stated by the guest at the gate.
//  GuestEmail   – email stated by the guest at the gate.
//  GuestContact – contact number stated by the guest (may be empty).
//  PassRef      – opaque reference printed on the gate pass.
//  ArrivedAt    – arrival timestamp recorded at consumption.
type EntryRecord struct {
	ID           uint64    // entry_records.id
	CredentialID uint64    // entry_records.credential_id
	GuestName    string    // entry_records.guest_name
	GuestEmail   string    // entry_records.guest_email
	GuestContact string    // entry_records.guest_contact
	PassRef      string    // entry_records.pass_ref
	ArrivedAt    time.Time // entry_records.arrived_at
}
