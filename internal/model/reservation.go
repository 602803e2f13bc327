package model

import "time"

// Reservation statuses as stored in reservations.status.  Only pending and
// approved reservations occupy the timeline; rejected ones free the slot.
const (
	ReservationPending  = "pending"
	ReservationApproved = "approved"
	ReservationRejected = "rejected"
)

// Reservation records a resident's booking of a facility for a time slot on
// a single calendar date.  The slot is the half-open interval
// [StartTime, EndTime) on Date.
//
// Fields:
//  ID         – primary key identifier.
//  UserID     – resident who booked the slot.
//  FacilityID – facility being reserved.
//  Date       – calendar date of the booking.
//  StartTime  – slot start, "HH:MM:SS".
//  EndTime    – slot end, "HH:MM:SS".
//  Status     – pending, approved or rejected.
//  CreatedAt  – timestamp of creation.
type Reservation struct {
	ID         uint64    // reservations.id
	UserID     uint64    // reservations.user_id
	FacilityID uint64    // reservations.facility_id
	Date       time.Time // reservations.date (DATE)
	StartTime  string    // reservations.start_time (TIME)
	EndTime    string    // reservations.end_time (TIME)
	Status     string    // reservations.status
	CreatedAt  time.Time // reservations.created_at
}
