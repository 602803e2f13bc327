package model

import "time"

// Facility is a shared amenity residents can reserve, such as the
// clubhouse, the basketball court or the function hall.  Bookings and
// blackout periods reference facilities by ID only.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name of the facility.
//  Description – free-form description shown to residents.
//  IsActive    – inactive facilities are hidden from browsing.
//  CreatedAt   – timestamp of creation.
type Facility struct {
	ID          uint64    // facilities.id
	Name        string    // facilities.name
	Description string    // facilities.description
	IsActive    bool      // facilities.is_active
	CreatedAt   time.Time // facilities.created_at
}
