package model

import "time"

// BlackoutPeriod blocks a facility from being reserved, typically for
// maintenance.  The period covers every date in [StartDate, EndDate].
// When StartTime and EndTime are set, only that time slice of each covered
// date is blocked; when both are nil the whole day is blocked.
//
// Fields:
//  ID         – primary key identifier.
//  FacilityID – facility the blackout applies to.
//  StartDate  – first blocked date.
//  EndDate    – last blocked date (inclusive).
//  StartTime  – optional daily start of the blocked slice, "HH:MM:SS".
//  EndTime    – optional daily end of the blocked slice, "HH:MM:SS".
//  Reason     – why the facility is blocked (shown to residents).
//  CreatedAt  – timestamp of creation.
//  UpdatedAt  – timestamp of last update.
type BlackoutPeriod struct {
	ID         uint64    // blackout_periods.id
	FacilityID uint64    // blackout_periods.facility_id
	StartDate  time.Time // blackout_periods.start_date (DATE)
	EndDate    time.Time // blackout_periods.end_date (DATE)
	StartTime  *string   // blackout_periods.start_time (TIME, nullable)
	EndTime    *string   // blackout_periods.end_time (TIME, nullable)
	Reason     string    // blackout_periods.reason
	CreatedAt  time.Time // blackout_periods.created_at
	UpdatedAt  time.Time // blackout_periods.updated_at
}
