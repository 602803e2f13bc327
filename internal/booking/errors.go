// Package booking implements the reservation-slot policy core: half-open
// interval conflict detection against existing reservations and blackout
// periods.  Like the access package it talks to storage through a small
// interface and owns no HTTP or SQL details.
package booking

import (
	"fmt"
	"time"
)

// ValidationError reports malformed input to the conflict checker, such as
// a proposed interval whose end does not come after its start.  It is
// caller-fixable and surfaced verbatim.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Conflict kinds carried by ConflictError.
const (
	ConflictReservation = "reservation"
	ConflictBlackout    = "blackout"
)

// ConflictError reports an overlap between the proposed slot and an
// existing reservation or blackout period.  It identifies the conflicting
// row and its window so the caller can show the resident what is in the
// way.  For all-day blackouts StartTime and EndTime are empty.
type ConflictError struct {
	Kind      string    // reservation or blackout
	ID        uint64    // id of the conflicting row
	Date      time.Time // date the conflict falls on
	StartTime string    // conflicting window start, "HH:MM:SS" (empty for all-day)
	EndTime   string    // conflicting window end, "HH:MM:SS" (empty for all-day)
	Reason    string    // blackout reason, when applicable
}

func (e *ConflictError) Error() string {
	day := e.Date.Format("2006-01-02")
	if e.Kind == ConflictBlackout && e.StartTime == "" {
		return fmt.Sprintf("facility is blocked all day on %s", day)
	}
	return fmt.Sprintf("slot overlaps existing %s %s–%s on %s", e.Kind, e.StartTime, e.EndTime, day)
}
