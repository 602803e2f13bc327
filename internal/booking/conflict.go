package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/hoa-community-api/internal/model"
)

// Timeline is the read surface the conflict checker needs.  Both methods
// must return rows in a stable order (ascending start time, then id) so
// that the first conflict reported is deterministic for a given data set.
type Timeline interface {
	// ActiveReservations returns reservations for the facility and date
	// whose status still occupies the timeline (pending or approved).
	ActiveReservations(ctx context.Context, facilityID uint64, date time.Time) ([]model.Reservation, error)
	// BlackoutsCovering returns blackout periods whose date range contains
	// the given date.
	BlackoutsCovering(ctx context.Context, facilityID uint64, date time.Time) ([]model.BlackoutPeriod, error)
}

// Checker decides whether a proposed reservation slot may be taken.  The
// check is advisory: it has no side effects, and the caller must still
// insert under the storage layer's uniqueness constraint to close the race
// between two simultaneous conflicting inserts.
type Checker struct {
	tl Timeline
}

// NewChecker returns a Checker reading from the given timeline.
func NewChecker(tl Timeline) *Checker {
	return &Checker{tl: tl}
}

// Check validates the proposed half-open slot [start, end) for a facility
// on a date.  excludeID names a reservation to skip, so an existing booking
// can be re-validated against everything but itself; pass 0 to exclude
// nothing.  It returns nil when the slot is free, a *ValidationError for
// malformed input, or a *ConflictError describing the first conflicting
// row.  Reservations are checked before blackout periods.
func (c *Checker) Check(ctx context.Context, facilityID uint64, date time.Time, start, end string, excludeID uint64) error {
	propStart, err := parseClock(start)
	if err != nil {
		return &ValidationError{Msg: "invalid start time: " + start}
	}
	propEnd, err := parseClock(end)
	if err != nil {
		return &ValidationError{Msg: "invalid end time: " + end}
	}
	if !propEnd.after(propStart) {
		return &ValidationError{Msg: "end time must be after start time"}
	}

	existing, err := c.tl.ActiveReservations(ctx, facilityID, date)
	if err != nil {
		return err
	}
	for _, r := range existing {
		if excludeID != 0 && r.ID == excludeID {
			continue
		}
		resStart, err := parseClock(r.StartTime)
		if err != nil {
			return fmt.Errorf("reservation %d has invalid start time %q", r.ID, r.StartTime)
		}
		resEnd, err := parseClock(r.EndTime)
		if err != nil {
			return fmt.Errorf("reservation %d has invalid end time %q", r.ID, r.EndTime)
		}
		// Half-open overlap: [a,b) and [c,d) collide iff a < d and b > c,
		// so back-to-back slots sharing a boundary do not conflict.
		if propStart.before(resEnd) && propEnd.after(resStart) {
			return &ConflictError{
				Kind:      ConflictReservation,
				ID:        r.ID,
				Date:      date,
				StartTime: r.StartTime,
				EndTime:   r.EndTime,
			}
		}
	}

	blackouts, err := c.tl.BlackoutsCovering(ctx, facilityID, date)
	if err != nil {
		return err
	}
	for _, b := range blackouts {
		if b.StartTime == nil || b.EndTime == nil {
			// No time bounds: the whole day is blocked for every covered date.
			return &ConflictError{
				Kind:   ConflictBlackout,
				ID:     b.ID,
				Date:   date,
				Reason: b.Reason,
			}
		}
		bStart, err := parseClock(*b.StartTime)
		if err != nil {
			return fmt.Errorf("blackout %d has invalid start time %q", b.ID, *b.StartTime)
		}
		bEnd, err := parseClock(*b.EndTime)
		if err != nil {
			return fmt.Errorf("blackout %d has invalid end time %q", b.ID, *b.EndTime)
		}
		if propStart.before(bEnd) && propEnd.after(bStart) {
			return &ConflictError{
				Kind:      ConflictBlackout,
				ID:        b.ID,
				Date:      date,
				StartTime: *b.StartTime,
				EndTime:   *b.EndTime,
				Reason:    b.Reason,
			}
		}
	}
	return nil
}

// clock is a parsed time of day.
type clock struct {
	h, m, s int
}

func (c clock) after(o clock) bool  { return c.cmp(o) > 0 }
func (c clock) before(o clock) bool { return c.cmp(o) < 0 }

func (c clock) cmp(o clock) int {
	a := c.h*3600 + c.m*60 + c.s
	b := o.h*3600 + o.m*60 + o.s
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// parseClock accepts "HH:MM:SS" or "HH:MM".
func parseClock(s string) (clock, error) {
	s = strings.TrimSpace(s)
	var c clock
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &c.h, &c.m, &c.s); err != nil {
		c.s = 0
		if _, err2 := fmt.Sscanf(s, "%d:%d", &c.h, &c.m); err2 != nil {
			return clock{}, err
		}
	}
	if c.h < 0 || c.h > 23 || c.m < 0 || c.m > 59 || c.s < 0 || c.s > 59 {
		return clock{}, fmt.Errorf("time of day out of range: %q", s)
	}
	return c, nil
}
