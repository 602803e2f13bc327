package access

import (
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/hoa-community-api/internal/model"
)

// Classification is the result of evaluating a credential against an
// instant.  The values are stable strings surfaced to API clients.
type Classification string

const (
	NotApproved  Classification = "not_approved"
	NotYetValid  Classification = "not_yet_valid"
	WithinWindow Classification = "within_window"
	PastValid    Classification = "past_valid"
)

// Window is the closed interval [Start, End] during which an approved
// credential may be consumed.  Both bounds are instants in the evaluator's
// configured location.
type Window struct {
	Start time.Time
	End   time.Time
}

// Evaluator classifies credentials against their visit window.  All date
// and time-of-day fields are interpreted in a single configured location
// (the deployment's local zone) so that windows never silently shift when
// the process runs under a different system timezone.
type Evaluator struct {
	loc *time.Location
	// rollMultiDayEnd extends the overnight adjustment to multi-day visits:
	// when the final day's end time is not after the start time, the window
	// end rolls forward 24 hours.  Off by default; single-day overnight
	// visits always roll.
	rollMultiDayEnd bool
}

// NewEvaluator returns an Evaluator bound to the given location.  When
// rollMultiDayEnd is true, the overnight roll-forward also applies to
// multi-day visits whose end time of day is not after the start time.
func NewEvaluator(loc *time.Location, rollMultiDayEnd bool) *Evaluator {
	if loc == nil {
		loc = time.Local
	}
	return &Evaluator{loc: loc, rollMultiDayEnd: rollMultiDayEnd}
}

// Window computes the credential's visit window without classifying it.
// The end date defaults to the start date for single-day visits.  When the
// end time of day is not after the start time on a single-day visit the
// window is treated as spanning into the next calendar day, so callers
// never need to pre-adjust dates for overnight visits.
func (e *Evaluator) Window(cred *model.VisitorCredential) (Window, error) {
	if cred.VisitDate.IsZero() {
		return Window{}, &ValidationError{Msg: "credential has no visit date"}
	}
	startClock, err := parseClock(cred.StartTime)
	if err != nil {
		return Window{}, &ValidationError{Msg: "invalid start time: " + cred.StartTime}
	}
	endClock, err := parseClock(cred.EndTime)
	if err != nil {
		return Window{}, &ValidationError{Msg: "invalid end time: " + cred.EndTime}
	}

	endDate := cred.VisitDate
	if cred.VisitEndDate != nil && !cred.VisitEndDate.IsZero() {
		endDate = *cred.VisitEndDate
	}

	start := combine(cred.VisitDate, startClock, e.loc)
	end := combine(endDate, endClock, e.loc)

	// An end time at or before the start time means the visit runs into the
	// next calendar day.  Only single-day visits roll by default; the
	// multi-day variant is ambiguous in practice and sits behind a switch.
	sameDay := endDate.Year() == cred.VisitDate.Year() && endDate.YearDay() == cred.VisitDate.YearDay()
	if !endClock.after(startClock) {
		if sameDay || e.rollMultiDayEnd {
			end = end.Add(24 * time.Hour)
		}
	}
	return Window{Start: start, End: end}, nil
}

// Evaluate classifies the credential at the given instant.  It is a pure
// function of the credential fields and now: repeated calls with identical
// inputs return identical classifications, and nothing is persisted.  Both
// window bounds are inclusive.
func (e *Evaluator) Evaluate(cred *model.VisitorCredential, now time.Time) (Classification, Window, error) {
	w, err := e.Window(cred)
	if err != nil {
		return "", Window{}, err
	}
	if cred.Status != model.CredentialApproved {
		return NotApproved, w, nil
	}
	// Go time values compare as absolute instants regardless of location,
	// but converting keeps the reported window in the caller's zone when a
	// cross-zone now sneaks in.
	w.Start = w.Start.In(now.Location())
	w.End = w.End.In(now.Location())
	switch {
	case now.Before(w.Start):
		return NotYetValid, w, nil
	case now.After(w.End):
		return PastValid, w, nil
	default:
		return WithinWindow, w, nil
	}
}

// clock is a parsed time of day.
type clock struct {
	h, m, s int
}

func (c clock) after(o clock) bool {
	if c.h != o.h {
		return c.h > o.h
	}
	if c.m != o.m {
		return c.m > o.m
	}
	return c.s > o.s
}

// parseClock accepts "HH:MM:SS" or "HH:MM", the two shapes MySQL TIME
// columns and API payloads produce.
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

// combine builds an instant from a calendar date and a time of day in loc.
func combine(date time.Time, c clock, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.h, c.m, c.s, 0, loc)
}
