package booking

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hoa-community-api/internal/model"
)

// fakeTimeline serves canned rows, sorted ascending by start time to match
// the repository's ORDER BY contract.
type fakeTimeline struct {
	reservations []model.Reservation
	blackouts    []model.BlackoutPeriod
}

func (f *fakeTimeline) ActiveReservations(_ context.Context, facilityID uint64, date time.Time) ([]model.Reservation, error) {
	out := make([]model.Reservation, 0)
	for _, r := range f.reservations {
		if r.FacilityID == facilityID && r.Date.Equal(date) &&
			(r.Status == model.ReservationPending || r.Status == model.ReservationApproved) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeTimeline) BlackoutsCovering(_ context.Context, facilityID uint64, date time.Time) ([]model.BlackoutPeriod, error) {
	out := make([]model.BlackoutPeriod, 0)
	for _, b := range f.blackouts {
		if b.FacilityID == facilityID && !date.Before(b.StartDate) && !date.After(b.EndDate) {
			out = append(out, b)
		}
	}
	return out, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func strptr(s string) *string { return &s }

func TestCheckReservationOverlap(t *testing.T) {
	d := day(2024, time.May, 10)
	tl := &fakeTimeline{reservations: []model.Reservation{
		{ID: 1, FacilityID: 3, Date: d, StartTime: "10:00:00", EndTime: "11:00:00", Status: model.ReservationApproved},
	}}
	checker := NewChecker(tl)

	cases := []struct {
		name       string
		start, end string
		conflict   bool
	}{
		{"straddles existing start", "09:30:00", "10:30:00", true},
		{"inside existing", "10:15:00", "10:45:00", true},
		{"straddles existing end", "10:30:00", "11:30:00", true},
		{"covers existing", "09:00:00", "12:00:00", true},
		{"identical slot", "10:00:00", "11:00:00", true},
		{"ends at existing start", "09:00:00", "10:00:00", false},
		{"starts at existing end", "11:00:00", "12:00:00", false},
		{"disjoint later", "13:00:00", "14:00:00", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := checker.Check(context.Background(), 3, d, tc.start, tc.end, 0)
			if tc.conflict {
				var cerr *ConflictError
				require.ErrorAs(t, err, &cerr)
				assert.Equal(t, ConflictReservation, cerr.Kind)
				assert.Equal(t, uint64(1), cerr.ID)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckIgnoresRejectedAndOtherDays(t *testing.T) {
	d := day(2024, time.May, 10)
	tl := &fakeTimeline{reservations: []model.Reservation{
		{ID: 1, FacilityID: 3, Date: d, StartTime: "10:00:00", EndTime: "11:00:00", Status: model.ReservationRejected},
		{ID: 2, FacilityID: 3, Date: day(2024, time.May, 11), StartTime: "10:00:00", EndTime: "11:00:00", Status: model.ReservationApproved},
		{ID: 3, FacilityID: 4, Date: d, StartTime: "10:00:00", EndTime: "11:00:00", Status: model.ReservationApproved},
	}}
	err := NewChecker(tl).Check(context.Background(), 3, d, "10:00:00", "11:00:00", 0)
	assert.NoError(t, err)
}

func TestCheckExcludesOwnReservation(t *testing.T) {
	d := day(2024, time.May, 10)
	tl := &fakeTimeline{reservations: []model.Reservation{
		{ID: 9, FacilityID: 3, Date: d, StartTime: "10:00:00", EndTime: "11:00:00", Status: model.ReservationPending},
	}}
	checker := NewChecker(tl)

	require.NoError(t, checker.Check(context.Background(), 3, d, "10:00:00", "11:00:00", 9))
	assert.Error(t, checker.Check(context.Background(), 3, d, "10:00:00", "11:00:00", 0))
}

func TestCheckReportsEarliestConflictFirst(t *testing.T) {
	d := day(2024, time.May, 10)
	tl := &fakeTimeline{reservations: []model.Reservation{
		{ID: 5, FacilityID: 3, Date: d, StartTime: "14:00:00", EndTime: "15:00:00", Status: model.ReservationApproved},
		{ID: 4, FacilityID: 3, Date: d, StartTime: "10:00:00", EndTime: "12:00:00", Status: model.ReservationApproved},
	}}
	err := NewChecker(tl).Check(context.Background(), 3, d, "09:00:00", "16:00:00", 0)
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, uint64(4), cerr.ID)
}

func TestCheckAllDayBlackout(t *testing.T) {
	tl := &fakeTimeline{blackouts: []model.BlackoutPeriod{
		{ID: 7, FacilityID: 3, StartDate: day(2024, time.February, 1), EndDate: day(2024, time.February, 3), Reason: "pool resurfacing"},
	}}
	checker := NewChecker(tl)

	err := checker.Check(context.Background(), 3, day(2024, time.February, 2), "06:00:00", "07:00:00", 0)
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, ConflictBlackout, cerr.Kind)
	assert.Equal(t, "pool resurfacing", cerr.Reason)
	assert.Empty(t, cerr.StartTime)

	// Dates outside the range are free.
	assert.NoError(t, checker.Check(context.Background(), 3, day(2024, time.February, 4), "06:00:00", "07:00:00", 0))
}

func TestCheckTimedBlackout(t *testing.T) {
	tl := &fakeTimeline{blackouts: []model.BlackoutPeriod{
		{
			ID: 8, FacilityID: 3,
			StartDate: day(2024, time.February, 1), EndDate: day(2024, time.February, 1),
			StartTime: strptr("08:00:00"), EndTime: strptr("12:00:00"),
			Reason: "court repainting",
		},
	}}
	checker := NewChecker(tl)

	err := checker.Check(context.Background(), 3, day(2024, time.February, 1), "11:00:00", "13:00:00", 0)
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, ConflictBlackout, cerr.Kind)

	// The blackout interval is half-open too: starting at its end is fine.
	assert.NoError(t, checker.Check(context.Background(), 3, day(2024, time.February, 1), "12:00:00", "13:00:00", 0))
}

func TestCheckReservationsBeforeBlackouts(t *testing.T) {
	d := day(2024, time.May, 10)
	tl := &fakeTimeline{
		reservations: []model.Reservation{
			{ID: 1, FacilityID: 3, Date: d, StartTime: "10:00:00", EndTime: "11:00:00", Status: model.ReservationApproved},
		},
		blackouts: []model.BlackoutPeriod{
			{ID: 2, FacilityID: 3, StartDate: d, EndDate: d, Reason: "maintenance"},
		},
	}
	err := NewChecker(tl).Check(context.Background(), 3, d, "10:00:00", "11:00:00", 0)
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, ConflictReservation, cerr.Kind)
}

func TestCheckDegenerateInterval(t *testing.T) {
	checker := NewChecker(&fakeTimeline{})
	for _, tc := range [][2]string{
		{"11:00:00", "10:00:00"},
		{"10:00:00", "10:00:00"},
	} {
		err := checker.Check(context.Background(), 3, day(2024, time.May, 10), tc[0], tc[1], 0)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	}
}

func TestCheckDeterministicPerInputSet(t *testing.T) {
	d := day(2024, time.May, 10)
	tl := &fakeTimeline{reservations: []model.Reservation{
		{ID: 2, FacilityID: 3, Date: d, StartTime: "09:00:00", EndTime: "10:30:00", Status: model.ReservationPending},
		{ID: 1, FacilityID: 3, Date: d, StartTime: "10:00:00", EndTime: "11:00:00", Status: model.ReservationApproved},
	}}
	checker := NewChecker(tl)
	for i := 0; i < 10; i++ {
		err := checker.Check(context.Background(), 3, d, "09:30:00", "11:30:00", 0)
		var cerr *ConflictError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, uint64(2), cerr.ID)
	}
}
