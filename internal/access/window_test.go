package access

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hoa-community-api/internal/model"
)

// phZone matches the deployment default timezone used in config.
var phZone = time.FixedZone("PHT", 8*3600)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func approvedCred(visitDate time.Time, start, end string) *model.VisitorCredential {
	pin := "123456"
	return &model.VisitorCredential{
		ID:         1,
		ResidentID: 7,
		OneTimePIN: &pin,
		VisitDate:  visitDate,
		StartTime:  start,
		EndTime:    end,
		Status:     model.CredentialApproved,
	}
}

func TestEvaluateClassifiesAroundWindow(t *testing.T) {
	eval := NewEvaluator(phZone, false)
	cred := approvedCred(date(2024, time.March, 1), "09:00:00", "17:00:00")

	cases := []struct {
		name string
		now  time.Time
		want Classification
	}{
		{"before window", time.Date(2024, time.March, 1, 8, 59, 0, 0, phZone), NotYetValid},
		{"at window start", time.Date(2024, time.March, 1, 9, 0, 0, 0, phZone), WithinWindow},
		{"inside window", time.Date(2024, time.March, 1, 12, 0, 0, 0, phZone), WithinWindow},
		{"at window end", time.Date(2024, time.March, 1, 17, 0, 0, 0, phZone), WithinWindow},
		{"one second past end", time.Date(2024, time.March, 1, 17, 0, 1, 0, phZone), PastValid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, w, err := eval.Evaluate(cred, tc.now)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.True(t, w.End.After(w.Start))
		})
	}
}

func TestEvaluateOvernightWindowRollsForward(t *testing.T) {
	eval := NewEvaluator(phZone, false)
	// 2024-01-10 22:00 through 02:00 spans into 2024-01-11.
	cred := approvedCred(date(2024, time.January, 10), "22:00:00", "02:00:00")

	got, w, err := eval.Evaluate(cred, time.Date(2024, time.January, 11, 1, 0, 0, 0, phZone))
	require.NoError(t, err)
	assert.Equal(t, WithinWindow, got)
	assert.Equal(t, time.Date(2024, time.January, 10, 22, 0, 0, 0, phZone), w.Start)
	assert.Equal(t, time.Date(2024, time.January, 11, 2, 0, 0, 0, phZone), w.End)
}

func TestEvaluateMultiDayEndRollIsConfigurable(t *testing.T) {
	endDate := date(2024, time.January, 12)
	cred := approvedCred(date(2024, time.January, 10), "22:00:00", "02:00:00")
	cred.VisitEndDate = &endDate

	// Default: the final day does not roll; the window closes 01-12 02:00.
	_, w, err := NewEvaluator(phZone, false).Evaluate(cred, time.Date(2024, time.January, 12, 3, 0, 0, 0, phZone))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 12, 2, 0, 0, 0, phZone), w.End)

	// With the switch on, the final day rolls forward 24 hours.
	_, w, err = NewEvaluator(phZone, true).Evaluate(cred, time.Date(2024, time.January, 12, 3, 0, 0, 0, phZone))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 13, 2, 0, 0, 0, phZone), w.End)
}

func TestEvaluateMultiDayWindow(t *testing.T) {
	eval := NewEvaluator(phZone, false)
	endDate := date(2024, time.June, 3)
	cred := approvedCred(date(2024, time.June, 1), "08:00:00", "18:00:00")
	cred.VisitEndDate = &endDate

	got, _, err := eval.Evaluate(cred, time.Date(2024, time.June, 2, 23, 0, 0, 0, phZone))
	require.NoError(t, err)
	assert.Equal(t, WithinWindow, got)
}

func TestEvaluateNonApprovedStatuses(t *testing.T) {
	eval := NewEvaluator(phZone, false)
	for _, status := range []string{model.CredentialPending, model.CredentialDeclined, model.CredentialExpired, model.CredentialUsed} {
		cred := approvedCred(date(2024, time.March, 1), "09:00:00", "17:00:00")
		cred.Status = status
		got, _, err := eval.Evaluate(cred, time.Date(2024, time.March, 1, 12, 0, 0, 0, phZone))
		require.NoError(t, err)
		assert.Equal(t, NotApproved, got, "status %s", status)
	}
}

func TestEvaluateIsPure(t *testing.T) {
	eval := NewEvaluator(phZone, false)
	cred := approvedCred(date(2024, time.March, 1), "09:00:00", "17:00:00")
	now := time.Date(2024, time.March, 1, 10, 30, 0, 0, phZone)

	first, w1, err := eval.Evaluate(cred, now)
	require.NoError(t, err)
	second, w2, err := eval.Evaluate(cred, now)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, w1, w2)
}

func TestEvaluateCrossZoneNow(t *testing.T) {
	eval := NewEvaluator(phZone, false)
	cred := approvedCred(date(2024, time.March, 1), "09:00:00", "17:00:00")
	// 01:30 UTC is 09:30 in the configured zone: inside the window.
	got, _, err := eval.Evaluate(cred, time.Date(2024, time.March, 1, 1, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, WithinWindow, got)
}

func TestWindowRejectsMalformedTimes(t *testing.T) {
	eval := NewEvaluator(phZone, false)
	cred := approvedCred(date(2024, time.March, 1), "nine", "17:00:00")
	_, err := eval.Window(cred)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestParseClockShapes(t *testing.T) {
	c, err := parseClock("22:00:00")
	require.NoError(t, err)
	assert.Equal(t, clock{22, 0, 0}, c)

	c, err = parseClock("08:15")
	require.NoError(t, err)
	assert.Equal(t, clock{8, 15, 0}, c)

	_, err = parseClock("25:00")
	assert.Error(t, err)
}
