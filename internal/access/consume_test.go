package access

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hoa-community-api/internal/model"
)

// fakeGateStore keeps one credential in memory and implements the
// conditional-update semantics the real repository provides: the status
// swap happens under a lock keyed on the current status, so racing
// consumers observe exactly one success.
type fakeGateStore struct {
	mu      sync.Mutex
	cred    *model.VisitorCredential
	entries []*model.EntryRecord
}

func (s *fakeGateStore) FindByCode(_ context.Context, code string) (*model.VisitorCredential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred == nil || s.cred.OneTimePIN == nil || *s.cred.OneTimePIN != code {
		return nil, ErrCredentialNotFound
	}
	cp := *s.cred
	return &cp, nil
}

func (s *fakeGateStore) ConsumeAndRecordEntry(_ context.Context, code string, entry *model.EntryRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred == nil || s.cred.OneTimePIN == nil || *s.cred.OneTimePIN != code {
		return false, nil
	}
	if s.cred.Status != model.CredentialApproved {
		return false, nil
	}
	s.cred.Status = model.CredentialUsed
	entry.ID = uint64(len(s.entries) + 1)
	s.cred.EntryID = &entry.ID
	s.entries = append(s.entries, entry)
	return true, nil
}

func (s *fakeGateStore) MarkExpired(_ context.Context, credentialID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred != nil && s.cred.ID == credentialID && s.cred.Status == model.CredentialApproved {
		s.cred.Status = model.CredentialExpired
	}
	return nil
}

func newGateFixture(status string) (*fakeGateStore, *GateKeeper) {
	pin := "654321"
	store := &fakeGateStore{
		cred: &model.VisitorCredential{
			ID:         42,
			ResidentID: 7,
			OneTimePIN: &pin,
			VisitDate:  date(2024, time.March, 1),
			StartTime:  "09:00:00",
			EndTime:    "17:00:00",
			Status:     status,
		},
	}
	return store, NewGateKeeper(store, NewEvaluator(phZone, false))
}

var guest = Guest{Name: "Dana Cruz", Email: "dana@example.com", Contact: "0917-555-0000"}

func TestAttemptConsumeHappyPath(t *testing.T) {
	store, keeper := newGateFixture(model.CredentialApproved)
	now := time.Date(2024, time.March, 1, 9, 0, 0, 0, phZone)

	entry, err := keeper.AttemptConsume(context.Background(), "654321", guest, now)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, uint64(42), entry.CredentialID)
	assert.NotEmpty(t, entry.PassRef)
	assert.Equal(t, now, entry.ArrivedAt)
	assert.Equal(t, model.CredentialUsed, store.cred.Status)
	require.NotNil(t, store.cred.EntryID)
}

func TestAttemptConsumeRejections(t *testing.T) {
	now := time.Date(2024, time.March, 1, 12, 0, 0, 0, phZone)

	cases := []struct {
		name   string
		status string
		code   string
		at     time.Time
		want   Reason
	}{
		{"unknown code", model.CredentialApproved, "000000", now, ReasonUnknownCode},
		{"pending approval", model.CredentialPending, "654321", now, ReasonPendingApproval},
		{"declined", model.CredentialDeclined, "654321", now, ReasonDeclined},
		{"already used", model.CredentialUsed, "654321", now, ReasonAlreadyUsed},
		{"expired row", model.CredentialExpired, "654321", now, ReasonPastValid},
		{"too early", model.CredentialApproved, "654321", time.Date(2024, time.March, 1, 8, 59, 0, 0, phZone), ReasonNotYetValid},
		{"too late", model.CredentialApproved, "654321", time.Date(2024, time.March, 1, 18, 0, 0, 0, phZone), ReasonPastValid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, keeper := newGateFixture(tc.status)
			_, err := keeper.AttemptConsume(context.Background(), tc.code, guest, tc.at)
			var serr *CredentialStateError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, tc.want, serr.Reason)
		})
	}
}

func TestAttemptConsumeRejectionCarriesWindowContext(t *testing.T) {
	_, keeper := newGateFixture(model.CredentialApproved)

	_, err := keeper.AttemptConsume(context.Background(), "654321", guest, time.Date(2024, time.March, 1, 8, 0, 0, 0, phZone))
	var serr *CredentialStateError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, ReasonNotYetValid, serr.Reason)
	assert.Equal(t, time.Date(2024, time.March, 1, 9, 0, 0, 0, phZone), serr.WindowStart)

	_, err = keeper.AttemptConsume(context.Background(), "654321", guest, time.Date(2024, time.March, 1, 18, 0, 0, 0, phZone))
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, ReasonPastValid, serr.Reason)
	assert.Equal(t, time.Date(2024, time.March, 1, 17, 0, 0, 0, phZone), serr.WindowEnd)
}

func TestAttemptConsumePersistsLazyExpiry(t *testing.T) {
	store, keeper := newGateFixture(model.CredentialApproved)
	_, err := keeper.AttemptConsume(context.Background(), "654321", guest, time.Date(2024, time.March, 1, 18, 0, 0, 0, phZone))
	var serr *CredentialStateError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, model.CredentialExpired, store.cred.Status)
}

// Used status must win over the window: a consumed credential evaluated
// after its window still reports already_used, not past_valid.
func TestAlreadyUsedShortCircuitsWindow(t *testing.T) {
	store, keeper := newGateFixture(model.CredentialApproved)
	within := time.Date(2024, time.March, 1, 10, 0, 0, 0, phZone)

	_, err := keeper.AttemptConsume(context.Background(), "654321", guest, within)
	require.NoError(t, err)

	// Second attempt inside the window.
	_, err = keeper.AttemptConsume(context.Background(), "654321", guest, within)
	var serr *CredentialStateError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, ReasonAlreadyUsed, serr.Reason)

	// And after the window closed the answer is still already_used.
	_, err = keeper.AttemptConsume(context.Background(), "654321", guest, time.Date(2024, time.March, 1, 18, 0, 0, 0, phZone))
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, ReasonAlreadyUsed, serr.Reason)
	assert.Equal(t, model.CredentialUsed, store.cred.Status)
}

func TestAttemptConsumeAtMostOnceUnderConcurrency(t *testing.T) {
	store, keeper := newGateFixture(model.CredentialApproved)
	now := time.Date(2024, time.March, 1, 10, 0, 0, 0, phZone)

	const attempts = 16
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := keeper.AttemptConsume(context.Background(), "654321", guest, now)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	alreadyUsed := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var serr *CredentialStateError
		require.ErrorAs(t, err, &serr)
		require.Equal(t, ReasonAlreadyUsed, serr.Reason)
		alreadyUsed++
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, alreadyUsed)
	assert.Len(t, store.entries, 1)
}
