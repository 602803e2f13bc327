package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hoa-community-api/internal/access"
	"github.com/iliyamo/hoa-community-api/internal/model"
	"github.com/iliyamo/hoa-community-api/internal/notifier"
)

// memGateStore keeps a single credential in memory and mimics the
// conditional-update semantics of the real repository.
type memGateStore struct {
	mu   sync.Mutex
	cred *model.VisitorCredential
}

func (s *memGateStore) FindByCode(_ context.Context, code string) (*model.VisitorCredential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred == nil || s.cred.OneTimePIN == nil || *s.cred.OneTimePIN != code {
		return nil, access.ErrCredentialNotFound
	}
	cp := *s.cred
	return &cp, nil
}

func (s *memGateStore) ConsumeAndRecordEntry(_ context.Context, code string, entry *model.EntryRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred == nil || s.cred.OneTimePIN == nil || *s.cred.OneTimePIN != code ||
		s.cred.Status != model.CredentialApproved {
		return false, nil
	}
	s.cred.Status = model.CredentialUsed
	entry.ID = 1
	s.cred.EntryID = &entry.ID
	return true, nil
}

func (s *memGateStore) MarkExpired(_ context.Context, credentialID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred != nil && s.cred.ID == credentialID && s.cred.Status == model.CredentialApproved {
		s.cred.Status = model.CredentialExpired
	}
	return nil
}

// newCheckinFixture wires a GateHandler over an in-memory store holding one
// approved credential with PIN 654321, valid 2024-05-20 09:00-17:00 UTC.
func newCheckinFixture(t *testing.T) (*GateHandler, *memGateStore) {
	t.Helper()
	pin := "654321"
	store := &memGateStore{cred: &model.VisitorCredential{
		ID:           7,
		ResidentID:   3,
		VisitorName:  "Ana Cruz",
		VisitorEmail: "ana@example.com",
		OneTimePIN:   &pin,
		VisitDate:    time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC),
		StartTime:    "09:00:00",
		EndTime:      "17:00:00",
		Status:       model.CredentialApproved,
	}}
	eval := access.NewEvaluator(time.UTC, false)
	h := NewGateHandler(access.NewGateKeeper(store, eval), notifier.NewLog())
	h.Now = func() time.Time { return time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC) }
	return h, store
}

func doCheckin(t *testing.T, h *GateHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/v1/checkin", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := h.CheckIn(c)
	if err != nil {
		// Validator failures surface as HTTPError; render them like the server would.
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestCheckInAdmitted(t *testing.T) {
	h, store := newCheckinFixture(t)
	rec := doCheckin(t, h, `{"code":"654321","name":"Ana Cruz","email":"ana@example.com"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "admitted", body["status"])
	assert.NotEmpty(t, body["pass_ref"])
	assert.Equal(t, model.CredentialUsed, store.cred.Status)
}

func TestCheckInSecondAttemptRejected(t *testing.T) {
	h, _ := newCheckinFixture(t)
	first := doCheckin(t, h, `{"code":"654321","name":"Ana Cruz"}`)
	require.Equal(t, http.StatusOK, first.Code)

	second := doCheckin(t, h, `{"code":"654321","name":"Ana Cruz"}`)
	require.Equal(t, http.StatusConflict, second.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &body))
	assert.Equal(t, "already_used", body["status"])
}

func TestCheckInUnknownCode(t *testing.T) {
	h, _ := newCheckinFixture(t)
	rec := doCheckin(t, h, `{"code":"111111","name":"Ana Cruz"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unknown_code", body["status"])
}

func TestCheckInOutsideWindow(t *testing.T) {
	h, _ := newCheckinFixture(t)

	h.Now = func() time.Time { return time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC) }
	early := doCheckin(t, h, `{"code":"654321","name":"Ana Cruz"}`)
	require.Equal(t, http.StatusConflict, early.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(early.Body.Bytes(), &body))
	assert.Equal(t, "not_yet_valid", body["status"])
	assert.Contains(t, body, "window_start")

	h.Now = func() time.Time { return time.Date(2024, 5, 20, 18, 0, 0, 0, time.UTC) }
	late := doCheckin(t, h, `{"code":"654321","name":"Ana Cruz"}`)
	require.Equal(t, http.StatusConflict, late.Code)
	require.NoError(t, json.Unmarshal(late.Body.Bytes(), &body))
	assert.Equal(t, "past_valid", body["status"])
	assert.Contains(t, body, "window_end")
}

func TestCheckInLateAttemptExpiresCredential(t *testing.T) {
	h, store := newCheckinFixture(t)
	h.Now = func() time.Time { return time.Date(2024, 5, 20, 18, 0, 0, 0, time.UTC) }

	rec := doCheckin(t, h, `{"code":"654321","name":"Ana Cruz"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, model.CredentialExpired, store.cred.Status)
}

func TestCheckInRejectsMalformedCode(t *testing.T) {
	h, _ := newCheckinFixture(t)
	for _, body := range []string{
		`{"code":"12345","name":"Ana"}`,   // too short
		`{"code":"abcdef","name":"Ana"}`,  // not numeric
		`{"code":"654321"}`,               // missing name
		`{"name":"Ana"}`,                  // missing code
	} {
		rec := doCheckin(t, h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
	}
}
