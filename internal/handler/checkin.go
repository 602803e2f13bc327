package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hoa-community-api/internal/access"
	"github.com/iliyamo/hoa-community-api/internal/notifier"
	"github.com/iliyamo/hoa-community-api/internal/queue"
)

// GateHandler exposes the public check-in endpoint used at the gate.  It is
// unauthenticated (the PIN itself is the credential) and therefore sits
// behind the rate limiter.
type GateHandler struct {
	Gate     *access.GateKeeper
	Notifier notifier.Notifier
	// Now is the clock used to evaluate visit windows.  Overridable in tests.
	Now func() time.Time
}

func NewGateHandler(gate *access.GateKeeper, n notifier.Notifier) *GateHandler {
	return &GateHandler{Gate: gate, Notifier: n, Now: time.Now}
}

type checkinReq struct {
	Code    string `json:"code" validate:"required,len=6,numeric"`
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Contact string `json:"contact"`
}

// CheckIn consumes a one-time PIN.  Exactly one attempt per PIN can ever
// succeed; everything else maps to a stable rejection status:
//
//	unknown_code     -> 404
//	pending_approval -> 409
//	declined         -> 409
//	not_yet_valid    -> 409 (with the window bounds)
//	past_valid       -> 409 (with the window bounds)
//	already_used     -> 409
func (h *GateHandler) CheckIn(c echo.Context) error {
	var req checkinReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	guest := access.Guest{Name: req.Name, Email: req.Email, Contact: req.Contact}
	entry, err := h.Gate.AttemptConsume(ctx, req.Code, guest, h.Now())
	if err != nil {
		var state *access.CredentialStateError
		if errors.As(err, &state) {
			return c.JSON(rejectionStatus(state.Reason), rejectionBody(state))
		}
		var bad *access.ValidationError
		if errors.As(err, &bad) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": bad.Msg})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check-in failed"})
	}

	notify(h.Notifier, queue.NotificationEvent{
		Type:      queue.EventEntryRecorded,
		Recipient: entry.GuestEmail,
		Subject:   "Welcome! Your gate pass",
		Body: fmt.Sprintf("Hi %s, you checked in at %s. Pass reference: %s.",
			entry.GuestName, entry.ArrivedAt.Format(time.RFC3339), entry.PassRef),
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{
		"status":     "admitted",
		"pass_ref":   entry.PassRef,
		"arrived_at": entry.ArrivedAt,
	})
}

func rejectionStatus(r access.Reason) int {
	if r == access.ReasonUnknownCode {
		return http.StatusNotFound
	}
	return http.StatusConflict
}

func rejectionBody(e *access.CredentialStateError) echo.Map {
	body := echo.Map{"status": string(e.Reason)}
	if !e.WindowStart.IsZero() {
		body["window_start"] = e.WindowStart.Format(time.RFC3339)
	}
	if !e.WindowEnd.IsZero() {
		body["window_end"] = e.WindowEnd.Format(time.RFC3339)
	}
	return body
}
