package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hoa-community-api/internal/access"
	"github.com/iliyamo/hoa-community-api/internal/model"
	"github.com/iliyamo/hoa-community-api/internal/notifier"
	"github.com/iliyamo/hoa-community-api/internal/queue"
	"github.com/iliyamo/hoa-community-api/internal/repository"
)

// VisitHandler exposes the visitor request lifecycle: residents submit
// requests, admins decide them, and approval mints the one-time gate PIN.
type VisitHandler struct {
	Creds    *repository.CredentialRepo
	Issuer   *access.Issuer
	Notifier notifier.Notifier
}

func NewVisitHandler(creds *repository.CredentialRepo, issuer *access.Issuer, n notifier.Notifier) *VisitHandler {
	return &VisitHandler{Creds: creds, Issuer: issuer, Notifier: n}
}

// ----- DTOs -----

type createVisitReq struct {
	VisitorName    string  `json:"visitor_name" validate:"required"`
	VisitorEmail   string  `json:"visitor_email" validate:"required,email"`
	VisitorContact string  `json:"visitor_contact" validate:"required"`
	VehiclePlate   *string `json:"vehicle_plate"`
	Reason         *string `json:"reason"`
	VisitDate      string  `json:"visit_date" validate:"required"`
	VisitEndDate   *string `json:"visit_end_date"`
	StartTime      string  `json:"start_time" validate:"required"`
	EndTime        string  `json:"end_time" validate:"required"`
}

type declineReq struct {
	Reason string `json:"reason" validate:"required"`
}

// credentialView is the JSON shape returned for visitor credentials.  The
// PIN is included only once the request is approved; for pending and
// declined requests it is null.
type credentialView struct {
	ID             uint64     `json:"id"`
	ResidentID     uint64     `json:"resident_id"`
	VisitorName    string     `json:"visitor_name"`
	VisitorEmail   string     `json:"visitor_email"`
	VisitorContact string     `json:"visitor_contact"`
	VehiclePlate   *string    `json:"vehicle_plate"`
	Reason         *string    `json:"reason"`
	OneTimePIN     *string    `json:"one_time_pin"`
	VisitDate      string     `json:"visit_date"`
	VisitEndDate   *string    `json:"visit_end_date"`
	StartTime      string     `json:"start_time"`
	EndTime        string     `json:"end_time"`
	Status         string     `json:"status"`
	DeclinedReason *string    `json:"declined_reason"`
	CreatedAt      time.Time  `json:"created_at"`
	ApprovedAt     *time.Time `json:"approved_at"`
}

func viewCredential(c *model.VisitorCredential) credentialView {
	v := credentialView{
		ID:             c.ID,
		ResidentID:     c.ResidentID,
		VisitorName:    c.VisitorName,
		VisitorEmail:   c.VisitorEmail,
		VisitorContact: c.VisitorContact,
		VehiclePlate:   c.VehiclePlate,
		Reason:         c.Reason,
		OneTimePIN:     c.OneTimePIN,
		VisitDate:      c.VisitDate.Format("2006-01-02"),
		StartTime:      c.StartTime,
		EndTime:        c.EndTime,
		Status:         c.Status,
		DeclinedReason: c.DeclinedReason,
		CreatedAt:      c.CreatedAt,
		ApprovedAt:     c.ApprovedAt,
	}
	if c.VisitEndDate != nil {
		d := c.VisitEndDate.Format("2006-01-02")
		v.VisitEndDate = &d
	}
	return v
}

// Create submits a visitor request on behalf of the authenticated resident.
// The request starts in pending state with no PIN.
func (h *VisitHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createVisitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	visitDate, err := parseDay(req.VisitDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid visit_date, expected YYYY-MM-DD"})
	}
	var visitEnd *time.Time
	if req.VisitEndDate != nil && *req.VisitEndDate != "" {
		d, err := parseDay(*req.VisitEndDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid visit_end_date, expected YYYY-MM-DD"})
		}
		if d.Before(visitDate) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "visit_end_date precedes visit_date"})
		}
		visitEnd = &d
	}
	start, err := normalizeTimeOfDay(req.StartTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_time, expected HH:MM"})
	}
	end, err := normalizeTimeOfDay(req.EndTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_time, expected HH:MM"})
	}

	cred := &model.VisitorCredential{
		ResidentID:     uid,
		VisitorName:    req.VisitorName,
		VisitorEmail:   req.VisitorEmail,
		VisitorContact: req.VisitorContact,
		VehiclePlate:   req.VehiclePlate,
		Reason:         req.Reason,
		VisitDate:      visitDate,
		VisitEndDate:   visitEnd,
		StartTime:      start,
		EndTime:        end,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Creds.Create(ctx, cred); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create request failed"})
	}
	return c.JSON(http.StatusCreated, viewCredential(cred))
}

// ListMine returns the authenticated resident's visitor requests, newest
// first.
func (h *VisitHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	creds, err := h.Creds.ListByResident(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]credentialView, 0, len(creds))
	for i := range creds {
		out = append(out, viewCredential(&creds[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns a single visitor request.  Residents can only read their own
// requests; admins can read any.
func (h *VisitHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	cred, err := h.Creds.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if role, _ := c.Get("role").(string); role != model.RoleAdmin && cred.ResidentID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, viewCredential(cred))
}

// PendingQueue returns all pending visitor requests, oldest first, so
// admins work them in arrival order.
func (h *VisitHandler) PendingQueue(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	creds, err := h.Creds.ListByStatus(ctx, model.CredentialPending)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]credentialView, 0, len(creds))
	for i := range creds {
		out = append(out, viewCredential(&creds[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Approve decides a pending request in the visitor's favor.  A fresh
// one-time PIN is issued first; attaching it and flipping the status happen
// in a single conditional update, so losing a race with another admin
// yields 409 and the drawn code is discarded unused.
func (h *VisitHandler) Approve(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	code, err := h.Issuer.Issue(ctx)
	if err != nil {
		if err == access.ErrCodeSpaceExhausted {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "no codes available"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue code failed"})
	}
	if err := h.Creds.Approve(ctx, id, code, adminID); err != nil {
		if err == repository.ErrAlreadyDecided {
			return c.JSON(http.StatusConflict, echo.Map{"error": "request already decided"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "approve failed"})
	}

	cred, err := h.Creds.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load request failed"})
	}

	notify(h.Notifier, queue.NotificationEvent{
		Type:      queue.EventCredentialApproved,
		Recipient: cred.VisitorEmail,
		Subject:   "Your visit has been approved",
		Body: fmt.Sprintf("Hi %s, your visit on %s was approved. Your gate PIN is %s, valid %s to %s.",
			cred.VisitorName, cred.VisitDate.Format("2006-01-02"), code, cred.StartTime, cred.EndTime),
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, viewCredential(cred))
}

// Decline decides a pending request against the visitor with a mandatory
// reason.
func (h *VisitHandler) Decline(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req declineReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Creds.Decline(ctx, id, adminID, req.Reason); err != nil {
		if err == repository.ErrAlreadyDecided {
			return c.JSON(http.StatusConflict, echo.Map{"error": "request already decided"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "decline failed"})
	}

	cred, err := h.Creds.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load request failed"})
	}

	notify(h.Notifier, queue.NotificationEvent{
		Type:      queue.EventCredentialDeclined,
		Recipient: cred.VisitorEmail,
		Subject:   "Your visit request was declined",
		Body: fmt.Sprintf("Hi %s, your visit on %s was declined: %s",
			cred.VisitorName, cred.VisitDate.Format("2006-01-02"), req.Reason),
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, viewCredential(cred))
}
