package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hoa-community-api/internal/booking"
	"github.com/iliyamo/hoa-community-api/internal/model"
	"github.com/iliyamo/hoa-community-api/internal/notifier"
	"github.com/iliyamo/hoa-community-api/internal/queue"
	"github.com/iliyamo/hoa-community-api/internal/repository"
)

// BookingHandler exposes facility reservations: residents request slots,
// the conflict checker vets them, and admins decide pending ones.
type BookingHandler struct {
	Reservations *repository.ReservationRepo
	Facilities   *repository.FacilityRepo
	Users        *repository.UserRepo
	Checker      *booking.Checker
	Notifier     notifier.Notifier
}

func NewBookingHandler(res *repository.ReservationRepo, fac *repository.FacilityRepo,
	users *repository.UserRepo, chk *booking.Checker, n notifier.Notifier) *BookingHandler {
	return &BookingHandler{Reservations: res, Facilities: fac, Users: users, Checker: chk, Notifier: n}
}

// ----- DTOs -----

type createBookingReq struct {
	FacilityID uint64 `json:"facility_id" validate:"required"`
	Date       string `json:"date" validate:"required"`
	StartTime  string `json:"start_time" validate:"required"`
	EndTime    string `json:"end_time" validate:"required"`
}

type decideBookingReq struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
}

type reservationView struct {
	ID         uint64    `json:"id"`
	UserID     uint64    `json:"user_id"`
	FacilityID uint64    `json:"facility_id"`
	Date       string    `json:"date"`
	StartTime  string    `json:"start_time"`
	EndTime    string    `json:"end_time"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

func viewReservation(r *model.Reservation) reservationView {
	return reservationView{
		ID:         r.ID,
		UserID:     r.UserID,
		FacilityID: r.FacilityID,
		Date:       r.Date.Format("2006-01-02"),
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		Status:     r.Status,
		CreatedAt:  r.CreatedAt,
	}
}

// conflictBody shapes a ConflictError for the 409 response.
func conflictBody(ce *booking.ConflictError) echo.Map {
	body := echo.Map{
		"error":         "slot unavailable",
		"conflict_with": ce.Kind,
		"conflict_id":   ce.ID,
		"date":          ce.Date.Format("2006-01-02"),
	}
	if ce.StartTime != "" {
		body["start_time"] = ce.StartTime
		body["end_time"] = ce.EndTime
	}
	if ce.Reason != "" {
		body["reason"] = ce.Reason
	}
	return body
}

// Create requests a reservation slot for the authenticated resident.  The
// slot is half-open, so a booking ending 10:00 and one starting 10:00 can
// coexist.  A clean conflict check inserts the row in pending state.
func (h *BookingHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	date, err := parseDay(req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, expected YYYY-MM-DD"})
	}
	start, err := normalizeTimeOfDay(req.StartTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_time, expected HH:MM"})
	}
	end, err := normalizeTimeOfDay(req.EndTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_time, expected HH:MM"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	fac, err := h.Facilities.GetByID(ctx, req.FacilityID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !fac.IsActive {
		return c.JSON(http.StatusConflict, echo.Map{"error": "facility is not accepting reservations"})
	}

	if err := h.Checker.Check(ctx, req.FacilityID, date, start, end, 0); err != nil {
		var bad *booking.ValidationError
		if errors.As(err, &bad) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": bad.Msg})
		}
		var ce *booking.ConflictError
		if errors.As(err, &ce) {
			return c.JSON(http.StatusConflict, conflictBody(ce))
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "conflict check failed"})
	}

	res := &model.Reservation{UserID: uid, FacilityID: req.FacilityID, Date: date, StartTime: start, EndTime: end}
	if err := h.Reservations.Create(ctx, res); err != nil {
		// Two identical slots racing past the check trip the composite
		// unique index; report the loser the same way as a found conflict.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return c.JSON(http.StatusConflict, echo.Map{"error": "slot unavailable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create reservation failed"})
	}
	return c.JSON(http.StatusCreated, viewReservation(res))
}

// ListMine returns the authenticated resident's reservations, newest first.
func (h *BookingHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	list, err := h.Reservations.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]reservationView, 0, len(list))
	for i := range list {
		out = append(out, viewReservation(&list[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Decide flips a pending reservation to approved or rejected.  Racing
// admins resolve through the conditional update: the loser gets 409.
func (h *BookingHandler) Decide(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req decideBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	status := model.ReservationApproved
	if req.Action == "reject" {
		status = model.ReservationRejected
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Reservations.Decide(ctx, id, status); err != nil {
		if err == repository.ErrAlreadyDecided {
			return c.JSON(http.StatusConflict, echo.Map{"error": "reservation already decided"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "decide failed"})
	}

	res, err := h.Reservations.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load reservation failed"})
	}

	// Resolve the resident's address for the outcome mail; a missing user
	// only costs the notification.
	if u, err := h.Users.GetByID(ctx, res.UserID); err == nil {
		notify(h.Notifier, queue.NotificationEvent{
			Type:      queue.EventBookingDecided,
			Recipient: u.Email,
			Subject:   fmt.Sprintf("Your facility booking was %s", res.Status),
			Body: fmt.Sprintf("Your booking on %s from %s to %s is now %s.",
				res.Date.Format("2006-01-02"), res.StartTime, res.EndTime, res.Status),
			OccurredAt: time.Now().UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, viewReservation(res))
}
