package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hoa-community-api/internal/model"
	"github.com/iliyamo/hoa-community-api/internal/repository"
)

// BlackoutHandler lets admins declare and remove blackout periods, and
// lists them per facility for transparency.
type BlackoutHandler struct {
	Blackouts *repository.BlackoutRepo
}

func NewBlackoutHandler(b *repository.BlackoutRepo) *BlackoutHandler {
	return &BlackoutHandler{Blackouts: b}
}

type createBlackoutReq struct {
	FacilityID uint64  `json:"facility_id" validate:"required"`
	StartDate  string  `json:"start_date" validate:"required"`
	EndDate    string  `json:"end_date" validate:"required"`
	StartTime  *string `json:"start_time"`
	EndTime    *string `json:"end_time"`
	Reason     string  `json:"reason" validate:"required"`
}

type blackoutView struct {
	ID         uint64    `json:"id"`
	FacilityID uint64    `json:"facility_id"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	StartTime  *string   `json:"start_time"`
	EndTime    *string   `json:"end_time"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}

func viewBlackout(b *model.BlackoutPeriod) blackoutView {
	return blackoutView{
		ID:         b.ID,
		FacilityID: b.FacilityID,
		StartDate:  b.StartDate.Format("2006-01-02"),
		EndDate:    b.EndDate.Format("2006-01-02"),
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		Reason:     b.Reason,
		CreatedAt:  b.CreatedAt,
	}
}

// Create declares a blackout period.  Either both daily time bounds are
// given or neither; a blackout without time bounds blocks every covered
// day in full.
func (h *BlackoutHandler) Create(c echo.Context) error {
	var req createBlackoutReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	startDate, err := parseDay(req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_date, expected YYYY-MM-DD"})
	}
	endDate, err := parseDay(req.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_date, expected YYYY-MM-DD"})
	}
	if endDate.Before(startDate) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date precedes start_date"})
	}
	if (req.StartTime == nil) != (req.EndTime == nil) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time and end_time must be given together"})
	}
	var startTime, endTime *string
	if req.StartTime != nil {
		s, err := normalizeTimeOfDay(*req.StartTime)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_time, expected HH:MM"})
		}
		e, err := normalizeTimeOfDay(*req.EndTime)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_time, expected HH:MM"})
		}
		if e <= s {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_time must be after start_time"})
		}
		startTime, endTime = &s, &e
	}

	b := &model.BlackoutPeriod{
		FacilityID: req.FacilityID,
		StartDate:  startDate,
		EndDate:    endDate,
		StartTime:  startTime,
		EndTime:    endTime,
		Reason:     req.Reason,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Blackouts.Create(ctx, b); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create blackout failed"})
	}
	return c.JSON(http.StatusCreated, viewBlackout(b))
}

// ListByFacility returns every blackout period declared for a facility.
func (h *BlackoutHandler) ListByFacility(c echo.Context) error {
	facilityID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	list, err := h.Blackouts.ListByFacility(ctx, facilityID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]blackoutView, 0, len(list))
	for i := range list {
		out = append(out, viewBlackout(&list[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Delete removes a blackout period.
func (h *BlackoutHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Blackouts.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "blackout not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
