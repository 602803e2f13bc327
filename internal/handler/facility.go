package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hoa-community-api/internal/model"
	"github.com/iliyamo/hoa-community-api/internal/repository"
)

// FacilityHandler exposes facility browsing for everyone and facility
// management for admins.
type FacilityHandler struct {
	Facilities *repository.FacilityRepo
}

func NewFacilityHandler(fac *repository.FacilityRepo) *FacilityHandler {
	return &FacilityHandler{Facilities: fac}
}

type createFacilityReq struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

type facilityView struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

// List returns all active facilities.  The route sits behind the response
// cache since the list changes rarely and is hit by every booking screen.
func (h *FacilityHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	list, err := h.Facilities.ListActive(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]facilityView, 0, len(list))
	for _, f := range list {
		out = append(out, facilityView{ID: f.ID, Name: f.Name, Description: f.Description, IsActive: f.IsActive})
	}
	return c.JSON(http.StatusOK, out)
}

// Create registers a new facility (admin only).  Facilities default to
// active unless is_active is explicitly false.
func (h *FacilityHandler) Create(c echo.Context) error {
	var req createFacilityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	f := &model.Facility{Name: req.Name, Description: req.Description, IsActive: active}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Facilities.Create(ctx, f); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create facility failed"})
	}
	return c.JSON(http.StatusCreated, facilityView{ID: f.ID, Name: f.Name, Description: f.Description, IsActive: f.IsActive})
}
