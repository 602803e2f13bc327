package repository

import (
	"context"
	"time"

	"github.com/iliyamo/hoa-community-api/internal/model"
)

// FacilityTimeline joins the reservation and blackout repositories into the
// single read surface the conflict checker consumes.
type FacilityTimeline struct {
	Reservations *ReservationRepo
	Blackouts    *BlackoutRepo
}

func NewFacilityTimeline(res *ReservationRepo, bl *BlackoutRepo) *FacilityTimeline {
	return &FacilityTimeline{Reservations: res, Blackouts: bl}
}

func (t *FacilityTimeline) ActiveReservations(ctx context.Context, facilityID uint64, date time.Time) ([]model.Reservation, error) {
	return t.Reservations.ActiveReservations(ctx, facilityID, date)
}

func (t *FacilityTimeline) BlackoutsCovering(ctx context.Context, facilityID uint64, date time.Time) ([]model.BlackoutPeriod, error) {
	return t.Blackouts.BlackoutsCovering(ctx, facilityID, date)
}
