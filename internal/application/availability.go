package application

import (
	"context"
	"time"

	bookingDomain "github.com/GoRent-Marketplace/service-rental/internal/domain/booking"
	carDomain "github.com/GoRent-Marketplace/service-rental/internal/domain/car"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// searchConcurrency bounds the per-car availability queries of one search.
const searchConcurrency = 8

// SearchAvailabilityRequest is the request DTO for POST /availability.
type SearchAvailabilityRequest struct {
	Location   string `json:"location"`
	PickupDate string `json:"pickupDate" binding:"required"`
	ReturnDate string `json:"returnDate" binding:"required"`
}

// AvailabilityChecker answers whether a car is free for a period.
type AvailabilityChecker struct {
	bookings bookingDomain.BookingRepository
	cars     carDomain.CarRepository
	logger   *zap.Logger
}

// NewAvailabilityChecker creates a new AvailabilityChecker.
func NewAvailabilityChecker(
	bookings bookingDomain.BookingRepository,
	cars carDomain.CarRepository,
	logger *zap.Logger,
) *AvailabilityChecker {
	return &AvailabilityChecker{bookings: bookings, cars: cars, logger: logger}
}

// IsAvailable reports whether no existing booking on the car overlaps
// [pickup, ret]. Both bounds are inclusive and cancelled bookings are ignored.
func (a *AvailabilityChecker) IsAvailable(ctx context.Context, carID uuid.UUID, pickup, ret time.Time) (bool, error) {
	overlap, err := a.bookings.HasOverlap(ctx, carID, bookingDomain.DateRange{Pickup: pickup, Return: ret})
	if err != nil {
		return false, err
	}
	return !overlap, nil
}

// SearchAvailableCars returns the listed cars at location that are free for the
// requested period.
func (a *AvailabilityChecker) SearchAvailableCars(ctx context.Context, req SearchAvailabilityRequest) ([]CarDTO, error) {
	period, err := bookingDomain.ParseDateRange(req.PickupDate, req.ReturnDate)
	if err != nil {
		return nil, err
	}

	cars, err := a.cars.FindAvailable(ctx, req.Location)
	if err != nil {
		return nil, err
	}

	free := make([]bool, len(cars))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(searchConcurrency)
	for i, c := range cars {
		g.Go(func() error {
			ok, err := a.IsAvailable(gctx, c.ID(), period.Pickup, period.Return)
			if err != nil {
				return err
			}
			free[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.logger.Error("availability search failed", zap.String("location", req.Location), zap.Error(err))
		return nil, err
	}

	result := make([]CarDTO, 0, len(cars))
	for i, c := range cars {
		if free[i] {
			result = append(result, toCarDTO(c))
		}
	}
	return result, nil
}
