package application

import (
	"context"
	"time"

	bookingDomain "github.com/GoRent-Marketplace/service-rental/internal/domain/booking"
	carDomain "github.com/GoRent-Marketplace/service-rental/internal/domain/car"
	userDomain "github.com/GoRent-Marketplace/service-rental/internal/domain/user"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// recentBookingsLimit is how many of the newest bookings the dashboard lists.
const recentBookingsLimit = 3

// DashboardDTO summarises an owner's fleet and bookings.
type DashboardDTO struct {
	TotalCars         int64        `json:"totalCars"`
	TotalBookings     int64        `json:"totalBookings"`
	PendingBookings   int64        `json:"pendingBookings"`
	CompletedBookings int64        `json:"completedBookings"`
	RecentBookings    []BookingDTO `json:"recentBookings"`
	MonthlyRevenue    int64        `json:"monthlyRevenue"`
	TotalCarValue     int64        `json:"totalCarValue"`
	Currency          string       `json:"currency"`
}

// DashboardService aggregates read-only statistics for car owners.
type DashboardService struct {
	users    userDomain.UserRepository
	cars     carDomain.CarRepository
	bookings bookingDomain.BookingRepository
	currency string
	now      func() time.Time
	location *time.Location
	logger   *zap.Logger
}

// DashboardOption configures a DashboardService.
type DashboardOption func(*DashboardService)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) DashboardOption {
	return func(s *DashboardService) { s.now = now }
}

// WithLocation sets the time zone whose calendar month bounds monthly revenue.
func WithLocation(loc *time.Location) DashboardOption {
	return func(s *DashboardService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(
	users userDomain.UserRepository,
	cars carDomain.CarRepository,
	bookings bookingDomain.BookingRepository,
	currency string,
	logger *zap.Logger,
	opts ...DashboardOption,
) *DashboardService {
	s := &DashboardService{
		users:    users,
		cars:     cars,
		bookings: bookings,
		currency: currency,
		now:      time.Now,
		location: time.Local,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetDashboard returns the requester's dashboard. Only owners have one.
func (s *DashboardService) GetDashboard(ctx context.Context, requesterID uuid.UUID) (*DashboardDTO, error) {
	if err := requireOwner(ctx, s.users, requesterID); err != nil {
		return nil, err
	}

	totalCars, err := s.cars.CountByOwnerID(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	counts, err := s.bookings.CountByStatus(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	var totalBookings int64
	for _, n := range counts {
		totalBookings += n
	}

	recent, err := s.bookings.FindByOwnerID(ctx, requesterID, recentBookingsLimit)
	if err != nil {
		return nil, err
	}
	recentDTOs := make([]BookingDTO, len(recent))
	for i, bk := range recent {
		recentDTOs[i] = toBookingDTO(bk)
	}

	from, to := monthBounds(s.now(), s.location)
	revenue, err := s.bookings.SumRevenue(ctx, requesterID, bookingDomain.StatusConfirmed, from, to)
	if err != nil {
		return nil, err
	}

	carValue, err := s.cars.SumPricePerDay(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("dashboard computed",
		zap.String("owner_id", requesterID.String()),
		zap.Int64("total_cars", totalCars),
		zap.Int64("total_bookings", totalBookings),
	)

	return &DashboardDTO{
		TotalCars:         totalCars,
		TotalBookings:     totalBookings,
		PendingBookings:   counts[bookingDomain.StatusPending],
		CompletedBookings: counts[bookingDomain.StatusConfirmed],
		RecentBookings:    recentDTOs,
		MonthlyRevenue:    max(revenue, 0),
		TotalCarValue:     max(carValue, 0),
		Currency:          s.currency,
	}, nil
}

// monthBounds returns [first instant of now's month, first instant of the next
// month) in loc, expressed in UTC.
func monthBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	return start.UTC(), start.AddDate(0, 1, 0).UTC()
}
