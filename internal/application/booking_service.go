package application

import (
	"context"
	"errors"
	"time"

	"github.com/GoRent-Marketplace/service-rental/internal/common/domain"
	"github.com/GoRent-Marketplace/service-rental/internal/common/kafka"
	bookingDomain "github.com/GoRent-Marketplace/service-rental/internal/domain/booking"
	carDomain "github.com/GoRent-Marketplace/service-rental/internal/domain/car"
	userDomain "github.com/GoRent-Marketplace/service-rental/internal/domain/user"
	"github.com/GoRent-Marketplace/service-rental/internal/events"
	"github.com/GoRent-Marketplace/service-rental/internal/lock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultLockTimeout bounds how long CreateBooking waits for the car lock.
const DefaultLockTimeout = 5 * time.Second

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	Car        string `json:"car" binding:"required"`
	PickupDate string `json:"pickupDate" binding:"required"`
	ReturnDate string `json:"returnDate" binding:"required"`
}

// ChangeStatusRequest is the request DTO for an owner confirming or cancelling a booking.
type ChangeStatusRequest struct {
	BookingID string `json:"bookingId" binding:"required"`
	Status    string `json:"status" binding:"required"`
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	bookings     bookingDomain.BookingRepository
	cars         carDomain.CarRepository
	users        userDomain.UserRepository
	availability *AvailabilityChecker
	pricing      bookingDomain.PricingStrategy
	locker       lock.Locker
	producer     EventProducer
	currency     string
	lockTimeout  time.Duration
	logger       *zap.Logger
}

// BookingServiceOption configures optional BookingService behaviour.
type BookingServiceOption func(*BookingService)

// WithLockTimeout overrides DefaultLockTimeout.
func WithLockTimeout(d time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		if d > 0 {
			s.lockTimeout = d
		}
	}
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings bookingDomain.BookingRepository,
	cars carDomain.CarRepository,
	users userDomain.UserRepository,
	availability *AvailabilityChecker,
	pricing bookingDomain.PricingStrategy,
	locker lock.Locker,
	producer EventProducer,
	currency string,
	logger *zap.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	s := &BookingService{
		bookings:     bookings,
		cars:         cars,
		users:        users,
		availability: availability,
		pricing:      pricing,
		locker:       locker,
		producer:     producer,
		currency:     currency,
		lockTimeout:  DefaultLockTimeout,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateBooking reserves a car for the renter. The availability check and the
// insert run while the car's lock is held, and the insert itself re-checks for
// overlaps inside a transaction.
func (s *BookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	carID, err := uuid.Parse(req.Car)
	if err != nil {
		return nil, domain.NewValidationError("Invalid car id")
	}

	period, err := bookingDomain.ParseDateRange(req.PickupDate, req.ReturnDate)
	if err != nil {
		return nil, err
	}

	release, err := s.acquireCarLock(ctx, carID)
	if err != nil {
		return nil, err
	}
	defer release()

	available, err := s.availability.IsAvailable(ctx, carID, period.Pickup, period.Return)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, domain.NewUnavailableError("Car is not available")
	}

	car, err := s.cars.FindByID(ctx, carID)
	if err != nil {
		return nil, err
	}
	if car.IsRemoved() {
		return nil, domain.NewNotFoundError("Car", carID.String())
	}

	priceCents, err := s.pricing.Calculate(bookingDomain.PricingParams{
		PricePerDayCents: car.PricePerDayCents(),
		Period:           period,
	})
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	bk, err := bookingDomain.NewBooking(carID, userID, *car.OwnerID(), period, priceCents, s.currency)
	if err != nil {
		return nil, err
	}

	if err := s.bookings.SaveIfAvailable(ctx, bk); err != nil {
		if !domain.IsKind(err, domain.KindUnavailable) {
			s.logger.Error("failed to save booking", zap.String("car_id", carID.String()), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", bk.ID().String()),
		zap.String("car_id", carID.String()),
		zap.String("user_id", userID.String()),
		zap.Int64("price_cents", priceCents),
	)
	s.publishBookingCreated(ctx, bk)

	result := toBookingDTO(bk)
	carDTO := toCarDTO(car)
	result.Car = &carDTO
	return &result, nil
}

// SetStatus lets the owner of a booking confirm or cancel it.
func (s *BookingService) SetStatus(ctx context.Context, requesterID uuid.UUID, req ChangeStatusRequest) (*BookingDTO, error) {
	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, domain.NewValidationError("Invalid booking id")
	}
	target, err := bookingDomain.ParseBookingStatus(req.Status)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsOwnedBy(requesterID) {
		return nil, domain.NewForbiddenError("Unauthorized")
	}

	previous := bk.Status()
	if err := bk.TransitionTo(target); err != nil {
		return nil, err
	}

	if err := s.bookings.UpdateStatus(ctx, bk); err != nil {
		s.logger.Error("failed to update booking status",
			zap.String("booking_id", bookingID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("booking status changed",
		zap.String("booking_id", bookingID.String()),
		zap.String("from", string(previous)),
		zap.String("to", string(target)),
	)
	s.publishStatusChanged(ctx, bk, previous)

	result := toBookingDTO(bk)
	return &result, nil
}

// GetUserBookings returns the renter's bookings, newest first, with their cars.
func (s *BookingService) GetUserBookings(ctx context.Context, userID uuid.UUID) ([]BookingDTO, error) {
	bookings, err := s.bookings.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withCars(ctx, bookings)
}

// GetOwnerBookings returns bookings on the owner's cars, newest first, with the
// car and the renter.
func (s *BookingService) GetOwnerBookings(ctx context.Context, ownerID uuid.UUID) ([]BookingDTO, error) {
	if err := requireOwner(ctx, s.users, ownerID); err != nil {
		return nil, err
	}

	bookings, err := s.bookings.FindByOwnerID(ctx, ownerID, 0)
	if err != nil {
		return nil, err
	}

	dtos, err := s.withCars(ctx, bookings)
	if err != nil {
		return nil, err
	}

	userIDs := make([]uuid.UUID, 0, len(bookings))
	for _, bk := range bookings {
		userIDs = append(userIDs, bk.UserID())
	}
	users, err := s.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	for i := range dtos {
		if u, ok := users[dtos[i].UserID]; ok {
			udto := toUserDTO(u)
			dtos[i].User = &udto
		}
	}
	return dtos, nil
}

// --- Helpers ---

func (s *BookingService) acquireCarLock(ctx context.Context, carID uuid.UUID) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	release, err := s.locker.Acquire(lockCtx, lock.CarKey(carID.String()))
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			s.logger.Warn("car lock contended", zap.String("car_id", carID.String()), zap.Error(err))
		}
		return nil, domain.NewStoreError("acquire car lock", err)
	}
	return release, nil
}

func (s *BookingService) withCars(ctx context.Context, bookings []*bookingDomain.Booking) ([]BookingDTO, error) {
	carIDs := make([]uuid.UUID, 0, len(bookings))
	for _, bk := range bookings {
		carIDs = append(carIDs, bk.CarID())
	}
	cars, err := s.cars.FindByIDs(ctx, carIDs)
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
		if c, ok := cars[bk.CarID()]; ok {
			cdto := toCarDTO(c)
			dtos[i].Car = &cdto
		}
	}
	return dtos, nil
}

// requireOwner checks the stored role rather than the token's, so a demoted or
// deleted account loses access immediately.
func requireOwner(ctx context.Context, users userDomain.UserRepository, userID uuid.UUID) error {
	u, err := users.FindByID(ctx, userID)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return domain.NewForbiddenError("Unauthorized")
		}
		return err
	}
	if !u.IsOwner() {
		return domain.NewForbiddenError("Unauthorized")
	}
	return nil
}

func (s *BookingService) publishBookingCreated(ctx context.Context, bk *bookingDomain.Booking) {
	evt := events.BookingCreatedEvent{
		BookingID:  bk.ID(),
		CarID:      bk.CarID(),
		UserID:     bk.UserID(),
		OwnerID:    bk.OwnerID(),
		PickupDate: bk.PickupDate(),
		ReturnDate: bk.ReturnDate(),
		Status:     string(bk.Status()),
		PriceCents: bk.PriceCents(),
		Currency:   bk.Currency(),
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCreated, bk.ID().String(), evt)
}

func (s *BookingService) publishStatusChanged(ctx context.Context, bk *bookingDomain.Booking, previous bookingDomain.BookingStatus) {
	evt := events.BookingStatusChangedEvent{
		BookingID:  bk.ID(),
		CarID:      bk.CarID(),
		UserID:     bk.UserID(),
		OwnerID:    bk.OwnerID(),
		OldStatus:  string(previous),
		NewStatus:  string(bk.Status()),
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingStatusChanged, bk.ID().String(), evt)
}

// publishEvent is best effort: the booking is already committed, so failures
// are logged and never surface to the caller.
func (s *BookingService) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(events.Source, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	cloudEvent.Subject = key

	if err := s.producer.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
