package booking

import (
	"time"

	"github.com/GoRent-Marketplace/service-rental/internal/common/domain"
	"github.com/google/uuid"
)

// Booking is the aggregate root for the booking domain.
//
// Everything except the status is fixed at creation. The owner is copied from the
// car so that past bookings keep it after the car changes hands or is removed.
type Booking struct {
	id         uuid.UUID
	carID      uuid.UUID
	userID     uuid.UUID
	ownerID    uuid.UUID
	period     DateRange
	status     BookingStatus
	priceCents int64
	currency   string
	createdAt  time.Time
	updatedAt  time.Time
}

// NewBooking creates a new Booking aggregate with status=pending.
func NewBooking(
	carID uuid.UUID,
	userID uuid.UUID,
	ownerID uuid.UUID,
	period DateRange,
	priceCents int64,
	currency string,
) (*Booking, error) {
	if carID == uuid.Nil {
		return nil, domain.NewValidationError("car ID is required")
	}
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	if ownerID == uuid.Nil {
		return nil, domain.NewValidationError("owner ID is required")
	}
	if !period.Return.After(period.Pickup) {
		return nil, domain.NewInvalidRangeError("Return date must be after pickup date")
	}
	if priceCents < 0 {
		return nil, domain.NewValidationError("price cannot be negative")
	}

	now := time.Now().UTC()
	return &Booking{
		id:         uuid.New(),
		carID:      carID,
		userID:     userID,
		ownerID:    ownerID,
		period:     period,
		status:     StatusPending,
		priceCents: priceCents,
		currency:   currency,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	carID uuid.UUID,
	userID uuid.UUID,
	ownerID uuid.UUID,
	period DateRange,
	status BookingStatus,
	priceCents int64,
	currency string,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:         id,
		carID:      carID,
		userID:     userID,
		ownerID:    ownerID,
		period:     period,
		status:     status,
		priceCents: priceCents,
		currency:   currency,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// CarID returns the booked car's identifier.
func (b *Booking) CarID() uuid.UUID { return b.carID }

// UserID returns the renter's user ID.
func (b *Booking) UserID() uuid.UUID { return b.userID }

// OwnerID returns the car owner's user ID as of booking creation.
func (b *Booking) OwnerID() uuid.UUID { return b.ownerID }

// Period returns the rental period.
func (b *Booking) Period() DateRange { return b.period }

// PickupDate returns the start of the rental period.
func (b *Booking) PickupDate() time.Time { return b.period.Pickup }

// ReturnDate returns the end of the rental period.
func (b *Booking) ReturnDate() time.Time { return b.period.Return }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// PriceCents returns the total price in cents.
func (b *Booking) PriceCents() int64 { return b.priceCents }

// Currency returns the currency code.
func (b *Booking) Currency() string { return b.currency }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// IsOwnedBy reports whether the given user owns the booked car for this booking.
func (b *Booking) IsOwnedBy(userID uuid.UUID) bool {
	return b.ownerID == userID
}

// TransitionTo moves the booking to target if the state machine allows it.
func (b *Booking) TransitionTo(target BookingStatus) error {
	if !target.IsValid() {
		return domain.NewValidationError("invalid booking status: " + string(target))
	}
	if !b.status.CanTransitionTo(target) {
		return domain.NewInvalidStateError(string(b.status), string(target))
	}
	b.status = target
	b.updatedAt = time.Now().UTC()
	return nil
}

// Confirm transitions the booking from pending to confirmed.
func (b *Booking) Confirm() error {
	return b.TransitionTo(StatusConfirmed)
}

// Cancel transitions the booking from pending to cancelled.
func (b *Booking) Cancel() error {
	return b.TransitionTo(StatusCancelled)
}
