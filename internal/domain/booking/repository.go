package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByUserID retrieves the renter's bookings, newest first.
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*Booking, error)

	// FindByOwnerID retrieves bookings against the owner's cars, newest first.
	// A limit <= 0 returns all of them.
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID, limit int) ([]*Booking, error)

	// HasOverlap reports whether a calendar-blocking booking on the car overlaps period.
	HasOverlap(ctx context.Context, carID uuid.UUID, period DateRange) (bool, error)

	// CountByStatus returns the owner's booking counts grouped by status.
	CountByStatus(ctx context.Context, ownerID uuid.UUID) (map[BookingStatus]int64, error)

	// SumRevenue sums prices of the owner's bookings in status created in [from, to).
	SumRevenue(ctx context.Context, ownerID uuid.UUID, status BookingStatus, from, to time.Time) (int64, error)

	// SaveIfAvailable persists a new booking unless an overlapping one exists on the same car.
	SaveIfAvailable(ctx context.Context, booking *Booking) error

	// UpdateStatus persists the booking's current status.
	UpdateStatus(ctx context.Context, booking *Booking) error
}
