//go:build integration

package main_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoRent-Marketplace/service-rental/internal/application"
	"github.com/GoRent-Marketplace/service-rental/internal/common/domain"
	"github.com/GoRent-Marketplace/service-rental/internal/events"
	"github.com/GoRent-Marketplace/service-rental/internal/repository"
)

// TestCreateBooking_ConcurrentOverlapsOneWins fires overlapping booking requests
// for one car from many goroutines; the Redis lock and the conditional insert
// let exactly one of them through.
func TestCreateBooking_ConcurrentOverlapsOneWins(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRentalStack(t, infra)
	defer stack.CleanupProducer()

	_, car := seedOwnerAndCar(t, stack, 4500)
	renters := make([]uuid.UUID, 8)
	for i := range renters {
		renters[i] = seedRenter(t, stack).ID()
	}

	ranges := [][2]string{
		{"2025-03-01", "2025-03-04"},
		{"2025-03-02", "2025-03-05"},
		{"2025-03-03", "2025-03-06"},
		{"2025-02-28", "2025-03-03"},
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		kinds     []domain.Kind
	)
	for i, renter := range renters {
		wg.Add(1)
		go func(renter uuid.UUID, r [2]string) {
			defer wg.Done()
			_, err := stack.Bookings.CreateBooking(context.Background(), renter, application.CreateBookingRequest{
				Car: car.ID().String(), PickupDate: r[0], ReturnDate: r[1],
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			kinds = append(kinds, domain.KindOf(err))
		}(renter, ranges[i%len(ranges)])
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	for _, k := range kinds {
		assert.Equal(t, domain.KindUnavailable, k)
	}

	stored, err := stack.BookingRepo.FindByOwnerID(context.Background(), *car.OwnerID(), 0)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

// TestExclusionConstraint_RejectsOverlapAtStore writes rows directly so only the
// database constraint stands between two overlapping bookings.
func TestExclusionConstraint_RejectsOverlapAtStore(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRentalStack(t, infra)
	defer stack.CleanupProducer()

	owner, car := seedOwnerAndCar(t, stack, 3000)
	renter := seedRenter(t, stack)

	day := func(s string) time.Time {
		d, err := time.Parse("2006-01-02", s)
		require.NoError(t, err)
		return d
	}
	row := func(pickup, ret, status string) *repository.BookingModel {
		now := time.Now().UTC()
		return &repository.BookingModel{
			ID:         uuid.New(),
			CarID:      car.ID(),
			UserID:     renter.ID(),
			OwnerID:    owner.ID(),
			PickupDate: day(pickup),
			ReturnDate: day(ret),
			Status:     status,
			PriceCents: 6000,
			Currency:   "USD",
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}

	require.NoError(t, infra.DB.Create(row("2025-04-01", "2025-04-03", "confirmed")).Error)

	// Cancelled rows sit outside the constraint.
	require.NoError(t, infra.DB.Create(row("2025-04-02", "2025-04-04", "cancelled")).Error)

	// Sharing only the return day still overlaps under inclusive bounds.
	err := infra.DB.Create(row("2025-04-03", "2025-04-05", "pending")).Error
	require.Error(t, err)
	var pgErr *pgconn.PgError
	require.True(t, errors.As(err, &pgErr), "expected a PostgreSQL error, got %v", err)
	assert.Equal(t, "23P01", pgErr.Code)

	require.NoError(t, infra.DB.Create(row("2025-04-04", "2025-04-06", "pending")).Error)
}

// TestCreateBooking_PublishesBookingCreated verifies the booking.created event
// reaches Kafka keyed by the booking.
func TestCreateBooking_PublishesBookingCreated(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRentalStack(t, infra)
	defer stack.CleanupProducer()

	owner, car := seedOwnerAndCar(t, stack, 2500)
	renter := seedRenter(t, stack)

	created, err := stack.Bookings.CreateBooking(context.Background(), renter.ID(), application.CreateBookingRequest{
		Car: car.ID().String(), PickupDate: "2025-05-10", ReturnDate: "2025-05-13",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7500), created.PriceCents)

	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicBookingEvents,
		events.BookingCreated, created.ID.String(), 15*time.Second)

	var evt events.BookingCreatedEvent
	require.NoError(t, ce.ParseData(&evt))
	assert.Equal(t, created.ID, evt.BookingID)
	assert.Equal(t, car.ID(), evt.CarID)
	assert.Equal(t, renter.ID(), evt.UserID)
	assert.Equal(t, owner.ID(), evt.OwnerID)
	assert.Equal(t, "pending", evt.Status)
	assert.Equal(t, int64(7500), evt.PriceCents)
	assert.Equal(t, "USD", evt.Currency)
}
