package repository

import (
	"context"
	"testing"
	"time"

	"github.com/GoRent-Marketplace/service-rental/internal/common/database"
	bookingDomain "github.com/GoRent-Marketplace/service-rental/internal/domain/booking"
	carDomain "github.com/GoRent-Marketplace/service-rental/internal/domain/car"
	userDomain "github.com/GoRent-Marketplace/service-rental/internal/domain/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.ConnectSQLite(database.MemoryDSN(uuid.NewString()), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *userDomain.User {
	t.Helper()
	u, err := userDomain.NewUser("Test User", email, "supersecret")
	require.NoError(t, err)
	require.NoError(t, NewGormUserRepository(db).Save(context.Background(), u))
	return u
}

func seedCar(t *testing.T, db *gorm.DB, ownerID uuid.UUID, location string, pricePerDayCents int64) *carDomain.Car {
	t.Helper()
	c, err := carDomain.NewCar(ownerID, carDomain.Details{
		Brand:            "Toyota",
		Model:            "Corolla",
		Year:             2022,
		Location:         location,
		PricePerDayCents: pricePerDayCents,
	}, "")
	require.NoError(t, err)
	require.NoError(t, NewGormCarRepository(db).Save(context.Background(), c))
	return c
}

func period(t *testing.T, pickup, ret string) bookingDomain.DateRange {
	t.Helper()
	r, err := bookingDomain.ParseDateRange(pickup, ret)
	require.NoError(t, err)
	return r
}

func newBooking(t *testing.T, car *carDomain.Car, userID uuid.UUID, p bookingDomain.DateRange) *bookingDomain.Booking {
	t.Helper()
	bk, err := bookingDomain.NewBooking(car.ID(), userID, *car.OwnerID(), p, car.PricePerDayCents()*p.Days(), "USD")
	require.NoError(t, err)
	return bk
}

func reconstructAt(bk *bookingDomain.Booking, status bookingDomain.BookingStatus, createdAt time.Time) *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(
		bk.ID(), bk.CarID(), bk.UserID(), bk.OwnerID(), bk.Period(),
		status, bk.PriceCents(), bk.Currency(), createdAt, createdAt,
	)
}
