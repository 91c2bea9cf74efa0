package application

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/GoRent-Marketplace/service-rental/internal/common/auth"
	"github.com/GoRent-Marketplace/service-rental/internal/common/database"
	"github.com/GoRent-Marketplace/service-rental/internal/common/kafka"
	bookingDomain "github.com/GoRent-Marketplace/service-rental/internal/domain/booking"
	carDomain "github.com/GoRent-Marketplace/service-rental/internal/domain/car"
	userDomain "github.com/GoRent-Marketplace/service-rental/internal/domain/user"
	"github.com/GoRent-Marketplace/service-rental/internal/lock"
	"github.com/GoRent-Marketplace/service-rental/internal/media"
	"github.com/GoRent-Marketplace/service-rental/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// recordingProducer captures published events in memory.
type recordingProducer struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
	err    error
}

func (p *recordingProducer) PublishEvent(_ context.Context, _ string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingProducer) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// fakeUploader records uploads and returns a predictable URL.
type fakeUploader struct {
	mu      sync.Mutex
	folders []string
	bodies  []string
	err     error
}

func (u *fakeUploader) Upload(_ context.Context, folder string, img media.Image, tr media.Transformation) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	body, _ := io.ReadAll(img.Body)
	u.mu.Lock()
	u.folders = append(u.folders, folder)
	u.bodies = append(u.bodies, string(body))
	u.mu.Unlock()
	return media.DeliveryURL("https://cdn.test", folder+"/"+img.Filename, tr)
}

// failingLocker never grants a lock.
type failingLocker struct{}

func (failingLocker) Acquire(context.Context, string) (func(), error) {
	return nil, errors.New("redis unavailable")
}

type testEnv struct {
	db        *gorm.DB
	users     *repository.GormUserRepository
	cars      *repository.GormCarRepository
	bookings  *repository.GormBookingRepository
	producer  *recordingProducer
	uploader  *fakeUploader
	tokens    *auth.JWTManager
	checker   *AvailabilityChecker
	booking   *BookingService
	carSvc    *CarService
	userSvc   *UserService
	dashboard *DashboardService
	now       time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.ConnectSQLite(database.MemoryDSN(uuid.NewString()), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	tokens, err := auth.NewJWTManager("test-secret", time.Hour, "service-rental")
	require.NoError(t, err)

	log := zap.NewNop()
	env := &testEnv{
		db:       db,
		users:    repository.NewGormUserRepository(db),
		cars:     repository.NewGormCarRepository(db),
		bookings: repository.NewGormBookingRepository(db),
		producer: &recordingProducer{},
		uploader: &fakeUploader{},
		tokens:   tokens,
		now:      time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC),
	}
	env.checker = NewAvailabilityChecker(env.bookings, env.cars, log)
	env.booking = NewBookingService(
		env.bookings, env.cars, env.users, env.checker,
		bookingDomain.NewDailyPricingStrategy(), lock.NewLocalLocker(),
		env.producer, "USD", log,
	)
	env.carSvc = NewCarService(env.cars, env.users, env.uploader, log)
	env.userSvc = NewUserService(env.users, tokens, env.uploader, log)
	env.dashboard = NewDashboardService(env.users, env.cars, env.bookings, "USD", log,
		WithClock(func() time.Time { return env.now }),
		WithLocation(time.UTC),
	)
	return env
}

func (e *testEnv) seedUser(t *testing.T, email string, owner bool) *userDomain.User {
	t.Helper()
	u, err := userDomain.NewUser("Test User", email, "supersecret")
	require.NoError(t, err)
	if owner {
		u.PromoteToOwner()
	}
	require.NoError(t, e.users.Save(context.Background(), u))
	return u
}

func (e *testEnv) seedCar(t *testing.T, ownerID uuid.UUID, location string, pricePerDayCents int64) *carDomain.Car {
	t.Helper()
	c, err := carDomain.NewCar(ownerID, carDomain.Details{
		Brand:            "Toyota",
		Model:            "Corolla",
		Year:             2022,
		Location:         location,
		PricePerDayCents: pricePerDayCents,
	}, "")
	require.NoError(t, err)
	require.NoError(t, e.cars.Save(context.Background(), c))
	return c
}

// seedBooking stores a booking with a fixed status and creation time.
func (e *testEnv) seedBooking(t *testing.T, car *carDomain.Car, userID uuid.UUID, pickup, ret string, status bookingDomain.BookingStatus, createdAt time.Time) *bookingDomain.Booking {
	t.Helper()
	period, err := bookingDomain.ParseDateRange(pickup, ret)
	require.NoError(t, err)
	bk := bookingDomain.ReconstructBooking(
		uuid.New(), car.ID(), userID, *car.OwnerID(), period, status,
		car.PricePerDayCents()*period.Days(), "USD", createdAt, createdAt,
	)
	require.NoError(t, e.bookings.SaveIfAvailable(context.Background(), bk))
	return bk
}
