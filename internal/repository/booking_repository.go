package repository

import (
	"context"
	"errors"
	"time"

	"github.com/GoRent-Marketplace/service-rental/internal/common/domain"
	bookingDomain "github.com/GoRent-Marketplace/service-rental/internal/domain/booking"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CarID      uuid.UUID `gorm:"type:uuid;not null;index:idx_bookings_car_period"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	OwnerID    uuid.UUID `gorm:"type:uuid;not null;index"`
	PickupDate time.Time `gorm:"not null;index:idx_bookings_car_period"`
	ReturnDate time.Time `gorm:"not null;index:idx_bookings_car_period"`
	Status     string    `gorm:"not null;size:20;index"`
	PriceCents int64     `gorm:"not null"`
	Currency   string    `gorm:"not null;size:3"`
	CreatedAt  time.Time `gorm:"not null;index"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, domain.NewStoreError("find booking by ID", err)
	}
	return toDomainBooking(&model)
}

// FindByUserID retrieves the renter's bookings, newest first.
func (r *GormBookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, domain.NewStoreError("find user bookings", err)
	}
	return toDomainBookings(models)
}

// FindByOwnerID retrieves bookings recorded against the owner, newest first.
func (r *GormBookingRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, limit int) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	q := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&models).Error; err != nil {
		return nil, domain.NewStoreError("find owner bookings", err)
	}
	return toDomainBookings(models)
}

// HasOverlap reports whether a calendar-blocking booking on the car overlaps period.
// Bounds are inclusive on both sides.
func (r *GormBookingRepository) HasOverlap(ctx context.Context, carID uuid.UUID, period bookingDomain.DateRange) (bool, error) {
	n, err := countOverlaps(r.db.WithContext(ctx), carID, period)
	if err != nil {
		return false, domain.NewStoreError("check booking overlap", err)
	}
	return n > 0, nil
}

// CountByStatus returns the owner's booking counts grouped by status.
func (r *GormBookingRepository) CountByStatus(ctx context.Context, ownerID uuid.UUID) (map[bookingDomain.BookingStatus]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Where("owner_id = ?", ownerID).
		Group("status").
		Find(&results).Error; err != nil {
		return nil, domain.NewStoreError("count bookings by status", err)
	}

	counts := make(map[bookingDomain.BookingStatus]int64, len(results))
	for _, sc := range results {
		counts[bookingDomain.BookingStatus(sc.Status)] = sc.Count
	}
	return counts, nil
}

// SumRevenue sums the prices of the owner's bookings in status created in [from, to).
func (r *GormBookingRepository) SumRevenue(ctx context.Context, ownerID uuid.UUID, status bookingDomain.BookingStatus, from, to time.Time) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("COALESCE(SUM(price_cents), 0)").
		Where("owner_id = ? AND status = ? AND created_at >= ? AND created_at < ?",
			ownerID, string(status), from.UTC(), to.UTC()).
		Scan(&total).Error; err != nil {
		return 0, domain.NewStoreError("sum revenue", err)
	}
	return total, nil
}

// SaveIfAvailable inserts the booking only if no calendar-blocking booking on the
// same car overlaps it. The car row is locked for the duration of the check so
// concurrent inserts for one car are serialised.
func (r *GormBookingRepository) SaveIfAvailable(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var car CarModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", model.CarID).
			First(&car).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewNotFoundError("Car", model.CarID.String())
			}
			return err
		}

		n, err := countOverlaps(tx, model.CarID, bk.Period())
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.NewUnavailableError("Car is not available")
		}

		return tx.Create(model).Error
	})
	if err == nil {
		return nil
	}

	var domainErr *domain.Error
	switch {
	case errors.As(err, &domainErr):
		return err
	case isOverlapViolation(err):
		return domain.NewUnavailableError("Car is not available")
	default:
		return domain.NewStoreError("save booking", err)
	}
}

// UpdateStatus persists the booking's current status. Concurrent writers are
// last-writer-wins.
func (r *GormBookingRepository) UpdateStatus(ctx context.Context, bk *bookingDomain.Booking) error {
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ?", bk.ID()).
		Updates(map[string]interface{}{
			"status":     string(bk.Status()),
			"updated_at": bk.UpdatedAt(),
		})
	if result.Error != nil {
		return domain.NewStoreError("update booking status", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Booking", bk.ID().String())
	}
	return nil
}

func countOverlaps(db *gorm.DB, carID uuid.UUID, period bookingDomain.DateRange) (int64, error) {
	var n int64
	err := db.Model(&BookingModel{}).
		Where("car_id = ? AND status <> ? AND pickup_date <= ? AND return_date >= ?",
			carID, string(bookingDomain.StatusCancelled), period.Return.UTC(), period.Pickup.UTC()).
		Count(&n).Error
	return n, err
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:         bk.ID(),
		CarID:      bk.CarID(),
		UserID:     bk.UserID(),
		OwnerID:    bk.OwnerID(),
		PickupDate: bk.PickupDate().UTC(),
		ReturnDate: bk.ReturnDate().UTC(),
		Status:     string(bk.Status()),
		PriceCents: bk.PriceCents(),
		Currency:   bk.Currency(),
		CreatedAt:  bk.CreatedAt().UTC(),
		UpdatedAt:  bk.UpdatedAt().UTC(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, domain.NewStoreError("decode booking status", err)
	}

	period := bookingDomain.DateRange{Pickup: m.PickupDate.UTC(), Return: m.ReturnDate.UTC()}
	return bookingDomain.ReconstructBooking(
		m.ID,
		m.CarID,
		m.UserID,
		m.OwnerID,
		period,
		status,
		m.PriceCents,
		m.Currency,
		m.CreatedAt.UTC(),
		m.UpdatedAt.UTC(),
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}
