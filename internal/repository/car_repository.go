package repository

import (
	"context"
	"errors"
	"time"

	"github.com/GoRent-Marketplace/service-rental/internal/common/domain"
	carDomain "github.com/GoRent-Marketplace/service-rental/internal/domain/car"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CarModel is the GORM model for the cars table.
type CarModel struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OwnerID          *uuid.UUID `gorm:"type:uuid;index"`
	Brand            string     `gorm:"type:varchar(100);not null"`
	Model            string     `gorm:"type:varchar(100);not null"`
	Year             int        `gorm:"not null"`
	Category         string     `gorm:"type:varchar(50)"`
	SeatingCapacity  int        `gorm:"not null;default:0"`
	FuelType         string     `gorm:"type:varchar(30)"`
	Transmission     string     `gorm:"type:varchar(30)"`
	Location         string     `gorm:"type:varchar(100);not null;index"`
	Description      string     `gorm:"type:text"`
	ImageURL         string     `gorm:"type:text"`
	PricePerDayCents int64      `gorm:"not null"`
	IsAvailable      bool       `gorm:"not null;index"`
	CreatedAt        time.Time  `gorm:"not null"`
	UpdatedAt        time.Time  `gorm:"not null"`
}

func (CarModel) TableName() string { return "cars" }

// GormCarRepository implements CarRepository using GORM.
type GormCarRepository struct {
	db *gorm.DB
}

func NewGormCarRepository(db *gorm.DB) *GormCarRepository {
	return &GormCarRepository{db: db}
}

func (r *GormCarRepository) FindByID(ctx context.Context, id uuid.UUID) (*carDomain.Car, error) {
	var model CarModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Car", id.String())
		}
		return nil, domain.NewStoreError("find car by ID", err)
	}
	return toCarDomain(&model), nil
}

// FindByIDs loads the given cars keyed by ID. Missing IDs are left out of the map.
func (r *GormCarRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*carDomain.Car, error) {
	cars := make(map[uuid.UUID]*carDomain.Car, len(ids))
	if len(ids) == 0 {
		return cars, nil
	}
	var models []CarModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, domain.NewStoreError("find cars by IDs", err)
	}
	for i := range models {
		cars[models[i].ID] = toCarDomain(&models[i])
	}
	return cars, nil
}

func (r *GormCarRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*carDomain.Car, error) {
	var models []CarModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, domain.NewStoreError("find owner cars", err)
	}
	return toCarDomains(models), nil
}

// FindAvailable lists cars open for booking. An empty location matches every location.
func (r *GormCarRepository) FindAvailable(ctx context.Context, location string) ([]*carDomain.Car, error) {
	var models []CarModel
	q := r.db.WithContext(ctx).
		Where("is_available = ? AND owner_id IS NOT NULL", true)
	if location != "" {
		q = q.Where("location = ?", location)
	}
	if err := q.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, domain.NewStoreError("find available cars", err)
	}
	return toCarDomains(models), nil
}

func (r *GormCarRepository) CountByOwnerID(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&CarModel{}).
		Where("owner_id = ?", ownerID).
		Count(&n).Error; err != nil {
		return 0, domain.NewStoreError("count owner cars", err)
	}
	return n, nil
}

func (r *GormCarRepository) SumPricePerDay(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&CarModel{}).
		Select("COALESCE(SUM(price_per_day_cents), 0)").
		Where("owner_id = ?", ownerID).
		Scan(&total).Error; err != nil {
		return 0, domain.NewStoreError("sum car prices", err)
	}
	return total, nil
}

func (r *GormCarRepository) Save(ctx context.Context, car *carDomain.Car) error {
	if err := r.db.WithContext(ctx).Create(toCarModel(car)).Error; err != nil {
		return domain.NewStoreError("save car", err)
	}
	return nil
}

// Update writes the mutable fields of the car. A nil owner is written as NULL.
func (r *GormCarRepository) Update(ctx context.Context, car *carDomain.Car) error {
	model := toCarModel(car)
	result := r.db.WithContext(ctx).
		Model(&CarModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"owner_id":     model.OwnerID,
			"is_available": model.IsAvailable,
			"image_url":    model.ImageURL,
			"updated_at":   model.UpdatedAt,
		})
	if result.Error != nil {
		return domain.NewStoreError("update car", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Car", model.ID.String())
	}
	return nil
}

func toCarModel(c *carDomain.Car) *CarModel {
	d := c.Details()
	return &CarModel{
		ID:               c.ID(),
		OwnerID:          c.OwnerID(),
		Brand:            d.Brand,
		Model:            d.Model,
		Year:             d.Year,
		Category:         d.Category,
		SeatingCapacity:  d.SeatingCapacity,
		FuelType:         d.FuelType,
		Transmission:     d.Transmission,
		Location:         d.Location,
		Description:      d.Description,
		ImageURL:         c.ImageURL(),
		PricePerDayCents: d.PricePerDayCents,
		IsAvailable:      c.IsAvailable(),
		CreatedAt:        c.CreatedAt().UTC(),
		UpdatedAt:        c.UpdatedAt().UTC(),
	}
}

func toCarDomain(m *CarModel) *carDomain.Car {
	return carDomain.Reconstruct(
		m.ID,
		m.OwnerID,
		carDomain.Details{
			Brand:            m.Brand,
			Model:            m.Model,
			Year:             m.Year,
			Category:         m.Category,
			SeatingCapacity:  m.SeatingCapacity,
			FuelType:         m.FuelType,
			Transmission:     m.Transmission,
			Location:         m.Location,
			Description:      m.Description,
			PricePerDayCents: m.PricePerDayCents,
		},
		m.ImageURL,
		m.IsAvailable,
		m.CreatedAt.UTC(),
		m.UpdatedAt.UTC(),
	)
}

func toCarDomains(models []CarModel) []*carDomain.Car {
	cars := make([]*carDomain.Car, len(models))
	for i := range models {
		cars[i] = toCarDomain(&models[i])
	}
	return cars
}
