package car

import (
	"time"

	"github.com/GoRent-Marketplace/service-rental/internal/common/domain"
	"github.com/google/uuid"
)

// Car is the aggregate root for a listed car.
//
// A car is never hard-deleted. Removing it clears the owner and takes it off the
// market, so bookings that reference it stay resolvable.
type Car struct {
	id               uuid.UUID
	ownerID          *uuid.UUID
	brand            string
	model            string
	year             int
	category         string
	seatingCapacity  int
	fuelType         string
	transmission     string
	location         string
	description      string
	imageURL         string
	pricePerDayCents int64
	isAvailable      bool
	createdAt        time.Time
	updatedAt        time.Time
}

// MaxPricePerDayCents caps the daily rate a car can be listed at.
const MaxPricePerDayCents int64 = 100_000_000

// Details holds the descriptive attributes supplied when listing a car.
type Details struct {
	Brand            string
	Model            string
	Year             int
	Category         string
	SeatingCapacity  int
	FuelType         string
	Transmission     string
	Location         string
	Description      string
	PricePerDayCents int64
}

// NewCar creates a new available car listing with validated fields.
func NewCar(ownerID uuid.UUID, d Details, imageURL string) (*Car, error) {
	if ownerID == uuid.Nil {
		return nil, domain.NewValidationError("owner ID is required")
	}
	if d.Brand == "" || d.Model == "" {
		return nil, domain.NewValidationError("brand and model are required")
	}
	if d.Location == "" {
		return nil, domain.NewValidationError("location is required")
	}
	if d.PricePerDayCents < 0 {
		return nil, domain.NewValidationError("price per day cannot be negative")
	}
	if d.PricePerDayCents > MaxPricePerDayCents {
		return nil, domain.NewValidationError("price per day is too large")
	}
	if d.SeatingCapacity < 0 {
		return nil, domain.NewValidationError("seating capacity cannot be negative")
	}

	now := time.Now().UTC()
	owner := ownerID
	return &Car{
		id:               uuid.New(),
		ownerID:          &owner,
		brand:            d.Brand,
		model:            d.Model,
		year:             d.Year,
		category:         d.Category,
		seatingCapacity:  d.SeatingCapacity,
		fuelType:         d.FuelType,
		transmission:     d.Transmission,
		location:         d.Location,
		description:      d.Description,
		imageURL:         imageURL,
		pricePerDayCents: d.PricePerDayCents,
		isAvailable:      true,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// Reconstruct rebuilds a Car from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	ownerID *uuid.UUID,
	d Details,
	imageURL string,
	isAvailable bool,
	createdAt, updatedAt time.Time,
) *Car {
	return &Car{
		id:               id,
		ownerID:          ownerID,
		brand:            d.Brand,
		model:            d.Model,
		year:             d.Year,
		category:         d.Category,
		seatingCapacity:  d.SeatingCapacity,
		fuelType:         d.FuelType,
		transmission:     d.Transmission,
		location:         d.Location,
		description:      d.Description,
		imageURL:         imageURL,
		pricePerDayCents: d.PricePerDayCents,
		isAvailable:      isAvailable,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// --- Getters ---

func (c *Car) ID() uuid.UUID           { return c.id }
func (c *Car) OwnerID() *uuid.UUID     { return c.ownerID }
func (c *Car) Brand() string           { return c.brand }
func (c *Car) Model() string           { return c.model }
func (c *Car) Year() int               { return c.year }
func (c *Car) Category() string        { return c.category }
func (c *Car) SeatingCapacity() int    { return c.seatingCapacity }
func (c *Car) FuelType() string        { return c.fuelType }
func (c *Car) Transmission() string    { return c.transmission }
func (c *Car) Location() string        { return c.location }
func (c *Car) Description() string     { return c.description }
func (c *Car) ImageURL() string        { return c.imageURL }
func (c *Car) PricePerDayCents() int64 { return c.pricePerDayCents }
func (c *Car) IsAvailable() bool       { return c.isAvailable }
func (c *Car) CreatedAt() time.Time    { return c.createdAt }
func (c *Car) UpdatedAt() time.Time    { return c.updatedAt }

// Details returns the descriptive attributes of the car.
func (c *Car) Details() Details {
	return Details{
		Brand:            c.brand,
		Model:            c.model,
		Year:             c.year,
		Category:         c.category,
		SeatingCapacity:  c.seatingCapacity,
		FuelType:         c.fuelType,
		Transmission:     c.transmission,
		Location:         c.location,
		Description:      c.description,
		PricePerDayCents: c.pricePerDayCents,
	}
}

// --- Behavior ---

// IsOwnedBy checks if the car is currently listed by the given user.
func (c *Car) IsOwnedBy(userID uuid.UUID) bool {
	return c.ownerID != nil && *c.ownerID == userID
}

// IsRemoved reports whether the car has been taken off the market for good.
func (c *Car) IsRemoved() bool {
	return c.ownerID == nil
}

// ToggleAvailability flips whether the car can be found in availability searches.
func (c *Car) ToggleAvailability() error {
	if c.IsRemoved() {
		return domain.NewInvalidStateError("removed", "available")
	}
	c.isAvailable = !c.isAvailable
	c.updatedAt = time.Now().UTC()
	return nil
}

// Remove soft-deletes the car: ownership is cleared and it is no longer available.
func (c *Car) Remove() {
	c.ownerID = nil
	c.isAvailable = false
	c.updatedAt = time.Now().UTC()
}
