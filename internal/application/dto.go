package application

import (
	"context"
	"time"

	"github.com/GoRent-Marketplace/service-rental/internal/common/auth"
	"github.com/GoRent-Marketplace/service-rental/internal/common/kafka"
	bookingDomain "github.com/GoRent-Marketplace/service-rental/internal/domain/booking"
	carDomain "github.com/GoRent-Marketplace/service-rental/internal/domain/car"
	userDomain "github.com/GoRent-Marketplace/service-rental/internal/domain/user"
	"github.com/google/uuid"
)

// EventProducer publishes CloudEvents. *kafka.Producer and kafka.NopProducer satisfy it.
type EventProducer interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// TokenIssuer signs access tokens. *auth.JWTManager satisfies it.
type TokenIssuer interface {
	Generate(userID uuid.UUID, role auth.Role) (string, error)
}

// CarDTO is the API response representation of a car listing.
type CarDTO struct {
	ID               uuid.UUID  `json:"id"`
	OwnerID          *uuid.UUID `json:"owner"`
	Brand            string     `json:"brand"`
	Model            string     `json:"model"`
	Year             int        `json:"year"`
	Category         string     `json:"category"`
	SeatingCapacity  int        `json:"seatingCapacity"`
	FuelType         string     `json:"fuelType"`
	Transmission     string     `json:"transmission"`
	Location         string     `json:"location"`
	Description      string     `json:"description"`
	ImageURL         string     `json:"image"`
	PricePerDayCents int64      `json:"pricePerDay"`
	IsAvailable      bool       `json:"isAvailable"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// UserDTO is the public view of an account. It never carries the password hash.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ImageURL  string    `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
}

// BookingDTO is the response representation of a booking. Car and User are
// filled in when the caller asked for them and the records still exist.
type BookingDTO struct {
	ID         uuid.UUID `json:"id"`
	CarID      uuid.UUID `json:"carId"`
	Car        *CarDTO   `json:"car,omitempty"`
	UserID     uuid.UUID `json:"userId"`
	User       *UserDTO  `json:"user,omitempty"`
	OwnerID    uuid.UUID `json:"owner"`
	PickupDate time.Time `json:"pickupDate"`
	ReturnDate time.Time `json:"returnDate"`
	Status     string    `json:"status"`
	PriceCents int64     `json:"price"`
	Currency   string    `json:"currency"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func toCarDTO(c *carDomain.Car) CarDTO {
	d := c.Details()
	return CarDTO{
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
		CreatedAt:        c.CreatedAt(),
		UpdatedAt:        c.UpdatedAt(),
	}
}

func toCarDTOs(cars []*carDomain.Car) []CarDTO {
	dtos := make([]CarDTO, len(cars))
	for i, c := range cars {
		dtos[i] = toCarDTO(c)
	}
	return dtos
}

func toUserDTO(u *userDomain.User) UserDTO {
	return UserDTO{
		ID:        u.ID(),
		Name:      u.Name(),
		Email:     u.Email(),
		Role:      string(u.Role()),
		ImageURL:  u.ImageURL(),
		CreatedAt: u.CreatedAt(),
	}
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:         bk.ID(),
		CarID:      bk.CarID(),
		UserID:     bk.UserID(),
		OwnerID:    bk.OwnerID(),
		PickupDate: bk.PickupDate(),
		ReturnDate: bk.ReturnDate(),
		Status:     string(bk.Status()),
		PriceCents: bk.PriceCents(),
		Currency:   bk.Currency(),
		CreatedAt:  bk.CreatedAt(),
		UpdatedAt:  bk.UpdatedAt(),
	}
}
