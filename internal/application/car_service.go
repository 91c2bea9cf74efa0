package application

import (
	"context"
	"errors"

	"github.com/GoRent-Marketplace/service-rental/internal/common/domain"
	carDomain "github.com/GoRent-Marketplace/service-rental/internal/domain/car"
	userDomain "github.com/GoRent-Marketplace/service-rental/internal/domain/user"
	"github.com/GoRent-Marketplace/service-rental/internal/media"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddCarRequest is the request DTO for listing a car.
type AddCarRequest struct {
	Brand            string `json:"brand" binding:"required"`
	Model            string `json:"model" binding:"required"`
	Year             int    `json:"year" binding:"required,gte=1900"`
	Category         string `json:"category"`
	SeatingCapacity  int    `json:"seatingCapacity" binding:"gte=0"`
	FuelType         string `json:"fuelType"`
	Transmission     string `json:"transmission"`
	Location         string `json:"location" binding:"required"`
	Description      string `json:"description"`
	PricePerDayCents int64  `json:"pricePerDay" binding:"gte=0,lte=100000000"`
}

// CarService implements use cases for car listings.
type CarService struct {
	cars     carDomain.CarRepository
	users    userDomain.UserRepository
	uploader media.Uploader
	logger   *zap.Logger
}

// NewCarService creates a new CarService.
func NewCarService(
	cars carDomain.CarRepository,
	users userDomain.UserRepository,
	uploader media.Uploader,
	logger *zap.Logger,
) *CarService {
	return &CarService{cars: cars, users: users, uploader: uploader, logger: logger}
}

// AddCar lists a new car for the owner. The image is optional.
func (s *CarService) AddCar(ctx context.Context, ownerID uuid.UUID, req AddCarRequest, image *media.Image) (*CarDTO, error) {
	if err := requireOwner(ctx, s.users, ownerID); err != nil {
		return nil, err
	}

	details := carDomain.Details{
		Brand:            req.Brand,
		Model:            req.Model,
		Year:             req.Year,
		Category:         req.Category,
		SeatingCapacity:  req.SeatingCapacity,
		FuelType:         req.FuelType,
		Transmission:     req.Transmission,
		Location:         req.Location,
		Description:      req.Description,
		PricePerDayCents: req.PricePerDayCents,
	}
	// Validate before uploading so a bad request leaves no orphaned object.
	if _, err := carDomain.NewCar(ownerID, details, ""); err != nil {
		return nil, err
	}

	var imageURL string
	if image != nil {
		url, err := uploadImage(ctx, s.uploader, s.logger, media.FolderCars, *image, media.CarImage)
		if err != nil {
			return nil, err
		}
		imageURL = url
	}

	car, err := carDomain.NewCar(ownerID, details, imageURL)
	if err != nil {
		return nil, err
	}
	if err := s.cars.Save(ctx, car); err != nil {
		s.logger.Error("failed to add car", zap.Error(err))
		return nil, err
	}

	s.logger.Info("car listed",
		zap.String("car_id", car.ID().String()),
		zap.String("owner_id", ownerID.String()),
	)
	result := toCarDTO(car)
	return &result, nil
}

// GetOwnerCars returns the cars currently listed by the owner.
func (s *CarService) GetOwnerCars(ctx context.Context, ownerID uuid.UUID) ([]CarDTO, error) {
	if err := requireOwner(ctx, s.users, ownerID); err != nil {
		return nil, err
	}
	cars, err := s.cars.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return toCarDTOs(cars), nil
}

// ListAvailableCars returns the public catalogue.
func (s *CarService) ListAvailableCars(ctx context.Context) ([]CarDTO, error) {
	cars, err := s.cars.FindAvailable(ctx, "")
	if err != nil {
		return nil, err
	}
	return toCarDTOs(cars), nil
}

// ToggleAvailability flips whether the owner's car appears in searches.
func (s *CarService) ToggleAvailability(ctx context.Context, ownerID uuid.UUID, carID string) (*CarDTO, error) {
	car, err := s.ownedCar(ctx, ownerID, carID)
	if err != nil {
		return nil, err
	}
	if err := car.ToggleAvailability(); err != nil {
		return nil, err
	}
	if err := s.cars.Update(ctx, car); err != nil {
		return nil, err
	}

	s.logger.Info("car availability toggled",
		zap.String("car_id", car.ID().String()),
		zap.Bool("is_available", car.IsAvailable()),
	)
	result := toCarDTO(car)
	return &result, nil
}

// RemoveCar takes the owner's car off the market. The record is kept so
// existing bookings still resolve it.
func (s *CarService) RemoveCar(ctx context.Context, ownerID uuid.UUID, carID string) error {
	car, err := s.ownedCar(ctx, ownerID, carID)
	if err != nil {
		return err
	}
	car.Remove()
	if err := s.cars.Update(ctx, car); err != nil {
		return err
	}

	s.logger.Info("car removed",
		zap.String("car_id", car.ID().String()),
		zap.String("owner_id", ownerID.String()),
	)
	return nil
}

func (s *CarService) ownedCar(ctx context.Context, ownerID uuid.UUID, rawID string) (*carDomain.Car, error) {
	if err := requireOwner(ctx, s.users, ownerID); err != nil {
		return nil, err
	}
	carID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, domain.NewValidationError("Invalid car id")
	}
	car, err := s.cars.FindByID(ctx, carID)
	if err != nil {
		return nil, err
	}
	if !car.IsOwnedBy(ownerID) {
		return nil, domain.NewForbiddenError("Unauthorized")
	}
	return car, nil
}

func uploadImage(ctx context.Context, up media.Uploader, logger *zap.Logger, folder string, img media.Image, tr media.Transformation) (string, error) {
	url, err := up.Upload(ctx, folder, img, tr)
	if err != nil {
		if errors.Is(err, media.ErrUploadsDisabled) {
			return "", domain.NewValidationError(err.Error())
		}
		logger.Error("image upload failed", zap.String("folder", folder), zap.Error(err))
		return "", domain.NewStoreError("upload image", err)
	}
	return url, nil
}
