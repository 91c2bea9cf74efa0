package car

import (
	"context"

	"github.com/google/uuid"
)

// CarRepository defines persistence operations for car listings.
type CarRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Car, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Car, error)
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*Car, error)
	FindAvailable(ctx context.Context, location string) ([]*Car, error)
	CountByOwnerID(ctx context.Context, ownerID uuid.UUID) (int64, error)
	SumPricePerDay(ctx context.Context, ownerID uuid.UUID) (int64, error)
	Save(ctx context.Context, car *Car) error
	Update(ctx context.Context, car *Car) error
}
