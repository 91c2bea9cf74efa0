package booking

import (
	"errors"
	"fmt"
	"math"
)

// ErrPriceOverflow is returned when the total does not fit in int64 cents.
var ErrPriceOverflow = errors.New("booking price is too large")

// PricingStrategy defines the interface for calculating booking prices.
type PricingStrategy interface {
	// Calculate returns the price in cents for the given parameters.
	Calculate(params PricingParams) (int64, error)
}

// PricingParams holds the inputs for price calculation.
type PricingParams struct {
	PricePerDayCents int64
	Period           DateRange
}

// DailyPricingStrategy charges the car's daily rate for every started day.
type DailyPricingStrategy struct{}

// NewDailyPricingStrategy creates a new DailyPricingStrategy.
func NewDailyPricingStrategy() *DailyPricingStrategy {
	return &DailyPricingStrategy{}
}

// Calculate computes pricePerDay * ceil(days), clamped to zero.
func (s *DailyPricingStrategy) Calculate(params PricingParams) (int64, error) {
	days := params.Period.Days()
	if days <= 0 {
		return 0, fmt.Errorf("rental period must span at least one day")
	}
	if params.PricePerDayCents <= 0 {
		return 0, nil
	}
	if days > math.MaxInt64/params.PricePerDayCents {
		return 0, ErrPriceOverflow
	}
	return params.PricePerDayCents * days, nil
}
