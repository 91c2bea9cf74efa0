package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/GoRent-Marketplace/service-rental/internal/common/domain"
)

const secondsPerDay = 24 * 60 * 60

// MaxRentalDays is the longest period a single booking may cover.
const MaxRentalDays = 365

// dateLayouts are tried in order when parsing request dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// DateRange is the rental period from pickup to return. Both bounds are inclusive.
type DateRange struct {
	Pickup time.Time
	Return time.Time
}

// ParseDate parses a calendar date or timestamp and normalises it to UTC.
// Inputs without a zone are read as UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// NewDateRange validates that the return comes strictly after the pickup and
// that the period is at most MaxRentalDays long.
func NewDateRange(pickup, ret time.Time) (DateRange, error) {
	if !ret.After(pickup) {
		return DateRange{}, domain.NewInvalidRangeError("Return date must be after pickup date")
	}
	r := DateRange{Pickup: pickup.UTC(), Return: ret.UTC()}
	if r.Days() > MaxRentalDays {
		return DateRange{}, domain.NewInvalidRangeError(
			fmt.Sprintf("Rental period cannot exceed %d days", MaxRentalDays))
	}
	return r, nil
}

// ParseDateRange parses both dates and validates their order.
func ParseDateRange(pickup, ret string) (DateRange, error) {
	p, err := ParseDate(pickup)
	if err != nil {
		return DateRange{}, domain.NewValidationError("Invalid dates provided")
	}
	r, err := ParseDate(ret)
	if err != nil {
		return DateRange{}, domain.NewValidationError("Invalid dates provided")
	}
	return NewDateRange(p, r)
}

// Overlaps reports whether the two ranges share at least one instant.
// A range ending on the day another starts counts as overlapping.
func (r DateRange) Overlaps(other DateRange) bool {
	return !r.Pickup.After(other.Return) && !other.Pickup.After(r.Return)
}

// Days returns the number of charged days; a partial day counts as a full one.
// It works on Unix seconds so that spans beyond time.Duration's range are exact.
func (r DateRange) Days() int64 {
	secs := r.Return.Unix() - r.Pickup.Unix()
	nanos := r.Return.Nanosecond() - r.Pickup.Nanosecond()
	if nanos < 0 {
		secs--
		nanos += int(time.Second)
	}
	if secs < 0 || (secs == 0 && nanos == 0) {
		return 0
	}
	days := secs / secondsPerDay
	if secs%secondsPerDay != 0 || nanos > 0 {
		days++
	}
	return days
}
