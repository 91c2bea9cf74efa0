// Package lock provides keyed mutual exclusion for critical sections that
// must not interleave, such as the availability check and insert of a booking
// for one car.
package lock

import (
	"context"
	"errors"
)

// ErrNotAcquired is returned when the context ends before the lock is obtained.
var ErrNotAcquired = errors.New("lock not acquired")

// Locker acquires exclusive locks by key. The returned release function is
// safe to call more than once.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// CarKey returns the lock key guarding bookings of one car.
func CarKey(carID string) string {
	return "car:" + carID
}
