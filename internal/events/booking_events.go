// Package events defines the booking events published on Kafka and a
// consumer that decodes them.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Source identifies this service in CloudEvent envelopes.
const Source = "service-rental"

// TopicBookingEvents carries every booking lifecycle event, keyed by booking ID.
const TopicBookingEvents = "booking.events"

// Booking event types.
const (
	BookingCreated       = "booking.created"
	BookingStatusChanged = "booking.status_changed"
)

// BookingCreatedEvent is published after a booking is stored.
type BookingCreatedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	CarID      uuid.UUID `json:"car_id"`
	UserID     uuid.UUID `json:"user_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	PickupDate time.Time `json:"pickup_date"`
	ReturnDate time.Time `json:"return_date"`
	Status     string    `json:"status"`
	PriceCents int64     `json:"price_cents"`
	Currency   string    `json:"currency"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingStatusChangedEvent is published after an owner confirms or cancels a booking.
type BookingStatusChangedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	CarID      uuid.UUID `json:"car_id"`
	UserID     uuid.UUID `json:"user_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	OldStatus  string    `json:"old_status"`
	NewStatus  string    `json:"new_status"`
	OccurredAt time.Time `json:"occurred_at"`
}
