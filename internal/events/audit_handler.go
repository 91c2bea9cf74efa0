package events

import (
	"context"

	"go.uber.org/zap"
)

// AuditLogHandler writes every booking event to the log. It backs the optional
// audit consumer started by the server.
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates a new AuditLogHandler.
func NewAuditLogHandler(logger *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{logger: logger}
}

func (h *AuditLogHandler) OnBookingCreated(_ context.Context, evt BookingCreatedEvent) error {
	h.logger.Info("booking created",
		zap.String("booking_id", evt.BookingID.String()),
		zap.String("car_id", evt.CarID.String()),
		zap.String("user_id", evt.UserID.String()),
		zap.Time("pickup_date", evt.PickupDate),
		zap.Time("return_date", evt.ReturnDate),
		zap.Int64("price_cents", evt.PriceCents),
		zap.String("currency", evt.Currency),
	)
	return nil
}

func (h *AuditLogHandler) OnBookingStatusChanged(_ context.Context, evt BookingStatusChangedEvent) error {
	h.logger.Info("booking status changed",
		zap.String("booking_id", evt.BookingID.String()),
		zap.String("owner_id", evt.OwnerID.String()),
		zap.String("old_status", evt.OldStatus),
		zap.String("new_status", evt.NewStatus),
	)
	return nil
}
