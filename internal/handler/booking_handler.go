package handler

import (
	"github.com/GoRent-Marketplace/service-rental/internal/application"
	"github.com/GoRent-Marketplace/service-rental/internal/common/auth"
	"github.com/GoRent-Marketplace/service-rental/internal/common/middleware"
	"github.com/GoRent-Marketplace/service-rental/internal/common/response"
	"github.com/gin-gonic/gin"
)

// BookingHandler handles HTTP requests for availability and booking operations.
type BookingHandler struct {
	service      *application.BookingService
	availability *application.AvailabilityChecker
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService, availability *application.AvailabilityChecker) *BookingHandler {
	return &BookingHandler{service: service, availability: availability}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	ownerRole := middleware.RequireRole(auth.RoleOwner)

	r.POST("/api/v1/availability", h.SearchAvailability)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("/mine", h.MyBookings)
		bookings.GET("/owner", ownerRole, h.OwnerBookings)
		bookings.POST("/status", ownerRole, h.ChangeStatus)
	}
}

// SearchAvailability handles POST /api/v1/availability.
func (h *BookingHandler) SearchAvailability(c *gin.Context) {
	var req application.SearchAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	cars, err := h.availability.SearchAvailableCars(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"availableCars": cars})
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Booking Created", "booking": result})
}

// MyBookings handles GET /api/v1/bookings/mine.
func (h *BookingHandler) MyBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	bookings, err := h.service.GetUserBookings(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"bookings": bookings})
}

// OwnerBookings handles GET /api/v1/bookings/owner.
func (h *BookingHandler) OwnerBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	bookings, err := h.service.GetOwnerBookings(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"bookings": bookings})
}

// ChangeStatus handles POST /api/v1/bookings/status.
func (h *BookingHandler) ChangeStatus(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	var req application.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SetStatus(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Status Updated", "booking": result})
}
