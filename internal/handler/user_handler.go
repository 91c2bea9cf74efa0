package handler

import (
	"github.com/GoRent-Marketplace/service-rental/internal/application"
	"github.com/GoRent-Marketplace/service-rental/internal/common/auth"
	"github.com/GoRent-Marketplace/service-rental/internal/common/middleware"
	"github.com/GoRent-Marketplace/service-rental/internal/common/response"
	"github.com/gin-gonic/gin"
)

// UserHandler handles account endpoints and the public car catalogue.
type UserHandler struct {
	users *application.UserService
	cars  *application.CarService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *application.UserService, cars *application.CarService) *UserHandler {
	return &UserHandler{users: users, cars: cars}
}

// RegisterRoutes registers user routes.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	user := r.Group("/api/v1/user")
	{
		user.POST("/register", h.Register)
		user.POST("/login", h.Login)
		user.GET("/cars", h.Cars)
		user.GET("/data", middleware.AuthMiddleware(jwtManager), h.UserData)
	}
}

// Register handles POST /api/v1/user/register.
func (h *UserHandler) Register(c *gin.Context) {
	var req application.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	token, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"token": token})
}

// Login handles POST /api/v1/user/login.
func (h *UserHandler) Login(c *gin.Context) {
	var req application.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	token, err := h.users.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"token": token})
}

// UserData handles GET /api/v1/user/data.
func (h *UserHandler) UserData(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"user": user})
}

// Cars handles GET /api/v1/user/cars.
func (h *UserHandler) Cars(c *gin.Context) {
	cars, err := h.cars.ListAvailableCars(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"cars": cars})
}
