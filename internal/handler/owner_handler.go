package handler

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/GoRent-Marketplace/service-rental/internal/application"
	"github.com/GoRent-Marketplace/service-rental/internal/common/auth"
	"github.com/GoRent-Marketplace/service-rental/internal/common/middleware"
	"github.com/GoRent-Marketplace/service-rental/internal/common/response"
	"github.com/GoRent-Marketplace/service-rental/internal/media"
)

// OwnerHandler handles HTTP requests for owners managing their fleet.
type OwnerHandler struct {
	cars      *application.CarService
	dashboard *application.DashboardService
	users     *application.UserService
}

// NewOwnerHandler creates a new OwnerHandler.
func NewOwnerHandler(
	cars *application.CarService,
	dashboard *application.DashboardService,
	users *application.UserService,
) *OwnerHandler {
	return &OwnerHandler{cars: cars, dashboard: dashboard, users: users}
}

// carIDRequest is the body of the toggle and delete endpoints.
type carIDRequest struct {
	CarID string `json:"carId" binding:"required"`
}

// RegisterRoutes registers owner routes.
func (h *OwnerHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	ownerRole := middleware.RequireRole(auth.RoleOwner)

	owner := r.Group("/api/v1/owner")
	owner.Use(authMW)
	{
		owner.POST("/change-role", h.ChangeRole)
		owner.POST("/update-image", h.UpdateImage)

		owner.GET("/dashboard", ownerRole, h.Dashboard)
		owner.POST("/add-car", ownerRole, h.AddCar)
		owner.GET("/cars", ownerRole, h.OwnerCars)
		owner.POST("/toggle-car", ownerRole, h.ToggleCar)
		owner.POST("/delete-car", ownerRole, h.DeleteCar)
	}
}

// ChangeRole handles POST /api/v1/owner/change-role.
func (h *OwnerHandler) ChangeRole(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	token, err := h.users.ChangeRoleToOwner(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Now you can list cars", "token": token})
}

// Dashboard handles GET /api/v1/owner/dashboard.
func (h *OwnerHandler) Dashboard(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	data, err := h.dashboard.GetDashboard(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"dashboardData": data})
}

// AddCar handles POST /api/v1/owner/add-car. The body is multipart with the
// listing as JSON in "carData" and an optional "image" file.
func (h *OwnerHandler) AddCar(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	var req application.AddCarRequest
	if err := json.Unmarshal([]byte(c.PostForm("carData")), &req); err != nil {
		response.BadRequest(c, "invalid carData")
		return
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	image, closeImage, err := formImage(c, "image")
	if err != nil {
		response.BadRequest(c, "invalid image")
		return
	}
	defer closeImage()

	car, err := h.cars.AddCar(c.Request.Context(), userID, req, image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Car Added", "car": car})
}

// OwnerCars handles GET /api/v1/owner/cars.
func (h *OwnerHandler) OwnerCars(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	cars, err := h.cars.GetOwnerCars(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"cars": cars})
}

// ToggleCar handles POST /api/v1/owner/toggle-car.
func (h *OwnerHandler) ToggleCar(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	var req carIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if _, err := h.cars.ToggleAvailability(c.Request.Context(), userID, req.CarID); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Availability Toggled")
}

// DeleteCar handles POST /api/v1/owner/delete-car.
func (h *OwnerHandler) DeleteCar(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	var req carIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.cars.RemoveCar(c.Request.Context(), userID, req.CarID); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Car Removed")
}

// UpdateImage handles POST /api/v1/owner/update-image.
func (h *OwnerHandler) UpdateImage(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	image, closeImage, err := formImage(c, "image")
	if err != nil || image == nil {
		response.BadRequest(c, "image is required")
		return
	}
	defer closeImage()

	url, err := h.users.UpdateProfileImage(c.Request.Context(), userID, *image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Image Updated", "image": url})
}

// formImage opens an optional uploaded file. A missing field yields a nil image.
func formImage(c *gin.Context, field string) (*media.Image, func(), error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}

	file, err := header.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return imageFromHeader(header, file), func() { _ = file.Close() }, nil
}

func imageFromHeader(header *multipart.FileHeader, file multipart.File) *media.Image {
	return &media.Image{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
}
