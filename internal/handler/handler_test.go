package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GoRent-Marketplace/service-rental/internal/application"
	"github.com/GoRent-Marketplace/service-rental/internal/common/auth"
	"github.com/GoRent-Marketplace/service-rental/internal/common/database"
	"github.com/GoRent-Marketplace/service-rental/internal/common/kafka"
	bookingDomain "github.com/GoRent-Marketplace/service-rental/internal/domain/booking"
	"github.com/GoRent-Marketplace/service-rental/internal/lock"
	"github.com/GoRent-Marketplace/service-rental/internal/media"
	"github.com/GoRent-Marketplace/service-rental/internal/repository"
)

type testServer struct {
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.ConnectSQLite(database.MemoryDSN(uuid.NewString()), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	jwtManager, err := auth.NewJWTManager("handler-secret", time.Hour, "service-rental")
	require.NoError(t, err)

	log := zap.NewNop()
	users := repository.NewGormUserRepository(db)
	cars := repository.NewGormCarRepository(db)
	bookings := repository.NewGormBookingRepository(db)

	checker := application.NewAvailabilityChecker(bookings, cars, log)
	bookingSvc := application.NewBookingService(
		bookings, cars, users, checker,
		bookingDomain.NewDailyPricingStrategy(), lock.NewLocalLocker(),
		kafka.NopProducer{}, "USD", log,
	)
	carSvc := application.NewCarService(cars, users, media.DisabledUploader{}, log)
	userSvc := application.NewUserService(users, jwtManager, media.DisabledUploader{}, log)
	dashboardSvc := application.NewDashboardService(users, cars, bookings, "USD", log)

	router := gin.New()
	api := router.Group("")
	NewUserHandler(userSvc, carSvc).RegisterRoutes(api, jwtManager)
	NewOwnerHandler(carSvc, dashboardSvc, userSvc).RegisterRoutes(api, jwtManager)
	NewBookingHandler(bookingSvc, checker).RegisterRoutes(api, jwtManager)

	return &testServer{router: router}
}

type envelope map[string]any

func (s *testServer) do(t *testing.T, method, path, token string, body any) envelope {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.serve(t, req)
}

func (s *testServer) serve(t *testing.T, req *http.Request) envelope {
	t.Helper()
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var out envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (s *testServer) register(t *testing.T, email string) string {
	t.Helper()
	res := s.do(t, http.MethodPost, "/api/v1/user/register", "", gin.H{
		"name": "Test User", "email": email, "password": "supersecret",
	})
	require.Equal(t, true, res["success"], res["message"])
	return res["token"].(string)
}

func (s *testServer) registerOwner(t *testing.T, email string) string {
	t.Helper()
	token := s.register(t, email)
	res := s.do(t, http.MethodPost, "/api/v1/owner/change-role", token, nil)
	require.Equal(t, true, res["success"], res["message"])
	return res["token"].(string)
}

func (s *testServer) addCar(t *testing.T, token string, carData gin.H) string {
	t.Helper()
	raw, err := json.Marshal(carData)
	require.NoError(t, err)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("carData", string(raw)))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/owner/add-car", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	res := s.serve(t, req)
	require.Equal(t, true, res["success"], res["message"])
	return res["car"].(map[string]any)["id"].(string)
}

var corolla = gin.H{
	"brand": "Toyota", "model": "Corolla", "year": 2022,
	"location": "Lisbon", "pricePerDay": 3000, "seatingCapacity": 5,
}
