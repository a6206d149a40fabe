package client_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"clinic-dashboard-server/internal/client"
	"clinic-dashboard-server/internal/config"
	"clinic-dashboard-server/internal/models"
	"clinic-dashboard-server/internal/routes"
)

var testDBSeq atomic.Int64

const testPassword = "secret-pw-1234"

func startServer(t *testing.T) (*httptest.Server, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:client_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	router := gin.New()
	routes.SetupRoutes(router, db, &config.Config{
		Environment:          "development",
		JWTSecret:            "client-test-secret",
		SessionCookieName:    "access_token",
		JWTExpirationMinutes: 60,
	})

	ts := httptest.NewServer(router)
	t.Cleanup(func() {
		ts.Close()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return ts, db
}

func seed(t *testing.T, db *gorm.DB, role models.Role, email string) models.User {
	t.Helper()
	user := models.User{Email: email, FirstName: "Test", LastName: "User", Role: role}
	if err := user.SetPassword(testPassword); err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestErrorKinds(t *testing.T) {
	ts, db := startServer(t)
	seed(t, db, models.RoleAdmin, "admin@clinic.test")
	patient := seed(t, db, models.RolePatient, "pat@clinic.test")
	svc := models.Service{Name: "Consultation", Price: 500, Status: models.ServiceActive}
	if err := db.Create(&svc).Error; err != nil {
		t.Fatalf("seed service: %v", err)
	}
	appointment := models.Appointment{
		PatientID: patient.ID,
		Schedule:  time.Now().Add(24 * time.Hour),
		Status:    models.StatusDeclined,
		Services:  []models.AppointmentService{{ServiceID: svc.ID, Name: svc.Name, Price: svc.Price}},
	}
	if err := db.Create(&appointment).Error; err != nil {
		t.Fatalf("seed appointment: %v", err)
	}

	t.Run("validation failures never reach the wire", func(t *testing.T) {
		c, err := client.New(ts.URL)
		if err != nil {
			t.Fatalf("new client: %v", err)
		}
		_, apiErr := c.CreateAppointment(time.Now().Add(time.Hour), nil, "")
		if apiErr == nil || apiErr.Kind != client.KindValidation {
			t.Fatalf("got %v, want a validation error", apiErr)
		}
		if apiErr.Status != 0 {
			t.Errorf("validation error carries HTTP status %d, want none", apiErr.Status)
		}
	})

	t.Run("server refusals are rejected with their status", func(t *testing.T) {
		c, err := client.New(ts.URL)
		if err != nil {
			t.Fatalf("new client: %v", err)
		}
		if _, apiErr := c.Login("admin@clinic.test", testPassword); apiErr != nil {
			t.Fatalf("login: %v", apiErr)
		}
		_, apiErr := c.Approve(appointment.ID)
		if apiErr == nil || apiErr.Kind != client.KindRejected {
			t.Fatalf("got %v, want a rejected error", apiErr)
		}
		if apiErr.Status != http.StatusConflict {
			t.Errorf("rejected status = %d, want 409", apiErr.Status)
		}
		if apiErr.Message == "" {
			t.Error("rejected error has no message")
		}
	})

	t.Run("network failures are transport errors", func(t *testing.T) {
		dead := httptest.NewServer(http.NotFoundHandler())
		dead.Close()
		c, err := client.New(dead.URL)
		if err != nil {
			t.Fatalf("new client: %v", err)
		}
		_, apiErr := c.TodayCounts()
		if apiErr == nil || apiErr.Kind != client.KindTransport {
			t.Fatalf("got %v, want a transport error", apiErr)
		}
	})
}

func TestSessionLifecycle(t *testing.T) {
	ts, db := startServer(t)
	seed(t, db, models.RoleAdmin, "admin@clinic.test")

	c, err := client.New(ts.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	// Unauthenticated calls are refused.
	if _, apiErr := c.ListAppointments(nil, "", 1, false); apiErr == nil || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("anonymous list = %v, want 401", apiErr)
	}

	// The login cookie carries the whole session.
	if _, apiErr := c.Login("admin@clinic.test", testPassword); apiErr != nil {
		t.Fatalf("login: %v", apiErr)
	}
	if _, apiErr := c.ListAppointments(nil, "", 1, false); apiErr != nil {
		t.Fatalf("list after login: %v", apiErr)
	}

	if apiErr := c.Logout(); apiErr != nil {
		t.Fatalf("logout: %v", apiErr)
	}
	if _, apiErr := c.ListAppointments(nil, "", 1, false); apiErr == nil || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("list after logout = %v, want 401", apiErr)
	}

	// Wrong credentials never hand out a session.
	if _, apiErr := c.Login("admin@clinic.test", "wrong-password"); apiErr == nil || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("bad login = %v, want 401", apiErr)
	}
}
