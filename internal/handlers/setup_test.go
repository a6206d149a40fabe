package handlers_test

import (
	"fmt"
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

// newTestServer spins up the full API over an in-memory database. Each
// call gets its own schema so tests stay independent.
func newTestServer(t *testing.T) (*httptest.Server, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handlers_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	cfg := &config.Config{
		Port:                 "0",
		Origin:               "http://localhost",
		Environment:          "development",
		JWTSecret:            "handlers-test-secret",
		SessionCookieName:    "access_token",
		JWTExpirationMinutes: 60,
	}

	router := gin.New()
	routes.SetupRoutes(router, db, cfg)

	ts := httptest.NewServer(router)
	t.Cleanup(func() {
		ts.Close()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return ts, db
}

const testPassword = "secret-pw-1234"

func seedUser(t *testing.T, db *gorm.DB, role models.Role, email, first, last string) models.User {
	t.Helper()
	user := models.User{
		Email:     email,
		FirstName: first,
		LastName:  last,
		Role:      role,
	}
	if err := user.SetPassword(testPassword); err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return user
}

func seedService(t *testing.T, db *gorm.DB, name string, price float64) models.Service {
	t.Helper()
	svc := models.Service{
		Name:   name,
		Price:  price,
		Status: models.ServiceActive,
	}
	if err := db.Create(&svc).Error; err != nil {
		t.Fatalf("seed service %s: %v", name, err)
	}
	return svc
}

// seedAppointment writes an appointment directly, bypassing the create
// endpoint so tests can place it in any status at any schedule.
func seedAppointment(t *testing.T, db *gorm.DB, patient models.User, status models.AppointmentStatus, schedule time.Time, services ...models.Service) models.Appointment {
	t.Helper()
	appointment := models.Appointment{
		PatientID: patient.ID,
		Schedule:  schedule,
		Status:    status,
	}
	for _, svc := range services {
		appointment.Services = append(appointment.Services, models.AppointmentService{
			ServiceID: svc.ID,
			Name:      svc.Name,
			Price:     svc.Price,
		})
	}
	if err := db.Create(&appointment).Error; err != nil {
		t.Fatalf("seed appointment: %v", err)
	}
	return appointment
}

// loginAs returns a client holding a live session for the given user.
func loginAs(t *testing.T, ts *httptest.Server, email string) *client.Client {
	t.Helper()
	c, err := client.New(ts.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, apiErr := c.Login(email, testPassword); apiErr != nil {
		t.Fatalf("login %s: %v", email, apiErr)
	}
	return c
}

// setSchedule rewrites an appointment's schedule in place, used to make
// the same-day completion rule pass or fail deterministically.
func setSchedule(t *testing.T, db *gorm.DB, id string, schedule time.Time) {
	t.Helper()
	if err := db.Model(&models.Appointment{}).Where("id = ?", id).Update("schedule", schedule).Error; err != nil {
		t.Fatalf("set schedule: %v", err)
	}
}
