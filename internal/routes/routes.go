package routes

import (
	"clinic-dashboard-server/internal/config"
	"clinic-dashboard-server/internal/handlers"
	"clinic-dashboard-server/internal/middleware"
	"clinic-dashboard-server/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(db)
	serviceHandler := handlers.NewServiceHandler(db)
	medicalRecordHandler := handlers.NewMedicalRecordHandler(db)
	reportHandler := handlers.NewReportHandler(db)

	adminOnly := middleware.RoleAuthMiddleware(models.RoleAdmin)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/signup", authHandler.Signup)
			authRoutes.POST("/login", authHandler.Login)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg)) // Apply JWT authentication middleware
	{
		private.POST("/auth/logout", authHandler.Logout)

		// User management
		userRoutes := private.Group("/users")
		{
			userRoutes.GET("/my-account", authHandler.MyAccount)
			userRoutes.GET("/patients", adminOnly, userHandler.ListPatients)
			userRoutes.GET("/admins", adminOnly, userHandler.ListAdmins)
			userRoutes.GET("/:id", userHandler.GetUserByID)
			userRoutes.PATCH("/:id", userHandler.UpdateUser)
			userRoutes.PATCH("/:id/password", userHandler.ChangePassword)
			userRoutes.DELETE("/:id", adminOnly, userHandler.DeleteUser)
		}

		// Doctor management
		doctorRoutes := private.Group("/doctors")
		{
			doctorRoutes.GET("", userHandler.ListDoctors)
			doctorRoutes.POST("/add", adminOnly, userHandler.CreateStaff)
		}
		private.GET("/doctors/schedules", userHandler.ListDoctorSchedules)

		// Appointments. Lifecycle actions are one route per action so
		// the path itself names the transition.
		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.GET("/all", appointmentHandler.ListAppointments)
			appointmentRoutes.GET("/today/approved", appointmentHandler.ListTodayApproved)
			appointmentRoutes.GET("/users/:id", appointmentHandler.ListUserAppointments)
			appointmentRoutes.POST("/create", middleware.RoleAuthMiddleware(models.RolePatient, models.RoleAdmin), appointmentHandler.CreateAppointment)

			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointmentRoutes.PATCH("/:id", appointmentHandler.UpdateAppointment)

			appointmentRoutes.PATCH("/:id/approve", appointmentHandler.TransitionAppointment(models.ActionApprove))
			appointmentRoutes.PATCH("/:id/decline", appointmentHandler.TransitionAppointment(models.ActionDecline))
			appointmentRoutes.PATCH("/:id/completed", appointmentHandler.TransitionAppointment(models.ActionComplete))
			appointmentRoutes.PATCH("/:id/noshow", appointmentHandler.TransitionAppointment(models.ActionNoShow))
			appointmentRoutes.PATCH("/:id/cancelled", appointmentHandler.TransitionAppointment(models.ActionCancel))

			appointmentRoutes.PATCH("/:id/archive", adminOnly, appointmentHandler.ArchiveAppointment)
			appointmentRoutes.PATCH("/:id/doctor", adminOnly, appointmentHandler.AssignDoctors)
			appointmentRoutes.GET("/:id/doctors-available", adminOnly, appointmentHandler.ListAvailableDoctors)

			appointmentRoutes.GET("/counts/today", adminOnly, reportHandler.TodayCounts)
			appointmentRoutes.GET("/counts/range", adminOnly, reportHandler.RangeCounts)
			appointmentRoutes.GET("/completed/range", adminOnly, reportHandler.CompletedRevenue)
		}

		// Services and prices
		serviceRoutes := private.Group("/services")
		{
			serviceRoutes.GET("", serviceHandler.ListServices)
			serviceRoutes.POST("/add", adminOnly, serviceHandler.CreateService)
			serviceRoutes.PATCH("/:id", adminOnly, serviceHandler.UpdateService)
			serviceRoutes.DELETE("/:id", adminOnly, serviceHandler.DeleteService)
			serviceRoutes.POST("/prices", serviceHandler.LookupPrices)
			serviceRoutes.GET("/reports/top", adminOnly, reportHandler.TopServices)
		}
		private.GET("/prices", serviceHandler.ListServices)

		// Medical records
		medicalRecordRoutes := private.Group("/medical-records")
		{
			medicalRecordRoutes.POST("/upload", adminOnly, medicalRecordHandler.UploadMedicalRecords)
			medicalRecordRoutes.GET("/:recordId/download", medicalRecordHandler.DownloadMedicalRecord)
			medicalRecordRoutes.DELETE("/:recordId/appointments/:appointmentId", adminOnly, medicalRecordHandler.DeleteMedicalRecord)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
