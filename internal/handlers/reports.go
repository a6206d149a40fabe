package handlers

import (
	"time"

	"clinic-dashboard-server/internal/models"
	"clinic-dashboard-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ReportHandler serves the aggregate numbers behind the dashboard
// charts: per-status appointment counts, completed revenue, and the
// most-booked services.
type ReportHandler struct {
	DB *gorm.DB
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(db *gorm.DB) *ReportHandler {
	return &ReportHandler{DB: db}
}

// StatusCounts maps each known status to its appointment count within
// the reported window. Every status appears, even at zero.
type StatusCounts map[models.AppointmentStatus]int64

// TodayCounts reports per-status counts for appointments scheduled today.
func (h *ReportHandler) TodayCounts(c *gin.Context) {
	start, end := dayBounds(time.Now())
	counts, err := h.statusCounts(start, end)
	if err != nil {
		utils.InternalServerError(c, "Failed to count appointments: "+err.Error())
		return
	}
	utils.Success(c, "Today's appointment counts fetched successfully", counts)
}

// RangeCounts reports per-status counts for appointments scheduled
// between the from and to query parameters (YYYY-MM-DD, inclusive).
func (h *ReportHandler) RangeCounts(c *gin.Context) {
	start, end, ok := parseRange(c)
	if !ok {
		return
	}
	counts, err := h.statusCounts(start, end)
	if err != nil {
		utils.InternalServerError(c, "Failed to count appointments: "+err.Error())
		return
	}
	utils.Success(c, "Appointment counts fetched successfully", counts)
}

func (h *ReportHandler) statusCounts(start, end time.Time) (StatusCounts, error) {
	type row struct {
		Status models.AppointmentStatus
		N      int64
	}
	var rows []row
	err := h.DB.Model(&models.Appointment{}).
		Select("status, COUNT(*) AS n").
		Where("schedule >= ? AND schedule < ?", start, end).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(StatusCounts, len(models.AllStatuses))
	for _, s := range models.AllStatuses {
		counts[s] = 0
	}
	for _, r := range rows {
		counts[r.Status] = r.N
	}
	return counts, nil
}

// RevenueReport is the completed-appointment revenue within a window,
// summed from the price snapshots taken at booking time.
type RevenueReport struct {
	Completed int64   `json:"completed"`
	Revenue   float64 `json:"revenue"`
}

// CompletedRevenue reports completed-appointment count and revenue for
// the from/to range.
func (h *ReportHandler) CompletedRevenue(c *gin.Context) {
	start, end, ok := parseRange(c)
	if !ok {
		return
	}

	var report RevenueReport
	err := h.DB.Model(&models.Appointment{}).
		Where("status = ? AND schedule >= ? AND schedule < ?", models.StatusCompleted, start, end).
		Count(&report.Completed).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to count completed appointments: "+err.Error())
		return
	}

	err = h.DB.Model(&models.AppointmentService{}).
		Select("COALESCE(SUM(appointment_services.price), 0)").
		Joins("JOIN appointments ON appointments.id = appointment_services.appointment_id").
		Where("appointments.status = ? AND appointments.schedule >= ? AND appointments.schedule < ?",
			models.StatusCompleted, start, end).
		Scan(&report.Revenue).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to sum revenue: "+err.Error())
		return
	}

	utils.Success(c, "Revenue report fetched successfully", report)
}

// TopService is one row of the most-booked-services chart.
type TopService struct {
	Name     string `json:"name"`
	Bookings int64  `json:"bookings"`
}

// TopServices reports the five most-booked services by snapshot name.
func (h *ReportHandler) TopServices(c *gin.Context) {
	var rows []TopService
	err := h.DB.Model(&models.AppointmentService{}).
		Select("name, COUNT(*) AS bookings").
		Group("name").
		Order("bookings desc").
		Limit(5).
		Scan(&rows).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch top services: "+err.Error())
		return
	}

	utils.Success(c, "Top services fetched successfully", rows)
}

// parseRange reads from/to date query parameters. to is inclusive, so
// the window extends to the end of that day.
func parseRange(c *gin.Context) (time.Time, time.Time, bool) {
	const layout = "2006-01-02"
	from, err := time.ParseInLocation(layout, c.Query("from"), time.Local)
	if err != nil {
		utils.BadRequest(c, "Invalid or missing from date, expected YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	to, err := time.ParseInLocation(layout, c.Query("to"), time.Local)
	if err != nil {
		utils.BadRequest(c, "Invalid or missing to date, expected YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	return from, to.AddDate(0, 0, 1), true
}
