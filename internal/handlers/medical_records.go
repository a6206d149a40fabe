package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"clinic-dashboard-server/internal/middleware"
	"clinic-dashboard-server/internal/models"
	"clinic-dashboard-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// MedicalRecordHandler handles medical record uploads against
// completed appointments.
type MedicalRecordHandler struct {
	DB *gorm.DB
}

// NewMedicalRecordHandler creates a new MedicalRecordHandler.
func NewMedicalRecordHandler(db *gorm.DB) *MedicalRecordHandler {
	return &MedicalRecordHandler{DB: db}
}

// UploadMedicalRecords accepts a multipart form with an appointmentId
// field and one or more files under "files" (or a single "file").
// Records may only be attached while the appointment is Completed;
// from then on the list is append-only except for explicit deletes.
func (h *MedicalRecordHandler) UploadMedicalRecords(c *gin.Context) {
	appointmentID := c.PostForm("appointmentId")
	if appointmentID == "" {
		utils.BadRequest(c, "appointmentId form field is required")
		return
	}

	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if appointment.Status != models.StatusCompleted {
		utils.Conflict(c, "Medical records can only be uploaded for completed appointments")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequest(c, "Invalid multipart form: "+err.Error())
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		files = form.File["file"]
	}
	if len(files) == 0 {
		utils.BadRequest(c, "At least one file is required")
		return
	}

	var records []models.MedicalRecord
	for _, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			utils.BadRequest(c, "Failed to open uploaded file: "+err.Error())
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			utils.InternalServerError(c, "Failed to read uploaded file: "+err.Error())
			return
		}

		contentType := fileHeader.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		records = append(records, models.MedicalRecord{
			AppointmentID: appointment.ID,
			FileName:      fileHeader.Filename,
			FileType:      contentType,
			FileData:      data,
			UploadedAt:    time.Now(),
		})
	}

	if err := h.DB.Create(&records).Error; err != nil {
		utils.InternalServerError(c, "Failed to store medical records: "+err.Error())
		return
	}

	// The download path is only known once the row has an ID.
	for i := range records {
		records[i].FileURL = "/api/v1/medical-records/" + records[i].ID + "/download"
	}
	if err := h.DB.Save(&records).Error; err != nil {
		utils.InternalServerError(c, "Failed to store medical records: "+err.Error())
		return
	}

	utils.Created(c, "Medical records uploaded successfully", records)
}

// DownloadMedicalRecord streams a stored file back with its original
// name and MIME type. Records are only served to admins, the booking
// patient, and the appointment's assigned doctors.
func (h *MedicalRecordHandler) DownloadMedicalRecord(c *gin.Context) {
	recordID := c.Param("recordId")

	var record models.MedicalRecord
	if err := h.DB.First(&record, "id = ?", recordID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Medical record not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var appointment models.Appointment
	if err := h.DB.Preload("Doctors").First(&appointment, "id = ?", record.AppointmentID).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)
	if role != models.RoleAdmin && !appointment.IsOwnedBy(userID) && !isAssignedDoctor(&appointment, userID) {
		utils.Forbidden(c, "You are not authorized to download this medical record")
		return
	}

	c.Writer.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.FileName))
	c.Data(http.StatusOK, record.FileType, record.FileData)
}

// DeleteMedicalRecord removes one uploaded record from an appointment.
// The appointment id in the path guards against deleting a record
// through the wrong appointment.
func (h *MedicalRecordHandler) DeleteMedicalRecord(c *gin.Context) {
	recordID := c.Param("recordId")
	appointmentID := c.Param("appointmentId")

	var record models.MedicalRecord
	if err := h.DB.First(&record, "id = ? AND appointment_id = ?", recordID, appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Medical record not found for this appointment")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := h.DB.Delete(&record).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete medical record: "+err.Error())
		return
	}

	utils.Success(c, "Medical record deleted successfully", nil)
}
