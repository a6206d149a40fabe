package models

import (
	"time"
)

// MedicalRecord is a file uploaded against a completed appointment.
// Records are append-only from the client's point of view except for
// an explicit delete.
type MedicalRecord struct {
	BaseModel
	AppointmentID string    `gorm:"size:36;index;not null" json:"appointmentId"`
	FileName      string    `gorm:"size:255;not null" json:"fileName"` // Original name of the file
	FileType      string    `gorm:"size:100;not null" json:"fileType"` // MIME type of the file
	FileURL       string    `gorm:"size:255" json:"fileUrl"`           // Download path served by the API
	FileData      []byte    `json:"-" gorm:"type:longblob;not null"`   // File content as binary data (longblob for MySQL)
	UploadedAt    time.Time `json:"uploadedAt"`
}
