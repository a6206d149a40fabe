package models

import (
	"time"
)

const (
	// MinServices and MaxServices bound the services list on a booking.
	MinServices = 1
	MaxServices = 3
)

// Appointment represents a scheduled clinic visit. Status is the single
// source of truth for which actions are currently legal; Archived is an
// orthogonal flag that hides a terminal appointment from default list
// views without deleting it.
type Appointment struct {
	BaseModel
	PatientID string            `gorm:"size:36;index;not null" json:"patientId"`
	Schedule  time.Time         `gorm:"index" json:"schedule"`
	Status    AppointmentStatus `gorm:"size:20;default:'Pending';index" json:"status"`
	Archived  bool              `gorm:"default:false;index" json:"archived"`
	Notes     string            `gorm:"type:text" json:"notes,omitempty"`

	// Relations
	Patient        User                 `gorm:"foreignKey:PatientID" json:"patient"`
	Doctors        []User               `gorm:"many2many:appointment_doctors;" json:"doctors"`
	Services       []AppointmentService `gorm:"foreignKey:AppointmentID" json:"services"`
	MedicalRecords []MedicalRecord      `gorm:"foreignKey:AppointmentID" json:"medicalRecords,omitempty"`
}

// AppointmentService is a snapshot of a service at booking time. The
// name and price are copied from the Service row so later price edits
// do not change what this appointment was booked at.
type AppointmentService struct {
	BaseModel
	AppointmentID string  `gorm:"size:36;index;not null" json:"appointmentId"`
	ServiceID     string  `gorm:"size:36;index" json:"serviceId"`
	Name          string  `gorm:"size:100;not null" json:"name"`
	Price         float64 `json:"price"`
}

// IsOwnedBy reports whether userID is the booking patient.
func (a *Appointment) IsOwnedBy(userID string) bool {
	return a.PatientID == userID
}

// TotalPrice sums the service price snapshots on the appointment.
func (a *Appointment) TotalPrice() float64 {
	var total float64
	for _, s := range a.Services {
		total += s.Price
	}
	return total
}

// ServiceNames returns the snapshot names in booking order.
func (a *Appointment) ServiceNames() []string {
	names := make([]string, 0, len(a.Services))
	for _, s := range a.Services {
		names = append(names, s.Name)
	}
	return names
}
