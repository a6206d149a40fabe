package models

// ServiceStatus marks whether a service is currently bookable.
type ServiceStatus string

const (
	ServiceActive   ServiceStatus = "Active"
	ServiceInactive ServiceStatus = "Inactive"
)

// Service represents a bookable clinic service with its current price.
// Appointments copy the name and price at booking time, so editing a
// service never rewrites history.
type Service struct {
	BaseModel
	Name        string        `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string        `gorm:"size:255" json:"description,omitempty"`
	Price       float64       `json:"price"`
	Status      ServiceStatus `gorm:"size:20;default:'Active'" json:"status"`
}
