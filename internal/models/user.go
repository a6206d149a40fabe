package models

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// User represents a patient, doctor, or admin account.
type User struct {
	BaseModel
	Email         string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password      string     `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	FirstName     string     `gorm:"size:100" json:"firstname"`
	MiddleName    string     `gorm:"size:100" json:"middlename,omitempty"`
	LastName      string     `gorm:"size:100" json:"surname"`
	Role          Role       `gorm:"size:20;default:'patient';index" json:"role"`
	DateOfBirth   *time.Time `json:"dateOfBirth,omitempty"`
	Gender        string     `gorm:"size:20" json:"gender,omitempty"`
	MaritalStatus string     `gorm:"size:30" json:"maritalStatus,omitempty"`
	PhoneNumber   string     `json:"phoneNumber,omitempty"`
	Address       string     `json:"address,omitempty"`
	ProfileImage  string     `json:"profileImage,omitempty"`

	// Doctor-only fields.
	Specialization string `gorm:"size:100" json:"specialization,omitempty"`
	Schedule       string `gorm:"size:255" json:"schedule,omitempty"` // e.g. "Mon-Fri 9:00-17:00"

	// Relations (not always preloaded)
	PatientAppointments []Appointment `gorm:"foreignKey:PatientID" json:"-"`
	AssignedTo          []Appointment `gorm:"many2many:appointment_doctors;" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	FirstName      string     `json:"firstname"`
	MiddleName     string     `json:"middlename,omitempty"`
	LastName       string     `json:"surname"`
	Role           Role       `json:"role"`
	DateOfBirth    *time.Time `json:"dateOfBirth,omitempty"`
	Gender         string     `json:"gender,omitempty"`
	MaritalStatus  string     `json:"maritalStatus,omitempty"`
	PhoneNumber    string     `json:"phoneNumber,omitempty"`
	Address        string     `json:"address,omitempty"`
	ProfileImage   string     `json:"profileImage,omitempty"`
	Specialization string     `json:"specialization,omitempty"`
	Schedule       string     `json:"schedule,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// FullName joins the name parts, abbreviating the middle name the way
// the dashboard displays doctors ("John D. Smith").
func (u *User) FullName() string {
	parts := []string{u.FirstName}
	if u.MiddleName != "" {
		parts = append(parts, u.MiddleName[:1]+".")
	}
	parts = append(parts, u.LastName)
	return strings.Join(parts, " ")
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:             u.ID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		MiddleName:     u.MiddleName,
		LastName:       u.LastName,
		Role:           u.Role,
		DateOfBirth:    u.DateOfBirth,
		Gender:         u.Gender,
		MaritalStatus:  u.MaritalStatus,
		PhoneNumber:    u.PhoneNumber,
		Address:        u.Address,
		ProfileImage:   u.ProfileImage,
		Specialization: u.Specialization,
		Schedule:       u.Schedule,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}
