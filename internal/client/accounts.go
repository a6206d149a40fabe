package client

import (
	"encoding/json"
	"net/http"

	"clinic-dashboard-server/internal/listquery"
	"clinic-dashboard-server/internal/models"
)

// SignupRequest carries a new patient registration.
type SignupRequest struct {
	FirstName     string `json:"firstname"`
	MiddleName    string `json:"middlename,omitempty"`
	LastName      string `json:"surname"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Gender        string `json:"gender,omitempty"`
	MaritalStatus string `json:"maritalStatus,omitempty"`
	PhoneNumber   string `json:"phoneNumber,omitempty"`
	Address       string `json:"address,omitempty"`
}

// Signup registers a patient account. It does not log the new user in.
func (c *Client) Signup(req SignupRequest) (*models.UserSanitized, *APIError) {
	env, apiErr := c.postJSON("/api/v1/auth/signup", req)
	if apiErr != nil {
		return nil, apiErr
	}
	var user models.UserSanitized
	if err := json.Unmarshal(env.Data, &user); err != nil {
		return nil, &APIError{Kind: KindTransport, Message: "malformed user payload: " + err.Error()}
	}
	return &user, nil
}

// MyAccount fetches the profile behind the current session.
func (c *Client) MyAccount() (*models.UserSanitized, *APIError) {
	env, apiErr := c.do(http.MethodGet, "/api/v1/users/my-account", nil, "")
	if apiErr != nil {
		return nil, apiErr
	}
	var user models.UserSanitized
	if err := json.Unmarshal(env.Data, &user); err != nil {
		return nil, &APIError{Kind: KindTransport, Message: "malformed user payload: " + err.Error()}
	}
	return &user, nil
}

// UserPage is one page of an account table.
type UserPage struct {
	Data       []models.UserSanitized
	Total      int64
	TotalPages int
	Limit      int
}

func (c *Client) userPage(path string, filters listquery.FilterSet, search string, page int) (*UserPage, *APIError) {
	env, apiErr := c.do(http.MethodGet, path+"?"+listquery.Build(filters, search, page), nil, "")
	if apiErr != nil {
		return nil, apiErr
	}
	var users []models.UserSanitized
	if err := json.Unmarshal(env.Data, &users); err != nil {
		return nil, &APIError{Kind: KindTransport, Message: "malformed user payload: " + err.Error()}
	}
	return &UserPage{Data: users, Total: env.Total, TotalPages: env.TotalPages, Limit: env.Limit}, nil
}

// ListPatients fetches one page of the patient table. Gender and
// marital-status filters go through the canonical query builder.
func (c *Client) ListPatients(filters listquery.FilterSet, search string, page int) (*UserPage, *APIError) {
	return c.userPage("/api/v1/users/patients", filters, search, page)
}

// ListAdmins fetches one page of the admin table.
func (c *Client) ListAdmins(search string, page int) (*UserPage, *APIError) {
	return c.userPage("/api/v1/users/admins", nil, search, page)
}

// ListDoctors fetches one page of the doctor table.
func (c *Client) ListDoctors(search string, page int) (*UserPage, *APIError) {
	return c.userPage("/api/v1/doctors", nil, search, page)
}

// ListDoctorSchedules fetches doctors that have a working schedule set.
func (c *Client) ListDoctorSchedules(page int) (*UserPage, *APIError) {
	return c.userPage("/api/v1/doctors/schedules", nil, "", page)
}

// GetUser fetches one account by id.
func (c *Client) GetUser(id string) (*models.UserSanitized, *APIError) {
	env, apiErr := c.do(http.MethodGet, "/api/v1/users/"+id, nil, "")
	if apiErr != nil {
		return nil, apiErr
	}
	var user models.UserSanitized
	if err := json.Unmarshal(env.Data, &user); err != nil {
		return nil, &APIError{Kind: KindTransport, Message: "malformed user payload: " + err.Error()}
	}
	return &user, nil
}

// StaffRequest carries a new doctor or admin account.
type StaffRequest struct {
	FirstName      string      `json:"firstname"`
	MiddleName     string      `json:"middlename,omitempty"`
	LastName       string      `json:"surname"`
	Email          string      `json:"email"`
	Password       string      `json:"password"`
	Role           models.Role `json:"role"`
	Specialization string      `json:"specialization,omitempty"`
	Schedule       string      `json:"schedule,omitempty"`
}

// CreateStaff creates a doctor or admin account. Admin only.
func (c *Client) CreateStaff(req StaffRequest) (*models.UserSanitized, *APIError) {
	env, apiErr := c.postJSON("/api/v1/doctors/add", req)
	if apiErr != nil {
		return nil, apiErr
	}
	var user models.UserSanitized
	if err := json.Unmarshal(env.Data, &user); err != nil {
		return nil, &APIError{Kind: KindTransport, Message: "malformed user payload: " + err.Error()}
	}
	return &user, nil
}

// ProfileUpdate carries profile field changes; zero values are left
// untouched by the server.
type ProfileUpdate struct {
	FirstName      string `json:"firstname,omitempty"`
	MiddleName     string `json:"middlename,omitempty"`
	LastName       string `json:"surname,omitempty"`
	Gender         string `json:"gender,omitempty"`
	MaritalStatus  string `json:"maritalStatus,omitempty"`
	PhoneNumber    string `json:"phoneNumber,omitempty"`
	Address        string `json:"address,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	Schedule       string `json:"schedule,omitempty"`
}

// UpdateUser updates an account's profile fields.
func (c *Client) UpdateUser(id string, update ProfileUpdate) (*models.UserSanitized, *APIError) {
	env, apiErr := c.patchJSON("/api/v1/users/"+id, update)
	if apiErr != nil {
		return nil, apiErr
	}
	var user models.UserSanitized
	if err := json.Unmarshal(env.Data, &user); err != nil {
		return nil, &APIError{Kind: KindTransport, Message: "malformed user payload: " + err.Error()}
	}
	return &user, nil
}

// ChangePassword rotates the caller's own password.
func (c *Client) ChangePassword(id, currentPassword, newPassword string) *APIError {
	_, apiErr := c.patchJSON("/api/v1/users/"+id+"/password", map[string]string{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	})
	return apiErr
}

// DeleteUser removes an account. Admin only.
func (c *Client) DeleteUser(id string) *APIError {
	_, apiErr := c.do(http.MethodDelete, "/api/v1/users/"+id, nil, "")
	return apiErr
}
