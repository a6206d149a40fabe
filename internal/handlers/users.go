package handlers

import (
	"clinic-dashboard-server/internal/listquery"
	"clinic-dashboard-server/internal/middleware"
	"clinic-dashboard-server/internal/models"
	"clinic-dashboard-server/internal/pagination"
	"clinic-dashboard-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserHandler handles patient, admin, and doctor account management.
type UserHandler struct {
	DB *gorm.DB
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{DB: db}
}

// ListPatients serves the paginated patient table with gender and
// marital-status filters plus free-text search.
func (h *UserHandler) ListPatients(c *gin.Context) {
	query := h.DB.Model(&models.User{}).Where("role = ?", models.RolePatient)
	if gender := c.Query(listquery.ParamGender); gender != "" {
		query = query.Where("gender = ?", gender)
	}
	if marital := c.Query(listquery.ParamMaritalStatus); marital != "" {
		query = query.Where("marital_status = ?", marital)
	}
	h.respondUserPage(c, query)
}

// ListAdmins serves the paginated admin table.
func (h *UserHandler) ListAdmins(c *gin.Context) {
	query := h.DB.Model(&models.User{}).Where("role = ?", models.RoleAdmin)
	h.respondUserPage(c, query)
}

// ListDoctors serves the paginated doctor table.
func (h *UserHandler) ListDoctors(c *gin.Context) {
	query := h.DB.Model(&models.User{}).Where("role = ?", models.RoleDoctor)
	h.respondUserPage(c, query)
}

// ListDoctorSchedules serves the doctors that have a working-schedule
// string set, for the schedules settings page.
func (h *UserHandler) ListDoctorSchedules(c *gin.Context) {
	query := h.DB.Model(&models.User{}).Where("role = ? AND schedule <> ''", models.RoleDoctor)
	h.respondUserPage(c, query)
}

func (h *UserHandler) respondUserPage(c *gin.Context, query *gorm.DB) {
	if search := c.Query(listquery.ParamSearch); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("first_name LIKE ? OR last_name LIKE ? OR email LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count users: "+err.Error())
		return
	}

	page := pagination.ParsePage(c.Query(listquery.ParamPage))
	var users []models.User
	err := query.
		Order("last_name asc, first_name asc").
		Scopes(pagination.Scope(page, pagination.DefaultLimit)).
		Find(&users).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch users: "+err.Error())
		return
	}

	sanitized := make([]models.UserSanitized, 0, len(users))
	for _, u := range users {
		sanitized = append(sanitized, u.Sanitize())
	}

	utils.Paged(c, "Users fetched successfully", pagination.New(sanitized, total, pagination.DefaultLimit))
}

// GetUserByID fetches one account. Admins may view anyone; other users
// only themselves.
func (h *UserHandler) GetUserByID(c *gin.Context) {
	targetID := c.Param("id")
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	if role != models.RoleAdmin && userID != targetID {
		utils.Forbidden(c, "You are not authorized to view this account")
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", targetID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "User fetched successfully", user.Sanitize())
}

// CreateStaffRequest represents the request body for creating a doctor
// or admin account.
type CreateStaffRequest struct {
	FirstName      string      `json:"firstname" binding:"required"`
	MiddleName     string      `json:"middlename"`
	LastName       string      `json:"surname" binding:"required"`
	Email          string      `json:"email" binding:"required,email"`
	Password       string      `json:"password" binding:"required,min=8"`
	Role           models.Role `json:"role" binding:"required,oneof=doctor admin"`
	Specialization string      `json:"specialization"`
	Schedule       string      `json:"schedule"`
}

// CreateStaff creates a doctor or admin account. Admin only.
func (h *UserHandler) CreateStaff(c *gin.Context) {
	var req CreateStaffRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existing models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.BadRequest(c, "User with this email already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	user := models.User{
		FirstName:      req.FirstName,
		MiddleName:     req.MiddleName,
		LastName:       req.LastName,
		Email:          req.Email,
		Role:           req.Role,
		Specialization: req.Specialization,
		Schedule:       req.Schedule,
	}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	if err := h.DB.Create(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to create user: "+err.Error())
		return
	}

	utils.Created(c, "Account created successfully", user.Sanitize())
}

// UpdateUserRequest represents the request body for profile updates.
// Zero-value fields are left untouched.
type UpdateUserRequest struct {
	FirstName      string `json:"firstname"`
	MiddleName     string `json:"middlename"`
	LastName       string `json:"surname"`
	Gender         string `json:"gender"`
	MaritalStatus  string `json:"maritalStatus"`
	PhoneNumber    string `json:"phoneNumber"`
	Address        string `json:"address"`
	Specialization string `json:"specialization"`
	Schedule       string `json:"schedule"`
}

// UpdateUser updates an account's profile fields. Admins may update
// anyone; other users only themselves.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	targetID := c.Param("id")
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	if role != models.RoleAdmin && userID != targetID {
		utils.Forbidden(c, "You are not authorized to update this account")
		return
	}

	var req UpdateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", targetID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.MiddleName != "" {
		user.MiddleName = req.MiddleName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Gender != "" {
		user.Gender = req.Gender
	}
	if req.MaritalStatus != "" {
		user.MaritalStatus = req.MaritalStatus
	}
	if req.PhoneNumber != "" {
		user.PhoneNumber = req.PhoneNumber
	}
	if req.Address != "" {
		user.Address = req.Address
	}
	if req.Specialization != "" {
		user.Specialization = req.Specialization
	}
	if req.Schedule != "" {
		user.Schedule = req.Schedule
	}

	if err := h.DB.Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to update user: "+err.Error())
		return
	}

	utils.Success(c, "User updated successfully", user.Sanitize())
}

// ChangePasswordRequest represents the request body for password changes.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// ChangePassword lets a user rotate their own password.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	targetID := c.Param("id")
	userID, _ := middleware.GetUserIDFromContext(c)

	if userID != targetID {
		utils.Forbidden(c, "You can only change your own password")
		return
	}

	var req ChangePasswordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", targetID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if !user.CheckPassword(req.CurrentPassword) {
		utils.Unauthorized(c, "Current password is incorrect")
		return
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}
	if err := h.DB.Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to update password: "+err.Error())
		return
	}

	utils.Success(c, "Password changed successfully", nil)
}

// DeleteUser removes an account. Admin only.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	targetID := c.Param("id")

	result := h.DB.Delete(&models.User{}, "id = ?", targetID)
	if result.Error != nil {
		utils.InternalServerError(c, "Failed to delete user: "+result.Error.Error())
		return
	}
	if result.RowsAffected == 0 {
		utils.NotFound(c, "User not found")
		return
	}

	utils.Success(c, "User deleted successfully", nil)
}
