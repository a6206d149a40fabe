package handlers

import (
	"clinic-dashboard-server/internal/config"
	"clinic-dashboard-server/internal/middleware"
	"clinic-dashboard-server/internal/models"
	"clinic-dashboard-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{DB: db, Cfg: cfg}
}

// SignupRequest represents the request body for patient signup.
type SignupRequest struct {
	FirstName     string `json:"firstname" binding:"required"`
	MiddleName    string `json:"middlename"`
	LastName      string `json:"surname" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=8"`
	Gender        string `json:"gender"`
	MaritalStatus string `json:"maritalStatus"`
	PhoneNumber   string `json:"phoneNumber"`
	Address       string `json:"address"`
}

// Signup registers a new patient account. Admin and doctor accounts are
// created by an admin through the user management endpoints instead.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if !utils.BindAndValidate(c, &req) {
		return // Error response handled by BindAndValidate
	}

	// Check if user already exists
	var existingUser models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		utils.BadRequest(c, "User with this email already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	user := models.User{
		FirstName:     req.FirstName,
		MiddleName:    req.MiddleName,
		LastName:      req.LastName,
		Email:         req.Email,
		Gender:        req.Gender,
		MaritalStatus: req.MaritalStatus,
		PhoneNumber:   req.PhoneNumber,
		Address:       req.Address,
		Role:          models.RolePatient,
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

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles user login. The session token is set as an HTTP-only
// cookie; every subsequent request authenticates through it.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Unauthorized(c, "Invalid email or password")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if !user.CheckPassword(req.Password) {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	token, err := utils.GenerateToken(&user, h.Cfg)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate token: "+err.Error())
		return
	}

	c.SetCookie(
		h.Cfg.SessionCookieName,
		token,
		h.Cfg.JWTExpirationMinutes*60, // Max age in seconds
		"/",
		"",                                   // Domain (empty means current domain)
		h.Cfg.Environment != "development",   // Secure (true in prod, false in dev)
		true,                                 // HTTP only
	)

	utils.Success(c, "Login successful", user.Sanitize())
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(h.Cfg.SessionCookieName, "", -1, "/", "", h.Cfg.Environment != "development", true)
	utils.Success(c, "Logged out successfully", nil)
}

// MyAccount returns the authenticated user's own profile.
func (h *AuthHandler) MyAccount(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Account fetched successfully", user.Sanitize())
}
