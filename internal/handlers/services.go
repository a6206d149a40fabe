package handlers

import (
	"clinic-dashboard-server/internal/listquery"
	"clinic-dashboard-server/internal/models"
	"clinic-dashboard-server/internal/pagination"
	"clinic-dashboard-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ServiceHandler manages the bookable service catalog and its prices.
type ServiceHandler struct {
	DB *gorm.DB
}

// NewServiceHandler creates a new ServiceHandler.
func NewServiceHandler(db *gorm.DB) *ServiceHandler {
	return &ServiceHandler{DB: db}
}

// ListServices serves the paginated service table with a status filter
// and free-text search. The prices settings page reads the same rows.
func (h *ServiceHandler) ListServices(c *gin.Context) {
	query := h.DB.Model(&models.Service{})
	if status := c.Query(listquery.ParamStatus); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := c.Query(listquery.ParamSearch); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count services: "+err.Error())
		return
	}

	page := pagination.ParsePage(c.Query(listquery.ParamPage))
	var services []models.Service
	err := query.
		Order("name asc").
		Scopes(pagination.Scope(page, pagination.DefaultLimit)).
		Find(&services).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch services: "+err.Error())
		return
	}

	utils.Paged(c, "Services fetched successfully", pagination.New(services, total, pagination.DefaultLimit))
}

// CreateServiceRequest represents the request body for adding a service.
type CreateServiceRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
}

// CreateService adds a service to the catalog. Admin only.
func (h *ServiceHandler) CreateService(c *gin.Context) {
	var req CreateServiceRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existing models.Service
	if err := h.DB.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		utils.BadRequest(c, "A service with this name already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	service := models.Service{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Status:      models.ServiceActive,
	}
	if err := h.DB.Create(&service).Error; err != nil {
		utils.InternalServerError(c, "Failed to create service: "+err.Error())
		return
	}

	utils.Created(c, "Service created successfully", service)
}

// UpdateServiceRequest represents the request body for editing a
// service. Price edits only affect future bookings; existing
// appointments keep their snapshots.
type UpdateServiceRequest struct {
	Description string               `json:"description"`
	Price       *float64             `json:"price"`
	Status      models.ServiceStatus `json:"status" binding:"omitempty,oneof=Active Inactive"`
}

// UpdateService edits a service's description, price, or status. Admin only.
func (h *ServiceHandler) UpdateService(c *gin.Context) {
	var req UpdateServiceRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var service models.Service
	if err := h.DB.First(&service, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Service not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if req.Description != "" {
		service.Description = req.Description
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			utils.BadRequest(c, "Price must be greater than zero")
			return
		}
		service.Price = *req.Price
	}
	if req.Status != "" {
		service.Status = req.Status
	}

	if err := h.DB.Save(&service).Error; err != nil {
		utils.InternalServerError(c, "Failed to update service: "+err.Error())
		return
	}

	utils.Success(c, "Service updated successfully", service)
}

// DeleteService removes a service from the catalog. Admin only.
// Existing appointments are unaffected because they hold snapshots.
func (h *ServiceHandler) DeleteService(c *gin.Context) {
	result := h.DB.Delete(&models.Service{}, "id = ?", c.Param("id"))
	if result.Error != nil {
		utils.InternalServerError(c, "Failed to delete service: "+result.Error.Error())
		return
	}
	if result.RowsAffected == 0 {
		utils.NotFound(c, "Service not found")
		return
	}

	utils.Success(c, "Service deleted successfully", nil)
}

// PriceLookupRequest represents the request body for the price lookup
// used by the appointment detail page.
type PriceLookupRequest struct {
	Names []string `json:"names" binding:"required,min=1"`
}

// PriceLookupResponse carries the resolved prices plus the names that
// matched no service, so the client can warn instead of failing.
type PriceLookupResponse struct {
	Prices   map[string]float64 `json:"prices"`
	NotFound []string           `json:"notFound,omitempty"`
}

// LookupPrices resolves a list of service names to their current prices.
func (h *ServiceHandler) LookupPrices(c *gin.Context) {
	var req PriceLookupRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var services []models.Service
	if err := h.DB.Where("name IN ?", req.Names).Find(&services).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch services: "+err.Error())
		return
	}

	resp := PriceLookupResponse{Prices: make(map[string]float64, len(services))}
	for _, s := range services {
		resp.Prices[s.Name] = s.Price
	}
	for _, name := range req.Names {
		if _, ok := resp.Prices[name]; !ok {
			resp.NotFound = append(resp.NotFound, name)
		}
	}

	utils.Success(c, "Prices fetched successfully", resp)
}
