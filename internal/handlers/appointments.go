package handlers

import (
	"errors"
	"time"

	"clinic-dashboard-server/internal/listquery"
	"clinic-dashboard-server/internal/middleware"
	"clinic-dashboard-server/internal/models"
	"clinic-dashboard-server/internal/pagination"
	"clinic-dashboard-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	DB *gorm.DB
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB) *AppointmentHandler {
	return &AppointmentHandler{DB: db}
}

// AppointmentDetail wraps an appointment with the actions the
// requesting user may currently invoke, so clients never have to guess
// which controls to render.
type AppointmentDetail struct {
	models.Appointment
	StatusLabel    string          `json:"statusLabel"`
	StatusColor    string          `json:"statusColor"`
	AllowedActions []models.Action `json:"allowedActions"`
	CanComplete    bool            `json:"canComplete"`
	CanArchive     bool            `json:"canArchive"`
}

func detailFor(appt models.Appointment, role models.Role, userID string) AppointmentDetail {
	isOwner := appt.IsOwnedBy(userID)
	return AppointmentDetail{
		Appointment:    appt,
		StatusLabel:    appt.Status.DisplayLabel(),
		StatusColor:    appt.Status.DisplayColor(),
		AllowedActions: models.AllowedActions(appt.Status, role, isOwner),
		CanComplete:    appt.Status == models.StatusApproved && models.CanComplete(appt.Schedule, time.Now()),
		CanArchive:     role == models.RoleAdmin && appt.Status.IsTerminal(),
	}
}

// CreateAppointmentRequest represents the request body for booking an
// appointment. Services are referenced by name; their name and price
// are snapshotted onto the appointment at booking time.
type CreateAppointmentRequest struct {
	PatientID string    `json:"patientId"` // required for admins booking on behalf of a patient
	Email     string    `json:"email"`     // alternative patient lookup for admin bookings
	Schedule  time.Time `json:"schedule" binding:"required"`
	Services  []string  `json:"services" binding:"required,min=1,max=3"`
	Notes     string    `json:"notes"`
}

// CreateAppointment books a new appointment in the Pending status.
// Patients book for themselves; admins may book on behalf of a patient
// by id or email.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	role, _ := middleware.GetUserRoleFromContext(c)

	patientID := req.PatientID
	switch role {
	case models.RolePatient:
		if patientID != "" && patientID != userID {
			utils.Forbidden(c, "Patients can only book appointments for themselves.")
			return
		}
		patientID = userID
	case models.RoleAdmin:
		if patientID == "" && req.Email != "" {
			var byEmail models.User
			if err := h.DB.Where("email = ? AND role = ?", req.Email, models.RolePatient).First(&byEmail).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					utils.NotFound(c, "Patient not found for email "+req.Email)
				} else {
					utils.InternalServerError(c, "Database error: "+err.Error())
				}
				return
			}
			patientID = byEmail.ID
		}
		if patientID == "" {
			utils.BadRequest(c, "patientId or email is required")
			return
		}
	default:
		utils.Forbidden(c, "Only patients and admins can book appointments.")
		return
	}

	// Verify patient exists
	var patient models.User
	if err := h.DB.Where("id = ? AND role = ?", patientID, models.RolePatient).First(&patient).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error verifying patient: "+err.Error())
		}
		return
	}

	if req.Schedule.Before(time.Now()) {
		utils.BadRequest(c, "Appointment date must be in the future.")
		return
	}

	snapshots, err := h.snapshotServices(req.Services)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	appointment := models.Appointment{
		PatientID: patientID,
		Schedule:  req.Schedule,
		Status:    models.StatusPending, // sole initial state
		Notes:     req.Notes,
		Services:  snapshots,
	}

	if err := h.DB.Create(&appointment).Error; err != nil {
		utils.InternalServerError(c, "Failed to create appointment: "+err.Error())
		return
	}

	if err := h.DB.Preload("Patient").Preload("Services").First(&appointment, "id = ?", appointment.ID).Error; err != nil {
		utils.InternalServerError(c, "Failed to load created appointment: "+err.Error())
		return
	}

	utils.Created(c, "Appointment created successfully", appointment)
}

// snapshotServices resolves service names to active Service rows and
// copies name+price for the booking.
func (h *AppointmentHandler) snapshotServices(names []string) ([]models.AppointmentService, error) {
	if len(names) < models.MinServices || len(names) > models.MaxServices {
		return nil, errors.New("an appointment must book between 1 and 3 services")
	}
	var services []models.Service
	if err := h.DB.Where("name IN ? AND status = ?", names, models.ServiceActive).Find(&services).Error; err != nil {
		return nil, err
	}
	byName := make(map[string]models.Service, len(services))
	for _, s := range services {
		byName[s.Name] = s
	}
	snapshots := make([]models.AppointmentService, 0, len(names))
	for _, name := range names {
		svc, ok := byName[name]
		if !ok {
			return nil, errors.New("unknown or inactive service: " + name)
		}
		snapshots = append(snapshots, models.AppointmentService{
			ServiceID: svc.ID,
			Name:      svc.Name,
			Price:     svc.Price,
		})
	}
	return snapshots, nil
}

// ListAppointments serves the paginated appointment table. Filters,
// search, and page arrive as the query parameters the builder emits;
// the archived parameter switches between the default and archive tabs.
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	role, _ := middleware.GetUserRoleFromContext(c)

	archived := c.Query(listquery.ParamArchived) == "true"
	query := h.scopedAppointments(role, userID).Where("appointments.archived = ?", archived)
	query = applyAppointmentFilters(query, c)

	h.respondAppointmentPage(c, query)
}

// ListTodayApproved serves the "Today" tab: approved appointments whose
// schedule falls on the current calendar day.
func (h *AppointmentHandler) ListTodayApproved(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	role, _ := middleware.GetUserRoleFromContext(c)

	start, end := dayBounds(time.Now())
	query := h.scopedAppointments(role, userID).
		Where("appointments.archived = ?", false).
		Where("appointments.status = ?", models.StatusApproved).
		Where("appointments.schedule >= ? AND appointments.schedule < ?", start, end)
	query = applyAppointmentFilters(query, c)

	h.respondAppointmentPage(c, query)
}

// ListUserAppointments serves appointments for one patient, used by the
// patient detail page. Admins may view any patient; patients only
// themselves.
func (h *AppointmentHandler) ListUserAppointments(c *gin.Context) {
	targetID := c.Param("id")
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	if role != models.RoleAdmin && userID != targetID {
		utils.Forbidden(c, "You are not authorized to view this patient's appointments")
		return
	}

	archived := c.Query(listquery.ParamArchived) == "true"
	query := h.DB.Model(&models.Appointment{}).
		Where("appointments.patient_id = ?", targetID).
		Where("appointments.archived = ?", archived)
	query = applyAppointmentFilters(query, c)

	h.respondAppointmentPage(c, query)
}

// scopedAppointments restricts the base query by role: patients see
// their own bookings, doctors the ones they are assigned to, admins
// everything.
func (h *AppointmentHandler) scopedAppointments(role models.Role, userID string) *gorm.DB {
	query := h.DB.Model(&models.Appointment{})
	switch role {
	case models.RolePatient:
		query = query.Where("appointments.patient_id = ?", userID)
	case models.RoleDoctor:
		query = query.Where(
			"EXISTS (SELECT 1 FROM appointment_doctors ad WHERE ad.appointment_id = appointments.id AND ad.user_id = ?)",
			userID)
	}
	return query
}

// applyAppointmentFilters translates the recognized query parameters
// into SQL conditions. Unknown parameters are ignored.
func applyAppointmentFilters(query *gorm.DB, c *gin.Context) *gorm.DB {
	if status := c.Query(listquery.ParamStatus); status != "" {
		query = query.Where("appointments.status = ?", status)
	}
	if services := listquery.SplitMulti(c.Query(listquery.ParamService)); len(services) > 0 {
		query = query.Where(
			"EXISTS (SELECT 1 FROM appointment_services asv WHERE asv.appointment_id = appointments.id AND asv.name IN ?)",
			services)
	}
	if name := c.Query(listquery.ParamPatientName); name != "" {
		pattern := "%" + name + "%"
		query = query.Where(
			"EXISTS (SELECT 1 FROM users p WHERE p.id = appointments.patient_id AND (p.first_name LIKE ? OR p.last_name LIKE ?))",
			pattern, pattern)
	}
	if name := c.Query(listquery.ParamDoctorName); name != "" {
		pattern := "%" + name + "%"
		query = query.Where(
			"EXISTS (SELECT 1 FROM appointment_doctors ad JOIN users d ON d.id = ad.user_id WHERE ad.appointment_id = appointments.id AND (d.first_name LIKE ? OR d.last_name LIKE ?))",
			pattern, pattern)
	}
	if search := c.Query(listquery.ParamSearch); search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			`appointments.id LIKE ?
			OR EXISTS (SELECT 1 FROM users p WHERE p.id = appointments.patient_id AND (p.first_name LIKE ? OR p.last_name LIKE ?))
			OR EXISTS (SELECT 1 FROM appointment_services asv WHERE asv.appointment_id = appointments.id AND asv.name LIKE ?)`,
			pattern, pattern, pattern, pattern)
	}
	return query
}

// respondAppointmentPage counts, fetches one page, and writes the
// uniform paginated envelope.
func (h *AppointmentHandler) respondAppointmentPage(c *gin.Context, query *gorm.DB) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count appointments: "+err.Error())
		return
	}

	page := pagination.ParsePage(c.Query(listquery.ParamPage))
	var appointments []models.Appointment
	err := query.
		Preload("Patient").Preload("Doctors").Preload("Services").
		Order("appointments.schedule asc").
		Scopes(pagination.Scope(page, pagination.DefaultLimit)).
		Find(&appointments).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Paged(c, "Appointments fetched successfully", pagination.New(appointments, total, pagination.DefaultLimit))
}

// GetAppointmentByID handles fetching a single appointment by its ID.
// Accessible by the booking patient, an assigned doctor, or an admin.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	appointment, ok := h.loadAppointment(c)
	if !ok {
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	if role != models.RoleAdmin && !appointment.IsOwnedBy(userID) && !isAssignedDoctor(appointment, userID) {
		utils.Forbidden(c, "You are not authorized to view this appointment")
		return
	}

	utils.Success(c, "Appointment fetched successfully", detailFor(*appointment, role, userID))
}

func isAssignedDoctor(appointment *models.Appointment, userID string) bool {
	for _, doc := range appointment.Doctors {
		if doc.ID == userID {
			return true
		}
	}
	return false
}

func (h *AppointmentHandler) loadAppointment(c *gin.Context) (*models.Appointment, bool) {
	id := c.Param("id")
	var appointment models.Appointment
	err := h.DB.
		Preload("Patient").Preload("Doctors").Preload("Services").Preload("MedicalRecords").
		First(&appointment, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}
	return &appointment, true
}

// TransitionAppointment returns the handler for one lifecycle action
// route (approve, decline, completed, noshow, cancelled). The lifecycle
// table is the single authority on what is legal; anything outside it
// is rejected here no matter what the client rendered.
func (h *AppointmentHandler) TransitionAppointment(action models.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		appointment, ok := h.loadAppointment(c)
		if !ok {
			return
		}

		userID, _ := middleware.GetUserIDFromContext(c)
		role, _ := middleware.GetUserRoleFromContext(c)

		next, err := models.Transition(appointment.Status, action, role, appointment.IsOwnedBy(userID), appointment.Schedule, time.Now())
		switch {
		case errors.Is(err, models.ErrIllegalTransition):
			utils.Conflict(c, "Cannot "+string(action)+" an appointment in status "+string(appointment.Status))
			return
		case errors.Is(err, models.ErrRoleDenied):
			utils.Forbidden(c, "You are not authorized to "+string(action)+" this appointment")
			return
		case errors.Is(err, models.ErrNotToday):
			utils.Conflict(c, "Appointments can only be completed on their scheduled date")
			return
		case err != nil:
			utils.InternalServerError(c, "Transition failed: "+err.Error())
			return
		}

		appointment.Status = next
		if err := h.DB.Omit(clause.Associations).Save(appointment).Error; err != nil {
			utils.InternalServerError(c, "Failed to update appointment status: "+err.Error())
			return
		}

		utils.Success(c, "Appointment "+string(action)+" successful", detailFor(*appointment, role, userID))
	}
}

// ArchiveRequest represents the request body for the archive toggle.
type ArchiveRequest struct {
	Archive *bool `json:"archive"`
}

// ArchiveAppointment sets the orthogonal archived flag on a terminal
// appointment, hiding it from default list views. Archiving is
// idempotent; the status itself never changes.
func (h *AppointmentHandler) ArchiveAppointment(c *gin.Context) {
	var req ArchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	archive := true
	if req.Archive != nil {
		archive = *req.Archive
	}

	appointment, ok := h.loadAppointment(c)
	if !ok {
		return
	}

	if !appointment.Status.IsTerminal() {
		utils.Conflict(c, models.ErrNotArchivable.Error())
		return
	}

	appointment.Archived = archive
	if err := h.DB.Omit(clause.Associations).Save(appointment).Error; err != nil {
		utils.InternalServerError(c, "Failed to archive appointment: "+err.Error())
		return
	}

	utils.Success(c, "Appointment archive flag updated", appointment)
}

// AssignDoctorsRequest represents the request body for doctor assignment.
type AssignDoctorsRequest struct {
	DoctorIDs []string `json:"doctorIds" binding:"required"`
}

// AssignDoctors replaces the set of doctors on an appointment. Only
// legal while the appointment is Approved.
func (h *AppointmentHandler) AssignDoctors(c *gin.Context) {
	var req AssignDoctorsRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, ok := h.loadAppointment(c)
	if !ok {
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	if _, err := models.Transition(appointment.Status, models.ActionAssignDoctor, role, appointment.IsOwnedBy(userID), appointment.Schedule, time.Now()); err != nil {
		if errors.Is(err, models.ErrRoleDenied) {
			utils.Forbidden(c, "Only admins can assign doctors")
		} else {
			utils.Conflict(c, "Doctors can only be assigned while an appointment is on queue")
		}
		return
	}

	var doctors []models.User
	if len(req.DoctorIDs) > 0 {
		if err := h.DB.Where("id IN ? AND role = ?", req.DoctorIDs, models.RoleDoctor).Find(&doctors).Error; err != nil {
			utils.InternalServerError(c, "Database error verifying doctors: "+err.Error())
			return
		}
		if len(doctors) != len(req.DoctorIDs) {
			utils.BadRequest(c, "One or more doctor ids are unknown or not doctors")
			return
		}
	}

	if err := h.DB.Model(appointment).Association("Doctors").Replace(doctors); err != nil {
		utils.InternalServerError(c, "Failed to assign doctors: "+err.Error())
		return
	}

	appointment.Doctors = doctors
	utils.Success(c, "Doctors assigned successfully", detailFor(*appointment, role, userID))
}

// ListAvailableDoctors lists doctors that can still be assigned to the
// appointment, i.e. every doctor not already on it.
func (h *AppointmentHandler) ListAvailableDoctors(c *gin.Context) {
	appointment, ok := h.loadAppointment(c)
	if !ok {
		return
	}

	assigned := make([]string, 0, len(appointment.Doctors))
	for _, d := range appointment.Doctors {
		assigned = append(assigned, d.ID)
	}

	query := h.DB.Where("role = ?", models.RoleDoctor)
	if len(assigned) > 0 {
		query = query.Where("id NOT IN ?", assigned)
	}

	var doctors []models.User
	if err := query.Order("last_name asc").Find(&doctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}

	sanitized := make([]models.UserSanitized, 0, len(doctors))
	for _, d := range doctors {
		sanitized = append(sanitized, d.Sanitize())
	}
	utils.Success(c, "Available doctors fetched successfully", sanitized)
}

// UpdateAppointmentRequest represents the request body for edit and
// reschedule. Patients editing a Pending booking may change schedule,
// services, and notes; admins rescheduling an Approved one may change
// the schedule only.
type UpdateAppointmentRequest struct {
	Schedule *time.Time `json:"schedule"`
	Services []string   `json:"services"`
	Notes    string     `json:"notes"`
}

// UpdateAppointment handles the owner edit (while Pending) and the
// admin reschedule (while Approved) through the same PATCH endpoint.
// The schedule never changes as a side effect of any other action.
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	var req UpdateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, ok := h.loadAppointment(c)
	if !ok {
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)
	isOwner := appointment.IsOwnedBy(userID)

	action := models.ActionEdit
	if role == models.RoleAdmin {
		action = models.ActionReschedule
	}

	if _, err := models.Transition(appointment.Status, action, role, isOwner, appointment.Schedule, time.Now()); err != nil {
		if errors.Is(err, models.ErrRoleDenied) {
			utils.Forbidden(c, "You are not authorized to modify this appointment")
		} else {
			utils.Conflict(c, "This appointment can no longer be modified")
		}
		return
	}

	if action == models.ActionReschedule && (len(req.Services) > 0 || req.Notes != "") {
		utils.BadRequest(c, "Rescheduling can only change the schedule")
		return
	}

	if req.Schedule != nil {
		if req.Schedule.Before(time.Now()) {
			utils.BadRequest(c, "Appointment date must be in the future.")
			return
		}
		appointment.Schedule = *req.Schedule
	}
	if req.Notes != "" {
		appointment.Notes = req.Notes
	}

	if len(req.Services) > 0 {
		snapshots, err := h.snapshotServices(req.Services)
		if err != nil {
			utils.BadRequest(c, err.Error())
			return
		}
		if err := h.DB.Where("appointment_id = ?", appointment.ID).Delete(&models.AppointmentService{}).Error; err != nil {
			utils.InternalServerError(c, "Failed to replace services: "+err.Error())
			return
		}
		for i := range snapshots {
			snapshots[i].AppointmentID = appointment.ID
		}
		if err := h.DB.Create(&snapshots).Error; err != nil {
			utils.InternalServerError(c, "Failed to replace services: "+err.Error())
			return
		}
		appointment.Services = snapshots
	}

	if err := h.DB.Omit(clause.Associations).Save(appointment).Error; err != nil {
		utils.InternalServerError(c, "Failed to update appointment: "+err.Error())
		return
	}

	utils.Success(c, "Appointment updated successfully", detailFor(*appointment, role, userID))
}

// dayBounds returns the local-midnight bounds of the day containing t.
func dayBounds(t time.Time) (time.Time, time.Time) {
	year, month, day := t.Local().Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
