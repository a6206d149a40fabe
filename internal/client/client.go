// Package client is the data-access layer for the dashboard: a
// cookie-session HTTP client wrapping every API endpoint. Every call
// returns a typed *APIError with an error kind instead of leaving each
// page to invent its own failure handling.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"time"

	"clinic-dashboard-server/internal/listquery"
	"clinic-dashboard-server/internal/models"
)

// ErrorKind classifies a failed call.
type ErrorKind string

const (
	// KindTransport is a network-level failure; the request may never
	// have reached the server.
	KindTransport ErrorKind = "transport"
	// KindRejected is a request the backend refused, e.g. an illegal
	// status transition or a missing resource.
	KindRejected ErrorKind = "rejected"
	// KindValidation is a request that failed local checks before it
	// was ever sent.
	KindValidation ErrorKind = "validation"
)

// APIError is the tagged failure value every client call returns.
type APIError struct {
	Kind    ErrorKind
	Status  int // HTTP status for KindRejected, zero otherwise
	Message string
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Client talks to the clinic API. The session cookie set at login is
// held in the jar and sent with every subsequent request.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the given base URL (no trailing slash).
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Jar: jar},
	}, nil
}

// envelope mirrors the API's response wrapper. Paginated endpoints
// carry the page fields at the top level.
type envelope struct {
	Status     int             `json:"status"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	Total      int64           `json:"total"`
	TotalPages int             `json:"totalPages"`
	Limit      int             `json:"limit"`
}

func (c *Client) do(method, path string, body io.Reader, contentType string) (*envelope, *APIError) {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, &APIError{Kind: KindValidation, Message: err.Error()}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &APIError{Kind: KindTransport, Message: err.Error()}
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, &APIError{Kind: KindTransport, Message: "malformed response: " + err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		return nil, &APIError{Kind: KindRejected, Status: resp.StatusCode, Message: msg}
	}
	return &env, nil
}

func (c *Client) postJSON(path string, payload interface{}) (*envelope, *APIError) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, &APIError{Kind: KindValidation, Message: err.Error()}
	}
	return c.do(http.MethodPost, path, bytes.NewReader(data), "application/json")
}

func (c *Client) patchJSON(path string, payload interface{}) (*envelope, *APIError) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, &APIError{Kind: KindValidation, Message: err.Error()}
	}
	return c.do(http.MethodPatch, path, bytes.NewReader(data), "application/json")
}

// Login authenticates and stores the session cookie for later calls.
func (c *Client) Login(email, password string) (*models.UserSanitized, *APIError) {
	env, apiErr := c.postJSON("/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if apiErr != nil {
		return nil, apiErr
	}
	var user models.UserSanitized
	if err := json.Unmarshal(env.Data, &user); err != nil {
		return nil, &APIError{Kind: KindTransport, Message: "malformed user payload: " + err.Error()}
	}
	return &user, nil
}

// Logout clears the server-side session cookie.
func (c *Client) Logout() *APIError {
	_, apiErr := c.do(http.MethodPost, "/api/v1/auth/logout", nil, "")
	return apiErr
}

// AppointmentPage is one page of the appointment table.
type AppointmentPage struct {
	Data       []models.Appointment
	Total      int64
	TotalPages int
	Limit      int
}

// ListAppointments fetches one page of the appointment table. Filters
// and search are serialized through the canonical query builder;
// archived switches to the archive tab.
func (c *Client) ListAppointments(filters listquery.FilterSet, search string, page int, archived bool) (*AppointmentPage, *APIError) {
	query := listquery.Build(filters, search, page)
	if archived {
		query += "&" + listquery.ParamArchived + "=true"
	}
	return c.appointmentPage("/api/v1/appointments/all?" + query)
}

func (c *Client) appointmentPage(path string) (*AppointmentPage, *APIError) {
	env, apiErr := c.do(http.MethodGet, path, nil, "")
	if apiErr != nil {
		return nil, apiErr
	}

	var appointments []models.Appointment
	if err := json.Unmarshal(env.Data, &appointments); err != nil {
		return nil, &APIError{Kind: KindTransport, Message: "malformed appointment payload: " + err.Error()}
	}
	return &AppointmentPage{
		Data:       appointments,
		Total:      env.Total,
		TotalPages: env.TotalPages,
		Limit:      env.Limit,
	}, nil
}

// AppointmentDetail mirrors the detail payload: the appointment plus
// the actions the server says this user may invoke.
type AppointmentDetail struct {
	models.Appointment
	StatusLabel    string          `json:"statusLabel"`
	StatusColor    string          `json:"statusColor"`
	AllowedActions []models.Action `json:"allowedActions"`
	CanComplete    bool            `json:"canComplete"`
	CanArchive     bool            `json:"canArchive"`
}

// GetAppointment fetches one appointment with its allowed actions.
func (c *Client) GetAppointment(id string) (*AppointmentDetail, *APIError) {
	env, apiErr := c.do(http.MethodGet, "/api/v1/appointments/"+id, nil, "")
	if apiErr != nil {
		return nil, apiErr
	}
	var detail AppointmentDetail
	if err := json.Unmarshal(env.Data, &detail); err != nil {
		return nil, &APIError{Kind: KindTransport, Message: "malformed appointment payload: " + err.Error()}
	}
	return &detail, nil
}

// CreateAppointment books an appointment. The 1-3 services bound is
// checked locally before anything goes on the wire; the backend remains
// the real authority.
func (c *Client) CreateAppointment(schedule time.Time, services []string, notes string) (*models.Appointment, *APIError) {
	if len(services) < models.MinServices || len(services) > models.MaxServices {
		return nil, &APIError{Kind: KindValidation, Message: "an appointment must book between 1 and 3 services"}
	}
	env, apiErr := c.postJSON("/api/v1/appointments/create", map[string]interface{}{
		"schedule": schedule,
		"services": services,
		"notes":    notes,
	})
	if apiErr != nil {
		return nil, apiErr
	}
	var appointment models.Appointment
	if err := json.Unmarshal(env.Data, &appointment); err != nil {
		return nil, &APIError{Kind: KindTransport, Message: "malformed appointment payload: " + err.Error()}
	}
	return &appointment, nil
}

func (c *Client) transition(id string, action models.Action) (*AppointmentDetail, *APIError) {
	env, apiErr := c.patchJSON("/api/v1/appointments/"+id+"/"+string(action), struct{}{})
	if apiErr != nil {
		return nil, apiErr
	}
	var detail AppointmentDetail
	if err := json.Unmarshal(env.Data, &detail); err != nil {
		return nil, &APIError{Kind: KindTransport, Message: "malformed appointment payload: " + err.Error()}
	}
	return &detail, nil
}

// Approve moves a pending appointment onto the queue. Admin only.
func (c *Client) Approve(id string) (*AppointmentDetail, *APIError) {
	return c.transition(id, models.ActionApprove)
}

// Decline rejects a pending appointment. Admin only.
func (c *Client) Decline(id string) (*AppointmentDetail, *APIError) {
	return c.transition(id, models.ActionDecline)
}

// Complete marks an on-queue appointment completed. Admin only, and
// only on the scheduled date.
func (c *Client) Complete(id string) (*AppointmentDetail, *APIError) {
	return c.transition(id, models.ActionComplete)
}

// NoShow marks an on-queue appointment as a no-show. Admin only.
func (c *Client) NoShow(id string) (*AppointmentDetail, *APIError) {
	return c.transition(id, models.ActionNoShow)
}

// Cancel cancels the caller's own pending or on-queue appointment.
func (c *Client) Cancel(id string) (*AppointmentDetail, *APIError) {
	return c.transition(id, models.ActionCancel)
}

// Archive hides a finished appointment from default list views.
func (c *Client) Archive(id string) *APIError {
	_, apiErr := c.patchJSON("/api/v1/appointments/"+id+"/archive", map[string]bool{"archive": true})
	return apiErr
}

// AssignDoctors replaces the doctors on an on-queue appointment.
func (c *Client) AssignDoctors(id string, doctorIDs []string) (*AppointmentDetail, *APIError) {
	env, apiErr := c.patchJSON("/api/v1/appointments/"+id+"/doctor", map[string][]string{"doctorIds": doctorIDs})
	if apiErr != nil {
		return nil, apiErr
	}
	var detail AppointmentDetail
	if err := json.Unmarshal(env.Data, &detail); err != nil {
		return nil, &APIError{Kind: KindTransport, Message: "malformed appointment payload: " + err.Error()}
	}
	return &detail, nil
}

// Reschedule moves an on-queue appointment to a new time. Admin only.
func (c *Client) Reschedule(id string, newSchedule time.Time) (*AppointmentDetail, *APIError) {
	env, apiErr := c.patchJSON("/api/v1/appointments/"+id, map[string]interface{}{"schedule": newSchedule})
	if apiErr != nil {
		return nil, apiErr
	}
	var detail AppointmentDetail
	if err := json.Unmarshal(env.Data, &detail); err != nil {
		return nil, &APIError{Kind: KindTransport, Message: "malformed appointment payload: " + err.Error()}
	}
	return &detail, nil
}

// UpdateNotes rewrites the notes on the caller's own pending
// appointment. Admins cannot use this: their updates go through the
// reschedule path, which touches the schedule only.
func (c *Client) UpdateNotes(id, notes string) (*AppointmentDetail, *APIError) {
	env, apiErr := c.patchJSON("/api/v1/appointments/"+id, map[string]string{"notes": notes})
	if apiErr != nil {
		return nil, apiErr
	}
	var detail AppointmentDetail
	if err := json.Unmarshal(env.Data, &detail); err != nil {
		return nil, &APIError{Kind: KindTransport, Message: "malformed appointment payload: " + err.Error()}
	}
	return &detail, nil
}

// EditAppointment changes the schedule and services of the caller's own
// pending appointment.
func (c *Client) EditAppointment(id string, schedule *time.Time, services []string) (*AppointmentDetail, *APIError) {
	if len(services) > models.MaxServices {
		return nil, &APIError{Kind: KindValidation, Message: "an appointment must book between 1 and 3 services"}
	}
	payload := map[string]interface{}{}
	if schedule != nil {
		payload["schedule"] = schedule
	}
	if len(services) > 0 {
		payload["services"] = services
	}
	env, apiErr := c.patchJSON("/api/v1/appointments/"+id, payload)
	if apiErr != nil {
		return nil, apiErr
	}
	var detail AppointmentDetail
	if err := json.Unmarshal(env.Data, &detail); err != nil {
		return nil, &APIError{Kind: KindTransport, Message: "malformed appointment payload: " + err.Error()}
	}
	return &detail, nil
}

// Upload is one file going into a medical-record upload.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// UploadMedicalRecords attaches files to a completed appointment via
// multipart form upload.
func (c *Client) UploadMedicalRecords(appointmentID string, uploads []Upload) ([]models.MedicalRecord, *APIError) {
	if len(uploads) == 0 {
		return nil, &APIError{Kind: KindValidation, Message: "at least one file is required"}
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("appointmentId", appointmentID); err != nil {
		return nil, &APIError{Kind: KindValidation, Message: err.Error()}
	}
	for _, up := range uploads {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, up.Name))
		contentType := up.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, &APIError{Kind: KindValidation, Message: err.Error()}
		}
		if _, err := part.Write(up.Data); err != nil {
			return nil, &APIError{Kind: KindValidation, Message: err.Error()}
		}
	}
	if err := writer.Close(); err != nil {
		return nil, &APIError{Kind: KindValidation, Message: err.Error()}
	}

	env, apiErr := c.do(http.MethodPost, "/api/v1/medical-records/upload", &buf, writer.FormDataContentType())
	if apiErr != nil {
		return nil, apiErr
	}
	var records []models.MedicalRecord
	if err := json.Unmarshal(env.Data, &records); err != nil {
		return nil, &APIError{Kind: KindTransport, Message: "malformed record payload: " + err.Error()}
	}
	return records, nil
}

// DeleteMedicalRecord removes one uploaded record from an appointment.
func (c *Client) DeleteMedicalRecord(recordID, appointmentID string) *APIError {
	_, apiErr := c.do(http.MethodDelete, "/api/v1/medical-records/"+recordID+"/appointments/"+appointmentID, nil, "")
	return apiErr
}

// DownloadMedicalRecord fetches a stored file's bytes and MIME type.
func (c *Client) DownloadMedicalRecord(recordID string) ([]byte, string, *APIError) {
	resp, err := c.http.Get(c.baseURL + "/api/v1/medical-records/" + recordID + "/download")
	if err != nil {
		return nil, "", &APIError{Kind: KindTransport, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", &APIError{Kind: KindRejected, Status: resp.StatusCode, Message: "download failed"}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &APIError{Kind: KindTransport, Message: err.Error()}
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// StatusCounts mirrors the per-status counts behind the dashboard
// charts. Every known status is present, even at zero.
type StatusCounts map[models.AppointmentStatus]int64

// TodayCounts fetches per-status counts for today's appointments.
func (c *Client) TodayCounts() (StatusCounts, *APIError) {
	env, apiErr := c.do(http.MethodGet, "/api/v1/appointments/counts/today", nil, "")
	if apiErr != nil {
		return nil, apiErr
	}
	var counts StatusCounts
	if err := json.Unmarshal(env.Data, &counts); err != nil {
		return nil, &APIError{Kind: KindTransport, Message: "malformed counts payload: " + err.Error()}
	}
	return counts, nil
}

// RangeCounts fetches per-status counts for appointments scheduled
// between from and to, inclusive.
func (c *Client) RangeCounts(from, to time.Time) (StatusCounts, *APIError) {
	path := "/api/v1/appointments/counts/range?from=" + from.Format("2006-01-02") + "&to=" + to.Format("2006-01-02")
	env, apiErr := c.do(http.MethodGet, path, nil, "")
	if apiErr != nil {
		return nil, apiErr
	}
	var counts StatusCounts
	if err := json.Unmarshal(env.Data, &counts); err != nil {
		return nil, &APIError{Kind: KindTransport, Message: "malformed counts payload: " + err.Error()}
	}
	return counts, nil
}

// RevenueReport mirrors the completed-appointments revenue summary.
type RevenueReport struct {
	Completed int64   `json:"completed"`
	Revenue   float64 `json:"revenue"`
}

// CompletedRevenue fetches the completed count and booked revenue for
// the from/to range, inclusive.
func (c *Client) CompletedRevenue(from, to time.Time) (*RevenueReport, *APIError) {
	path := "/api/v1/appointments/completed/range?from=" + from.Format("2006-01-02") + "&to=" + to.Format("2006-01-02")
	env, apiErr := c.do(http.MethodGet, path, nil, "")
	if apiErr != nil {
		return nil, apiErr
	}
	var report RevenueReport
	if err := json.Unmarshal(env.Data, &report); err != nil {
		return nil, &APIError{Kind: KindTransport, Message: "malformed revenue payload: " + err.Error()}
	}
	return &report, nil
}

// ListTodayApproved fetches the "Today" tab: on-queue appointments
// scheduled for the current calendar day.
func (c *Client) ListTodayApproved(filters listquery.FilterSet, search string, page int) (*AppointmentPage, *APIError) {
	return c.appointmentPage("/api/v1/appointments/today/approved?" + listquery.Build(filters, search, page))
}

// ListUserAppointments fetches one patient's appointments, as shown on
// the patient detail page.
func (c *Client) ListUserAppointments(patientID string, filters listquery.FilterSet, search string, page int, archived bool) (*AppointmentPage, *APIError) {
	query := listquery.Build(filters, search, page)
	if archived {
		query += "&" + listquery.ParamArchived + "=true"
	}
	return c.appointmentPage("/api/v1/appointments/users/" + patientID + "?" + query)
}

// AvailableDoctors fetches the doctors not yet assigned to an
// appointment. Admin only.
func (c *Client) AvailableDoctors(appointmentID string) ([]models.UserSanitized, *APIError) {
	env, apiErr := c.do(http.MethodGet, "/api/v1/appointments/"+appointmentID+"/doctors-available", nil, "")
	if apiErr != nil {
		return nil, apiErr
	}
	var doctors []models.UserSanitized
	if err := json.Unmarshal(env.Data, &doctors); err != nil {
		return nil, &APIError{Kind: KindTransport, Message: "malformed doctor payload: " + err.Error()}
	}
	return doctors, nil
}
