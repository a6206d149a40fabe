package client

import (
	"encoding/json"
	"net/http"

	"clinic-dashboard-server/internal/listquery"
	"clinic-dashboard-server/internal/models"
)

// ServicePage is one page of the service catalog.
type ServicePage struct {
	Data       []models.Service
	Total      int64
	TotalPages int
	Limit      int
}

// ListServices fetches one page of the service catalog, optionally
// filtered by status.
func (c *Client) ListServices(status models.ServiceStatus, search string, page int) (*ServicePage, *APIError) {
	filters := listquery.FilterSet{}
	if status != "" {
		filters[listquery.FilterStatus] = listquery.Selection{string(status)}
	}
	env, apiErr := c.do(http.MethodGet, "/api/v1/services?"+listquery.Build(filters, search, page), nil, "")
	if apiErr != nil {
		return nil, apiErr
	}
	var services []models.Service
	if err := json.Unmarshal(env.Data, &services); err != nil {
		return nil, &APIError{Kind: KindTransport, Message: "malformed service payload: " + err.Error()}
	}
	return &ServicePage{Data: services, Total: env.Total, TotalPages: env.TotalPages, Limit: env.Limit}, nil
}

// CreateService adds a service to the catalog. Admin only.
func (c *Client) CreateService(name, description string, price float64) (*models.Service, *APIError) {
	env, apiErr := c.postJSON("/api/v1/services/add", map[string]interface{}{
		"name":        name,
		"description": description,
		"price":       price,
	})
	if apiErr != nil {
		return nil, apiErr
	}
	var service models.Service
	if err := json.Unmarshal(env.Data, &service); err != nil {
		return nil, &APIError{Kind: KindTransport, Message: "malformed service payload: " + err.Error()}
	}
	return &service, nil
}

// ServiceUpdate carries service field changes. A nil price leaves the
// price untouched.
type ServiceUpdate struct {
	Description string               `json:"description,omitempty"`
	Price       *float64             `json:"price,omitempty"`
	Status      models.ServiceStatus `json:"status,omitempty"`
}

// UpdateService edits a service's description, price, or status. Admin only.
func (c *Client) UpdateService(id string, update ServiceUpdate) (*models.Service, *APIError) {
	env, apiErr := c.patchJSON("/api/v1/services/"+id, update)
	if apiErr != nil {
		return nil, apiErr
	}
	var service models.Service
	if err := json.Unmarshal(env.Data, &service); err != nil {
		return nil, &APIError{Kind: KindTransport, Message: "malformed service payload: " + err.Error()}
	}
	return &service, nil
}

// DeleteService removes a service from the catalog. Admin only.
func (c *Client) DeleteService(id string) *APIError {
	_, apiErr := c.do(http.MethodDelete, "/api/v1/services/"+id, nil, "")
	return apiErr
}

// PriceLookup resolves service names to current prices. Names that
// match no service come back in notFound instead of failing the call.
type PriceLookup struct {
	Prices   map[string]float64 `json:"prices"`
	NotFound []string           `json:"notFound"`
}

// LookupPrices resolves a list of service names to their current prices.
func (c *Client) LookupPrices(names []string) (*PriceLookup, *APIError) {
	env, apiErr := c.postJSON("/api/v1/services/prices", map[string][]string{"names": names})
	if apiErr != nil {
		return nil, apiErr
	}
	var lookup PriceLookup
	if err := json.Unmarshal(env.Data, &lookup); err != nil {
		return nil, &APIError{Kind: KindTransport, Message: "malformed price payload: " + err.Error()}
	}
	return &lookup, nil
}

// TopService is one row of the most-booked-services report.
type TopService struct {
	Name     string `json:"name"`
	Bookings int64  `json:"bookings"`
}

// TopServices fetches the five most-booked services. Admin only.
func (c *Client) TopServices() ([]TopService, *APIError) {
	env, apiErr := c.do(http.MethodGet, "/api/v1/services/reports/top", nil, "")
	if apiErr != nil {
		return nil, apiErr
	}
	var rows []TopService
	if err := json.Unmarshal(env.Data, &rows); err != nil {
		return nil, &APIError{Kind: KindTransport, Message: "malformed report payload: " + err.Error()}
	}
	return rows, nil
}
