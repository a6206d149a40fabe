package client

import (
	"clinic-dashboard-server/internal/listquery"
	"clinic-dashboard-server/internal/listview"
	"clinic-dashboard-server/internal/models"
)

// AppointmentTable is the state behind the paginated appointment list:
// the loaded rows, page totals, row selection, and a generation guard
// that drops responses from superseded fetches. Fetches are two-phase
// so they can run off the caller's main loop: Begin when dispatching,
// Load with the returned token when the response is ready to apply.
type AppointmentTable struct {
	client *Client
	guard  listview.Guard

	Rows      []models.Appointment
	Page      listview.PageState
	Selection *listview.Selection
}

// NewAppointmentTable creates an empty table bound to a client session.
func NewAppointmentTable(c *Client) *AppointmentTable {
	return &AppointmentTable{client: c, Selection: listview.NewSelection(nil)}
}

// Begin invalidates all outstanding fetches and returns the token for
// the one about to be dispatched.
func (t *AppointmentTable) Begin() uint64 {
	return t.guard.Begin()
}

// Load fetches one page and applies it, unless a newer Begin has
// superseded token by the time the response arrives. It reports
// whether the response was applied; a dropped stale response is not
// an error, and leaves the rows, totals, and selection untouched.
func (t *AppointmentTable) Load(token uint64, filters listquery.FilterSet, search string, page int, archived bool) (bool, *APIError) {
	res, apiErr := t.client.ListAppointments(filters, search, page, archived)
	if apiErr != nil {
		return false, apiErr
	}
	if !t.guard.Current(token) {
		return false, nil
	}

	t.Rows = res.Data
	t.Page.CurrentPage = page
	t.Page.Apply(res.Total, res.TotalPages, res.Limit)

	ids := make([]string, len(res.Data))
	for i, a := range res.Data {
		ids[i] = a.ID
	}
	t.Selection.Reset(ids)
	return true, nil
}
