// Package listquery maps the dashboard's named filters, free-text
// search, and page number onto the query-parameter contract the list
// endpoints accept. The same wire keys are used by the server handlers
// when parsing, so both sides of the contract live here.
package listquery

import (
	"net/url"
	"strconv"
	"strings"
)

// Wire keys shared by the builder and the server-side parsers.
const (
	ParamStatus        = "status"
	ParamService       = "service"
	ParamPatientName   = "patientName"
	ParamDoctorName    = "doctorName"
	ParamGender        = "gender"
	ParamMaritalStatus = "maritalStatus"
	ParamSearch        = "search"
	ParamPage          = "page"
	ParamArchived      = "archived"
)

// Filter labels as they appear in the dashboard's filter dropdowns.
const (
	FilterStatus        = "Status"
	FilterServices      = "Services"
	FilterPatientName   = "Patient Name"
	FilterDoctorName    = "Doctor Assigned"
	FilterGender        = "Gender"
	FilterMaritalStatus = "Marital Status"
)

// filterKeys maps a filter label to its wire key and whether it is a
// multi-select. Labels absent from this table are silently ignored,
// which keeps the builder forward compatible with backend-only filters.
var filterKeys = map[string]struct {
	key   string
	multi bool
}{
	FilterStatus:        {key: ParamStatus},
	FilterServices:      {key: ParamService, multi: true},
	FilterPatientName:   {key: ParamPatientName},
	FilterDoctorName:    {key: ParamDoctorName},
	FilterGender:        {key: ParamGender},
	FilterMaritalStatus: {key: ParamMaritalStatus},
}

// Selection is the chosen value(s) for one filter. A nil or empty
// Selection, or one whose values are all blank, is treated as absent.
type Selection []string

// FilterSet maps a filter label to its current selection. It is
// request-scoped state; it is never persisted.
type FilterSet map[string]Selection

// Build serializes filters, search, and page into a canonical query
// string. Multi-select filters serialize as a single comma-joined
// parameter, never repeated keys. Search is trimmed and omitted when
// blank. Page is always present and clamps to 1. Percent-encoding is
// delegated to url.Values.Encode exactly once, which also gives a
// stable (alphabetical) key order.
func Build(filters FilterSet, search string, page int) string {
	params := url.Values{}

	for label, selection := range filters {
		mapping, known := filterKeys[label]
		if !known {
			continue
		}
		values := selection.compact()
		if len(values) == 0 {
			continue
		}
		if mapping.multi {
			params.Set(mapping.key, strings.Join(values, ","))
		} else {
			params.Set(mapping.key, values[0])
		}
	}

	if trimmed := strings.TrimSpace(search); trimmed != "" {
		params.Set(ParamSearch, trimmed)
	}

	if page < 1 {
		page = 1
	}
	params.Set(ParamPage, strconv.Itoa(page))

	return params.Encode()
}

// compact drops blank values so a placeholder selection counts as absent.
func (s Selection) compact() []string {
	var out []string
	for _, v := range s {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// SplitMulti parses a comma-joined multi-select parameter back into its
// values, dropping empty segments. The server-side counterpart of the
// comma join in Build.
func SplitMulti(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
