// Package pagination defines the uniform page shape every list endpoint
// returns and the gorm scope that implements it.
package pagination

import (
	"strconv"

	"gorm.io/gorm"
)

// DefaultLimit is the per-page row count for every list view.
const DefaultLimit = 10

// Result is the 4-tuple every paginated list query returns. Clients
// hold only their current page; Total, TotalPages, and Limit are always
// replaced wholesale from the latest response, never computed locally.
type Result struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"totalPages"`
	Limit      int         `json:"limit"`
}

// New assembles a Result from a fetched page and its total row count.
func New(data interface{}, total int64, limit int) Result {
	if limit < 1 {
		limit = DefaultLimit
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	if totalPages < 1 {
		totalPages = 1
	}
	return Result{
		Data:       data,
		Total:      total,
		TotalPages: totalPages,
		Limit:      limit,
	}
}

// Scope returns a gorm scope applying offset/limit for the given page.
// Pages below 1 clamp to the first page.
func Scope(page, limit int) func(db *gorm.DB) *gorm.DB {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * limit).Limit(limit)
	}
}

// ParsePage parses a page query parameter, defaulting to 1 for
// anything missing or malformed.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}
