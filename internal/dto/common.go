package dto

import (
	"math"
	"strconv"
)

// PageSize is the fixed page length of every paginated listing.
const PageSize = 10

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
	Realtime  bool   `json:"realtime"`
	Push      bool   `json:"push"`
}

// Page is the envelope of paginated listings.
type Page struct {
	Items       interface{} `json:"items"`
	TotalPages  int         `json:"totalPages"`
	CurrentPage int         `json:"currentPage"`
	Total       int64       `json:"total"`
}

func NewPage(items interface{}, total int64, page int) Page {
	return Page{
		Items:       items,
		TotalPages:  int(math.Ceil(float64(total) / float64(PageSize))),
		CurrentPage: page,
		Total:       total,
	}
}

// ParsePage reads a 1-based page number, defaulting to 1.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// Offset returns the row offset of a 1-based page.
func Offset(page int) int {
	return (page - 1) * PageSize
}
