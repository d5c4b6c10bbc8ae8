package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/membership-api/internal/constants"
)

// PaginationParams is a validated page window over an ordered listing
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// PaginationResponse is the page metadata returned next to a listing
type PaginationResponse struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	HasMore bool  `json:"has_more"`
}

// NewPaginationParams clamps page to >= 1 and limit to [1, MaxPageSize];
// a non-positive limit falls back to DefaultPageSize.
func NewPaginationParams(page, limit int) PaginationParams {
	if page < 1 {
		page = 1
	}
	switch {
	case limit < constants.MinPageSize:
		limit = constants.DefaultPageSize
	case limit > constants.MaxPageSize:
		limit = constants.MaxPageSize
	}
	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// GetPaginationParams reads page and limit from the query string
func GetPaginationParams(c *gin.Context) PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultPageSize)))
	return NewPaginationParams(page, limit)
}

// Response builds the metadata for a page of a listing holding total rows
func (p PaginationParams) Response(total int64) PaginationResponse {
	return PaginationResponse{
		Page:    p.Page,
		Limit:   p.Limit,
		Total:   total,
		HasMore: int64(p.Offset+p.Limit) < total,
	}
}
