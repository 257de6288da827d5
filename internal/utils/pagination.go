package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kzmshx/taskhub/internal/constants"
)

// PaginationParams holds the validated pagination parameters
type PaginationParams struct {
	Page     int
	PageSize int
}

// Offset returns the record offset for the current page.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// GetPaginationParams extracts and clamps pagination parameters from the request
func GetPaginationParams(c *gin.Context) PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(constants.MinPage)))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(constants.DefaultPageSize)))

	if page < constants.MinPage {
		page = constants.MinPage
	}
	if size < 1 || size > constants.MaxPageSize {
		size = constants.DefaultPageSize
	}

	return PaginationParams{
		Page:     page,
		PageSize: size,
	}
}

// TotalPages computes the page count for a total under the given page size.
func TotalPages(total int64, pageSize int) int {
	pages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		pages++
	}
	return pages
}
