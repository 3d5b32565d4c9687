package params

import (
	"math"
	"strconv"

	"quorum-booking/core/constants"

	"github.com/labstack/echo/v4"
)

type QueryParams struct {
	PageNumber int `json:"page"`
	PageSize   int `json:"limit"`
}

// NewQueryParams reads ?page= and ?limit= and clamps them to sane bounds.
func NewQueryParams(c echo.Context) *QueryParams {
	return Normalize(atoi(c.QueryParam("page")), atoi(c.QueryParam("limit")))
}

func Normalize(page, size int) *QueryParams {
	if page < 1 {
		page = constants.DefaultPageNumber
	}
	if size < 1 {
		size = constants.DefaultPageSize
	}
	if size > constants.MaxPageSize {
		size = constants.MaxPageSize
	}
	page = min(page, math.MaxInt/size)
	return &QueryParams{PageNumber: page, PageSize: size}
}

func (p QueryParams) Offset() int {
	return (p.PageNumber - 1) * p.PageSize
}

// Pagination is a page of items plus the total before paging.
type Pagination[T any] struct {
	Items      []T `json:"items"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
	PageNumber int `json:"page"`
	PageSize   int `json:"limit"`
}

// Paginate slices items according to p.
func Paginate[T any](items []T, p QueryParams) Pagination[T] {
	total := len(items)
	start := max(0, min(p.Offset(), total))
	end := start + min(max(p.PageSize, 0), total-start)

	pages := 0
	if p.PageSize > 0 {
		pages = (total + p.PageSize - 1) / p.PageSize
	}
	page := make([]T, end-start)
	copy(page, items[start:end])
	return Pagination[T]{
		Items:      page,
		TotalItems: total,
		TotalPages: pages,
		PageNumber: p.PageNumber,
		PageSize:   p.PageSize,
	}
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
