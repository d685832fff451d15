package shared

import (
	"math"
	"net/url"
	"strconv"
)

// Defaults applied when a list request omits or mangles its paging params.
const (
	DefaultLimit = 25
	DefaultPage  = 1
)

// PageRequest is the caller's requested window.
type PageRequest struct {
	Limit int
	Page  int
}

// ParsePageRequest reads limit and page from a query string. Missing,
// non-numeric and non-positive values fall back to the defaults.
func ParsePageRequest(q url.Values) PageRequest {
	return PageRequest{
		Limit: positiveOr(q.Get("limit"), DefaultLimit),
		Page:  positiveOr(q.Get("page"), DefaultPage),
	}
}

// Offset is the number of rows skipped before the page starts. Pages too far
// out to address saturate at math.MaxInt, which selects nothing.
func (p PageRequest) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// Pagination contains the metadata shared by every list endpoint.
type Pagination struct {
	Limit       int `json:"limit"`
	CurrentPage int `json:"current_page"`
	TotalPage   int `json:"total_page"`
}

// Paginate computes the metadata from the pre-pagination total.
func Paginate(total, limit, page int) Pagination {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if page <= 0 {
		page = DefaultPage
	}
	totalPage := 0
	if total > 0 {
		totalPage = total / limit
		if total%limit != 0 {
			totalPage++
		}
	}
	return Pagination{Limit: limit, CurrentPage: page, TotalPage: totalPage}
}

// Page is the pagination envelope returned by list endpoints.
type Page[T any] struct {
	Limit       int `json:"limit"`
	CurrentPage int `json:"current_page"`
	TotalPage   int `json:"total_page"`
	Count       int `json:"count"`
	Total       int `json:"total"`
	Data        []T `json:"data"`
}

// NewPage wraps one page of rows. Out-of-range pages carry an empty slice.
func NewPage[T any](req PageRequest, total int, rows []T) Page[T] {
	if rows == nil {
		rows = []T{}
	}
	meta := Paginate(total, req.Limit, req.Page)
	return Page[T]{
		Limit:       meta.Limit,
		CurrentPage: meta.CurrentPage,
		TotalPage:   meta.TotalPage,
		Count:       len(rows),
		Total:       total,
		Data:        rows,
	}
}

func positiveOr(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
