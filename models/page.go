package models

// SortOrder selects how situation listings are ordered.
type SortOrder string

const (
	SortRecent    SortOrder = "recent"
	SortTopRated  SortOrder = "top_rated"
	SortMostRated SortOrder = "most_rated"
)

func (s SortOrder) Valid() bool {
	switch s {
	case SortRecent, SortTopRated, SortMostRated:
		return true
	}
	return false
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

type ListParams struct {
	Page     int
	PageSize int
	Sort     SortOrder
	Query    string
}

// Offset is the number of rows skipped before the requested page.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PastEnd reports whether the requested page starts at or beyond total rows.
// Unlike Offset it holds for any page number.
func (p ListParams) PastEnd(total int64) bool {
	if total <= 0 || p.PageSize <= 0 {
		return true
	}
	return int64(p.Page-1) >= (total+int64(p.PageSize)-1)/int64(p.PageSize)
}

type Page[T any] struct {
	Items      []T   `json:"situations"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// TotalPages is ceil(total / pageSize), 0 for an empty result.
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

func NewPage[T any](items []T, total int64, params ListParams) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: TotalPages(total, params.PageSize),
	}
}
