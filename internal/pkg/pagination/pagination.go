package pagination

import (
	"strconv"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is an offset-based page request. Zero values fall back to defaults.
type Page struct {
	Number int `json:"page,omitempty"`
	Size   int `json:"page_size,omitempty"`
}

// NewPage creates a page request, clamping out-of-range values.
func NewPage(number, size int) Page {
	p := Page{Number: number, Size: size}
	return Page{Number: p.GetNumber(), Size: p.GetSize()}
}

// ParsePage reads page and page_size from raw query values. Unparsable
// values are treated as absent.
func ParsePage(page, pageSize string) Page {
	n, _ := strconv.Atoi(page)
	s, _ := strconv.Atoi(pageSize)
	return NewPage(n, s)
}

// GetNumber returns the 1-based page number.
func (p Page) GetNumber() int {
	if p.Number <= 0 {
		return 1
	}
	return p.Number
}

// GetSize returns validated page size
func (p Page) GetSize() int {
	if p.Size <= 0 || p.Size > MaxPageSize {
		return DefaultPageSize
	}
	return p.Size
}

// Offset returns the row offset for SQL queries.
func (p Page) Offset() int {
	return (p.GetNumber() - 1) * p.GetSize()
}

// Limit is an alias of GetSize for SQL call sites.
func (p Page) Limit() int {
	return p.GetSize()
}

// Response is one page of items with totals.
type Response[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// BuildResponse builds a page response from items and total count
func BuildResponse[T any](items []T, p Page, total int64) *Response[T] {
	size := p.GetSize()
	totalPages := int((total + int64(size) - 1) / int64(size))
	if items == nil {
		items = []T{}
	}

	return &Response[T]{
		Items:      items,
		Page:       p.GetNumber(),
		PageSize:   size,
		TotalItems: total,
		TotalPages: totalPages,
		HasNext:    p.GetNumber() < totalPages,
		HasPrev:    p.GetNumber() > 1,
	}
}
