package model

import (
	"fmt"
	"math"
	"strings"
)

// SortDirection is the ordering applied to the sort field
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// Pagination defaults for the user listing
const (
	DefaultPage      = 0
	DefaultPageSize  = 2
	MaxPageSize      = 100
	DefaultSortField = SortUserName
	DefaultDirection = SortDesc
)

// MaxPage is the highest page index accepted. Any page up to it at any size
// up to MaxPageSize has an offset that fits in an int32.
const MaxPage = math.MaxInt32 / MaxPageSize

// Sortable user fields, named as they appear on the wire
const (
	SortUserName       = "userName"
	SortFullName       = "fullName"
	SortEmail          = "email"
	SortUserStatus     = "userStatus"
	SortUserType       = "userType"
	SortCreationDate   = "creationDate"
	SortLastUpdateDate = "lastUpdateDate"
)

var sortableFields = map[string]bool{
	SortUserName:       true,
	SortFullName:       true,
	SortEmail:          true,
	SortUserStatus:     true,
	SortUserType:       true,
	SortCreationDate:   true,
	SortLastUpdateDate: true,
}

// Filter keys accepted on the user listing. Status and type match exactly,
// email and full name match as case-insensitive substrings.
const (
	FilterUserType   = "userType"
	FilterUserStatus = "userStatus"
	FilterEmail      = "email"
	FilterFullName   = "fullName"
)

// FilterKeys lists the filter keys in a stable order
var FilterKeys = []string{FilterUserType, FilterUserStatus, FilterEmail, FilterFullName}

// IsSortableField reports whether field can be used to order users
func IsSortableField(field string) bool {
	return sortableFields[field]
}

// ParseSortDirection parses ASC/DESC case-insensitively
func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ASC":
		return SortAsc, nil
	case "DESC":
		return SortDesc, nil
	}
	return "", fmt.Errorf("invalid sort direction %q", s)
}

// PageRequest describes one page of a filtered, ordered user listing
type PageRequest struct {
	Page      int
	Size      int
	Sort      string
	Direction SortDirection
	Filters   map[string]string
}

// DefaultPageRequest returns page 0, size 2, ordered by user name descending
func DefaultPageRequest() PageRequest {
	return PageRequest{
		Page:      DefaultPage,
		Size:      DefaultPageSize,
		Sort:      DefaultSortField,
		Direction: DefaultDirection,
	}
}

// Normalize fills zero values with defaults and clamps page and size
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 0 {
		p.Page = DefaultPage
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	if p.Sort == "" {
		p.Sort = DefaultSortField
	}
	if p.Direction == "" {
		p.Direction = DefaultDirection
	}
	return p
}

// Offset returns the number of records to skip. It saturates at
// math.MaxInt instead of wrapping on requests that were never normalized.
func (p PageRequest) Offset() int {
	if p.Page <= 0 || p.Size <= 0 {
		return 0
	}
	if p.Page > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return p.Page * p.Size
}

// Filter returns the trimmed filter value for key, or "" when unset
func (p PageRequest) Filter(key string) string {
	if p.Filters == nil {
		return ""
	}
	return strings.TrimSpace(p.Filters[key])
}

// Page is a bounded, ordered slice of a result set plus total-count metadata
type Page[T any] struct {
	Content       []T
	Number        int
	Size          int
	TotalElements int64
	Sort          string
	Direction     SortDirection
}

// NewPage builds a page for the given request
func NewPage[T any](content []T, req PageRequest, total int64) *Page[T] {
	return &Page[T]{
		Content:       content,
		Number:        req.Page,
		Size:          req.Size,
		TotalElements: total,
		Sort:          req.Sort,
		Direction:     req.Direction,
	}
}

// IsEmpty reports whether the page holds no records
func (p *Page[T]) IsEmpty() bool {
	return len(p.Content) == 0
}

// TotalPages returns the number of pages of Size needed for TotalElements
func (p *Page[T]) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.TotalElements + int64(p.Size) - 1) / int64(p.Size))
}

// HasNext reports whether a page follows this one
func (p *Page[T]) HasNext() bool {
	return p.Number < p.TotalPages()-1
}

// HasPrevious reports whether a page precedes this one
func (p *Page[T]) HasPrevious() bool {
	return p.Number > 0
}
