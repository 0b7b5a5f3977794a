// Package model holds the storefront's domain entities, the order state
// machine and the request payloads accepted by the HTTP layer.
package model

import (
	"github.com/deppfellow/storefront/internal/validation"
)

// validate is shared by every payload's Validate method.
var validate = validation.New()

// Paginated wraps a page of results.
type Paginated[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPaginated builds a page envelope; a nil slice is rendered as [].
func NewPaginated[T any](data []T, page, pageSize, total int) Paginated[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return Paginated[T]{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// PageQuery is embedded in list payloads.
type PageQuery struct {
	Page     int `query:"page" validate:"omitempty,min=1"`
	PageSize int `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// Normalize fills defaults and returns (page, pageSize, offset).
func (p PageQuery) Normalize() (page, pageSize, offset int) {
	page, pageSize = p.Page, p.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return page, pageSize, (page - 1) * pageSize
}
