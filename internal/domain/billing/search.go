package billing

import (
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/google/uuid"
)

// SearchQuery filters invoices. Nil filters match everything.
type SearchQuery struct {
	CustomerID *uuid.UUID
	Status     *InvoiceStatus
	Page       int
	PageSize   int
}

// DefaultSearchQuery returns an unfiltered query for the first page
func DefaultSearchQuery() SearchQuery {
	return SearchQuery{
		Page:     shared.DefaultPage,
		PageSize: shared.DefaultPageSize,
	}
}

// Normalized returns a copy with Page and PageSize clamped to their defaults
func (q SearchQuery) Normalized() SearchQuery {
	q.Page, q.PageSize = shared.NormalizePage(q.Page, q.PageSize)
	return q
}

// Matches reports whether the invoice satisfies the customer and status filters
func (q SearchQuery) Matches(inv *Invoice) bool {
	if q.CustomerID != nil && inv.CustomerID != *q.CustomerID {
		return false
	}
	if q.Status != nil && inv.Status != *q.Status {
		return false
	}
	return true
}
