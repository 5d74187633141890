// Package sales provides domain models for the sales order surface.
// Sales owns no invoice state: placing an order produces an invoice in billing.
package sales

import (
	"github.com/erp/invoicing/internal/domain/billing"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLine is one ordered SKU
type OrderLine struct {
	SKU       string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Order is a request to sell lines to a customer
type Order struct {
	CustomerID uuid.UUID
	Lines      []OrderLine
}

// Validate rejects orders without lines
func (o *Order) Validate() error {
	if o == nil {
		return shared.NewValidationError("Request body is missing.")
	}
	if len(o.Lines) == 0 {
		return shared.NewValidationError("Order must contain at least one line.")
	}
	return nil
}

// InvoiceLines maps each order line to an invoice line, SKU becoming the description
func (o *Order) InvoiceLines() []billing.InvoiceLine {
	lines := make([]billing.InvoiceLine, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = billing.InvoiceLine{
			Description: l.SKU,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		}
	}
	return lines
}

// PlacedOrder is the outcome of placing an order
type PlacedOrder struct {
	InvoiceID     uuid.UUID
	InvoiceNumber string
	Total         decimal.Decimal
	Currency      valueobject.Currency
}
