package dto

import (
	"github.com/erp/invoicing/internal/domain/sales"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlaceOrderRequest is the body of POST /api/sales/billing/orders
type PlaceOrderRequest struct {
	CustomerID uuid.UUID               `json:"customerId"`
	Lines      []PlaceOrderLineRequest `json:"lines" binding:"omitempty,dive"`
}

// PlaceOrderLineRequest is one ordered SKU
type PlaceOrderLineRequest struct {
	SKU       string          `json:"sku" binding:"max=64"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// ToOrder converts the request into a domain order
func (r *PlaceOrderRequest) ToOrder() *sales.Order {
	if r == nil {
		return nil
	}
	order := &sales.Order{
		CustomerID: r.CustomerID,
		Lines:      make([]sales.OrderLine, len(r.Lines)),
	}
	for i, l := range r.Lines {
		order.Lines[i] = sales.OrderLine{
			SKU:       l.SKU,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}
	return order
}

// PlaceOrderResponse identifies the invoice issued for an order
type PlaceOrderResponse struct {
	InvoiceID     uuid.UUID       `json:"invoiceId"`
	InvoiceNumber string          `json:"invoiceNumber"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
}

// NewPlaceOrderResponse converts a placed order
func NewPlaceOrderResponse(p *sales.PlacedOrder) PlaceOrderResponse {
	return PlaceOrderResponse{
		InvoiceID:     p.InvoiceID,
		InvoiceNumber: p.InvoiceNumber,
		Total:         p.Total,
		Currency:      string(p.Currency),
	}
}
