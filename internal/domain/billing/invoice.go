package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusIssued    InvoiceStatus = "Issued"
	InvoiceStatusPaid      InvoiceStatus = "Paid"
	InvoiceStatusOverdue   InvoiceStatus = "Overdue"
	InvoiceStatusCancelled InvoiceStatus = "Cancelled"
)

// invoiceStatusOrdinals keeps the numeric form accepted by older clients
var invoiceStatusOrdinals = []InvoiceStatus{
	InvoiceStatusIssued,
	InvoiceStatusPaid,
	InvoiceStatusOverdue,
	InvoiceStatusCancelled,
}

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusIssued, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// ParseInvoiceStatus parses a status name (case-insensitive) or its ordinal ("0".."3")
func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	s = strings.TrimSpace(s)
	for i, status := range invoiceStatusOrdinals {
		if strings.EqualFold(s, string(status)) || s == fmt.Sprint(i) {
			return status, nil
		}
	}
	return "", shared.NewValidationError(fmt.Sprintf("Invalid invoice status '%s'.", s))
}

// Invoice number prefixes
const (
	InvoiceNumberPrefix  = "INV"
	ImportedNumberPrefix = "IMP"
)

// InvoiceLine is one priced line of an invoice
type InvoiceLine struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Amount returns Quantity * UnitPrice in the invoice currency
func (l InvoiceLine) Amount() valueobject.Money {
	return valueobject.NewMoneyUSD(l.UnitPrice).MultiplyByInt(int64(l.Quantity))
}

// Invoice represents an issued invoice
type Invoice struct {
	ID         uuid.UUID
	Number     string
	CustomerID uuid.UUID
	Total      decimal.Decimal
	Currency   valueobject.Currency
	IssuedAt   time.Time
	Status     InvoiceStatus
}

// InvoiceListItem is the search projection of an invoice
type InvoiceListItem struct {
	ID       uuid.UUID
	Number   string
	Total    decimal.Decimal
	Currency valueobject.Currency
	Status   InvoiceStatus
}

// NewInvoice issues an invoice for the given lines.
// The total is the exact sum of quantity * unit price over all lines.
func NewInvoice(customerID uuid.UUID, lines []InvoiceLine, now time.Time) (*Invoice, error) {
	if len(lines) == 0 {
		return nil, shared.NewValidationError("Invoice must contain at least one line.")
	}

	total := valueobject.Zero(valueobject.DefaultCurrency)
	for _, line := range lines {
		total = total.MustAdd(line.Amount())
	}

	id := uuid.New()
	return &Invoice{
		ID:         id,
		Number:     FormatInvoiceNumber(InvoiceNumberPrefix, id),
		CustomerID: customerID,
		Total:      total.Amount(),
		Currency:   total.Currency(),
		IssuedAt:   now.UTC(),
		Status:     InvoiceStatusIssued,
	}, nil
}

// NewImportedInvoice builds the index-th synthetic invoice of a bulk import.
// Each one is backdated by index minutes and totals 49.99 + index.
func NewImportedInvoice(index int, now time.Time) *Invoice {
	id := uuid.New()
	return &Invoice{
		ID:         id,
		Number:     FormatInvoiceNumber(ImportedNumberPrefix, id),
		CustomerID: uuid.New(),
		Total:      importBaseTotal.Add(decimal.NewFromInt(int64(index))),
		Currency:   valueobject.DefaultCurrency,
		IssuedAt:   now.UTC().Add(-time.Duration(index) * time.Minute),
		Status:     InvoiceStatusIssued,
	}
}

// ListItem projects the invoice into its search representation
func (i *Invoice) ListItem() InvoiceListItem {
	return InvoiceListItem{
		ID:       i.ID,
		Number:   i.Number,
		Total:    i.Total,
		Currency: i.Currency,
		Status:   i.Status,
	}
}

// FormatInvoiceNumber derives a human-readable number from the first eight
// hex digits of the id. Numbers are not checked for uniqueness.
func FormatInvoiceNumber(prefix string, id uuid.UUID) string {
	hex := strings.ReplaceAll(id.String(), "-", "")
	return prefix + "-" + strings.ToUpper(hex[:8])
}
