package billing

import (
	"strings"
	"testing"
	"time"

	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInvoice(t *testing.T) {
	customerID := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))

	t.Run("creates issued invoice with exact total", func(t *testing.T) {
		lines := []InvoiceLine{
			{Description: "SKU-1", Quantity: 3, UnitPrice: decimal.RequireFromString("0.10")},
			{Description: "SKU-2", Quantity: 7, UnitPrice: decimal.RequireFromString("19.99")},
			{Description: "SKU-3", Quantity: 1, UnitPrice: decimal.RequireFromString("0.01")},
		}

		inv, err := NewInvoice(customerID, lines, now)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, inv.ID)
		assert.Equal(t, customerID, inv.CustomerID)
		assert.Equal(t, "140.24", inv.Total.String())
		assert.Equal(t, valueobject.USD, inv.Currency)
		assert.Equal(t, InvoiceStatusIssued, inv.Status)
		assert.Equal(t, time.UTC, inv.IssuedAt.Location())
		assert.True(t, inv.IssuedAt.Equal(now))
	})

	t.Run("number derives from id", func(t *testing.T) {
		inv, err := NewInvoice(customerID, []InvoiceLine{{Description: "x", Quantity: 1, UnitPrice: decimal.NewFromInt(1)}}, now)
		require.NoError(t, err)

		hex := strings.ReplaceAll(inv.ID.String(), "-", "")
		assert.Equal(t, "INV-"+strings.ToUpper(hex[:8]), inv.Number)
	})

	t.Run("sums many small amounts without drift", func(t *testing.T) {
		lines := make([]InvoiceLine, 1000)
		for i := range lines {
			lines[i] = InvoiceLine{Description: "penny", Quantity: 1, UnitPrice: decimal.RequireFromString("0.1")}
		}

		inv, err := NewInvoice(customerID, lines, now)
		require.NoError(t, err)
		assert.True(t, inv.Total.Equal(decimal.NewFromInt(100)))
	})

	t.Run("fails with empty lines", func(t *testing.T) {
		inv, err := NewInvoice(customerID, nil, now)

		assert.Nil(t, inv)
		assert.ErrorIs(t, err, shared.ErrValidation)
		assert.Contains(t, err.Error(), "Invoice must contain at least one line.")
	})
}

func TestNewImportedInvoice(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	inv := NewImportedInvoice(3, now)

	assert.True(t, strings.HasPrefix(inv.Number, "IMP-"))
	assert.Equal(t, "52.99", inv.Total.String())
	assert.Equal(t, now.Add(-3*time.Minute), inv.IssuedAt)
	assert.Equal(t, InvoiceStatusIssued, inv.Status)
	assert.NotEqual(t, uuid.Nil, inv.CustomerID)
}

func TestInvoice_ListItem(t *testing.T) {
	inv := &Invoice{
		ID:         uuid.New(),
		Number:     "INV-SEED-0003",
		CustomerID: uuid.New(),
		Total:      decimal.RequireFromString("310.10"),
		Currency:   valueobject.USD,
		Status:     InvoiceStatusOverdue,
	}

	item := inv.ListItem()

	assert.Equal(t, inv.ID, item.ID)
	assert.Equal(t, inv.Number, item.Number)
	assert.True(t, inv.Total.Equal(item.Total))
	assert.Equal(t, valueobject.USD, item.Currency)
	assert.Equal(t, InvoiceStatusOverdue, item.Status)
}

func TestParseInvoiceStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    InvoiceStatus
		wantErr bool
	}{
		{"Issued", InvoiceStatusIssued, false},
		{"paid", InvoiceStatusPaid, false},
		{"OVERDUE", InvoiceStatusOverdue, false},
		{"3", InvoiceStatusCancelled, false},
		{"0", InvoiceStatusIssued, false},
		{"Draft", "", true},
		{"4", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseInvoiceStatus(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, shared.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsValid())
		})
	}
}

func TestFormatInvoiceNumber(t *testing.T) {
	id := uuid.MustParse("0a1b2c3d-4e5f-6789-abcd-ef0123456789")
	assert.Equal(t, "INV-0A1B2C3D", FormatInvoiceNumber(InvoiceNumberPrefix, id))
	assert.Equal(t, "IMP-0A1B2C3D", FormatInvoiceNumber(ImportedNumberPrefix, id))
}
