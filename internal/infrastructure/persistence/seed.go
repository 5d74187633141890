package persistence

import (
	"time"

	"github.com/erp/invoicing/internal/domain/billing"
	"github.com/erp/invoicing/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Seed identifiers
var (
	SeedCustomerA = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	SeedCustomerB = uuid.MustParse("22222222-2222-2222-2222-222222222222")

	SeedInvoiceIssued  = uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")
	SeedInvoicePaid    = uuid.MustParse("bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb")
	SeedInvoiceOverdue = uuid.MustParse("cccccccc-cccc-cccc-cccc-cccccccccccc")

	SeedAttachment1 = uuid.MustParse("dddddddd-dddd-dddd-dddd-dddddddddddd")
	SeedAttachment2 = uuid.MustParse("eeeeeeee-eeee-eeee-eeee-eeeeeeeeeeee")
	SeedAttachment3 = uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff")
)

const day = 24 * time.Hour

// Seed loads the fixed demo invoices and attachments.
// Timestamps are relative to the ledger clock.
func (l *InMemoryLedger) Seed() {
	now := l.now().UTC()

	invoices := []billing.Invoice{
		{
			ID:         SeedInvoiceIssued,
			Number:     "INV-SEED-0001",
			CustomerID: SeedCustomerA,
			Total:      decimal.RequireFromString("120.00"),
			Currency:   valueobject.DefaultCurrency,
			IssuedAt:   now.Add(-10 * day),
			Status:     billing.InvoiceStatusIssued,
		},
		{
			ID:         SeedInvoicePaid,
			Number:     "INV-SEED-0002",
			CustomerID: SeedCustomerA,
			Total:      decimal.RequireFromString("89.50"),
			Currency:   valueobject.DefaultCurrency,
			IssuedAt:   now.Add(-6 * day),
			Status:     billing.InvoiceStatusPaid,
		},
		{
			ID:         SeedInvoiceOverdue,
			Number:     "INV-SEED-0003",
			CustomerID: SeedCustomerB,
			Total:      decimal.RequireFromString("310.10"),
			Currency:   valueobject.DefaultCurrency,
			IssuedAt:   now.Add(-3 * day),
			Status:     billing.InvoiceStatusOverdue,
		},
	}
	for _, inv := range invoices {
		l.putInvoice(inv)
	}

	attachments := []billing.Attachment{
		{
			ID:          SeedAttachment1,
			InvoiceID:   SeedInvoiceIssued,
			FileName:    "seed-attachment-1.txt",
			ContentType: "text/plain",
			Size:        128,
			UploadedAt:  now.Add(-9 * day),
		},
		{
			ID:          SeedAttachment2,
			InvoiceID:   SeedInvoicePaid,
			FileName:    "seed-attachment-2.pdf",
			ContentType: "application/pdf",
			Size:        2048,
			UploadedAt:  now.Add(-5 * day),
		},
		{
			ID:          SeedAttachment3,
			InvoiceID:   SeedInvoiceOverdue,
			FileName:    "seed-attachment-3.bin",
			ContentType: billing.DefaultAttachmentContentType,
			Size:        4096,
			UploadedAt:  now.Add(-2 * day),
		},
	}
	for _, att := range attachments {
		l.putAttachment(att)
	}

	l.logger.Info("ledger seeded",
		zap.Int("invoices", len(invoices)),
		zap.Int("attachments", len(attachments)),
	)
}
