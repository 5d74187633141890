package billing

import (
	"context"

	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/google/uuid"
)

// Ledger is the authoritative store of invoices, attachments and the company logo.
// Implementations must be safe for concurrent use without caller-side locking.
type Ledger interface {
	// CreateInvoice issues and stores a new invoice
	CreateInvoice(ctx context.Context, customerID uuid.UUID, lines []InvoiceLine) (*Invoice, error)
	// FindInvoice returns the invoice and true, or nil and false when the id is unknown
	FindInvoice(ctx context.Context, id uuid.UUID) (*Invoice, bool)
	// SearchInvoices filters, counts and pages invoices
	SearchInvoices(ctx context.Context, query SearchQuery) shared.PagedResult[InvoiceListItem]
	// ImportInvoices stores the synthetic invoices derived from an archive
	ImportInvoices(ctx context.Context, sourceName *string, archive []byte) (*ImportResult, error)
	// SaveAttachment stores attachment metadata for the uploaded file
	SaveAttachment(ctx context.Context, invoiceID uuid.UUID, file []byte, fileName, contentType string) (*Attachment, error)
	// SetCompanyLogo replaces the company logo; last writer wins
	SetCompanyLogo(ctx context.Context, logo []byte)
}
