// Package billingapi defines the billing service contract shared by the billing
// server and its remote callers.
//
// The API interface is implemented twice: once by the billing application
// service against the ledger, and once by the HTTP client stub used by sales.
// Both sides bind operations through the same Route table, so a method's path,
// verb and parameter sources cannot drift apart.
package billingapi

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// API is the billing operation set.
//
// A method returning a nil payload together with a nil error means the call
// succeeded at the transport level without a body; callers must treat that as
// an upstream failure rather than as an empty value.
type API interface {
	GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*InvoiceDTO, error)
	GetInvoiceStatus(ctx context.Context, invoiceID uuid.UUID, correlationID string) (string, error)
	SearchInvoices(ctx context.Context, query InvoiceSearchQuery) (*PagedResult[InvoiceListItemDTO], error)
	CreateInvoice(ctx context.Context, req *CreateInvoiceRequest) (*InvoiceDTO, error)
	UploadCompanyLogoBytes(ctx context.Context, logo []byte) error
	UploadCompanyLogoStream(ctx context.Context, logo io.Reader) error
	DownloadInvoicePdfBytes(ctx context.Context, invoiceID uuid.UUID) ([]byte, error)
	DownloadInvoicePdfStream(ctx context.Context, invoiceID uuid.UUID) (io.ReadCloser, error)
	ImportInvoices(ctx context.Context, req *BulkImportRequest) (*ImportResultDTO, error)
	UploadInvoiceAttachment(ctx context.Context, invoiceID uuid.UUID, upload *AttachmentUpload) (*AttachmentDTO, error)
}
