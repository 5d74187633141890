package sales

import (
	"strings"

	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/google/uuid"
)

// UploadedFile is a file received from a multipart form
type UploadedFile struct {
	FileName    string
	ContentType string
	Size        int64
	Content     *shared.BinaryPayload
}

// IsEmpty reports whether no usable file was supplied
func (f *UploadedFile) IsEmpty() bool {
	return f == nil || f.Content == nil || f.Size <= 0
}

// InvoicePdfFileName names a downloaded invoice PDF: invoice-<32 hex>.pdf
func InvoicePdfFileName(invoiceID uuid.UUID) string {
	return "invoice-" + strings.ReplaceAll(invoiceID.String(), "-", "") + ".pdf"
}
