package billing

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Attachment defaults applied when the upload omits them
const (
	DefaultAttachmentFileName    = "attachment.bin"
	DefaultAttachmentContentType = "application/octet-stream"
)

// Attachment is a file uploaded against an invoice.
// InvoiceID is recorded as given and not checked against the ledger.
type Attachment struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	FileName    string
	ContentType string
	Size        int64
	UploadedAt  time.Time
}

// NewAttachment creates attachment metadata, defaulting a blank file name and content type
func NewAttachment(invoiceID uuid.UUID, fileName, contentType string, size int64, now time.Time) *Attachment {
	if strings.TrimSpace(fileName) == "" {
		fileName = DefaultAttachmentFileName
	}
	if strings.TrimSpace(contentType) == "" {
		contentType = DefaultAttachmentContentType
	}

	return &Attachment{
		ID:          uuid.New(),
		InvoiceID:   invoiceID,
		FileName:    fileName,
		ContentType: contentType,
		Size:        size,
		UploadedAt:  now.UTC(),
	}
}
