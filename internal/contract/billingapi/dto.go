package billingapi

import (
	"time"

	"github.com/erp/invoicing/internal/domain/billing"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceDTO is the wire form of an invoice
type InvoiceDTO struct {
	ID         uuid.UUID             `json:"id"`
	Number     string                `json:"number"`
	CustomerID uuid.UUID             `json:"customerId"`
	Total      decimal.Decimal       `json:"total"`
	Currency   string                `json:"currency"`
	IssuedAt   time.Time             `json:"issuedAt"`
	Status     billing.InvoiceStatus `json:"status"`
}

// InvoiceListItemDTO is the wire form of a search result row
type InvoiceListItemDTO struct {
	ID       uuid.UUID             `json:"id"`
	Number   string                `json:"number"`
	Total    decimal.Decimal       `json:"total"`
	Currency string                `json:"currency"`
	Status   billing.InvoiceStatus `json:"status"`
}

// InvoiceSearchQuery carries the optional filters and paging of a search
type InvoiceSearchQuery struct {
	CustomerID *uuid.UUID
	Status     *billing.InvoiceStatus
	Page       int
	PageSize   int
}

// PagedResult is one page of items plus the filtered total
type PagedResult[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
}

// CreateInvoiceRequest asks billing to issue an invoice
type CreateInvoiceRequest struct {
	CustomerID uuid.UUID                  `json:"customerId"`
	Lines      []CreateInvoiceLineRequest `json:"lines"`
}

// CreateInvoiceLineRequest is one line of a CreateInvoiceRequest
type CreateInvoiceLineRequest struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// BulkImportRequest carries an archive to import. ArchiveBytes travel base64 encoded.
type BulkImportRequest struct {
	SourceName   *string `json:"sourceName"`
	ArchiveBytes []byte  `json:"archiveBytes"`
}

// ImportResultDTO is the wire form of an import result
type ImportResultDTO struct {
	ImportedCount int    `json:"importedCount"`
	FailedCount   int    `json:"failedCount"`
	Message       string `json:"message"`
}

// AttachmentDTO is the wire form of stored attachment metadata
type AttachmentDTO struct {
	AttachmentID uuid.UUID `json:"attachmentId"`
	FileName     string    `json:"fileName"`
	ContentType  string    `json:"contentType"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// AttachmentUpload is a file submitted as multipart form data.
// Content may arrive buffered or as a stream.
type AttachmentUpload struct {
	FileName    string
	ContentType string
	Content     *shared.BinaryPayload
}

// NewInvoiceDTO converts a domain invoice
func NewInvoiceDTO(inv *billing.Invoice) *InvoiceDTO {
	return &InvoiceDTO{
		ID:         inv.ID,
		Number:     inv.Number,
		CustomerID: inv.CustomerID,
		Total:      inv.Total,
		Currency:   string(inv.Currency),
		IssuedAt:   inv.IssuedAt,
		Status:     inv.Status,
	}
}

// NewPagedListDTO converts a page of domain list items
func NewPagedListDTO(page shared.PagedResult[billing.InvoiceListItem]) *PagedResult[InvoiceListItemDTO] {
	items := make([]InvoiceListItemDTO, len(page.Items))
	for i, it := range page.Items {
		items[i] = InvoiceListItemDTO{
			ID:       it.ID,
			Number:   it.Number,
			Total:    it.Total,
			Currency: string(it.Currency),
			Status:   it.Status,
		}
	}
	return &PagedResult[InvoiceListItemDTO]{
		Items:      items,
		TotalCount: page.TotalCount,
	}
}

// NewImportResultDTO converts a domain import result
func NewImportResultDTO(res *billing.ImportResult) *ImportResultDTO {
	return &ImportResultDTO{
		ImportedCount: res.ImportedCount,
		FailedCount:   res.FailedCount,
		Message:       res.Message,
	}
}

// NewAttachmentDTO converts domain attachment metadata
func NewAttachmentDTO(att *billing.Attachment) *AttachmentDTO {
	return &AttachmentDTO{
		AttachmentID: att.ID,
		FileName:     att.FileName,
		ContentType:  att.ContentType,
		Size:         att.Size,
		UploadedAt:   att.UploadedAt,
	}
}

// ToDomain converts the wire query into a domain search query
func (q InvoiceSearchQuery) ToDomain() billing.SearchQuery {
	return billing.SearchQuery{
		CustomerID: q.CustomerID,
		Status:     q.Status,
		Page:       q.Page,
		PageSize:   q.PageSize,
	}
}

// InvoiceLines converts the request lines into domain lines
func (r *CreateInvoiceRequest) InvoiceLines() []billing.InvoiceLine {
	lines := make([]billing.InvoiceLine, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = billing.InvoiceLine{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		}
	}
	return lines
}

// NewCreateInvoiceRequest builds a request from domain lines
func NewCreateInvoiceRequest(customerID uuid.UUID, lines []billing.InvoiceLine) *CreateInvoiceRequest {
	req := &CreateInvoiceRequest{
		CustomerID: customerID,
		Lines:      make([]CreateInvoiceLineRequest, len(lines)),
	}
	for i, l := range lines {
		req.Lines[i] = CreateInvoiceLineRequest{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		}
	}
	return req
}
