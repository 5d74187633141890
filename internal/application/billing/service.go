// Package billing implements the billing contract against the invoice ledger.
package billing

import (
	"context"
	"fmt"
	"io"

	"github.com/erp/invoicing/internal/contract/billingapi"
	"github.com/erp/invoicing/internal/domain/billing"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/infrastructure/logger"
	"github.com/erp/invoicing/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Validation messages returned to callers
const (
	MsgRequestBodyMissing = "Request body is missing."
	MsgInvoiceNoLines     = "Invoice must contain at least one line."
	MsgLogoBytesEmpty     = "Logo bytes are empty."
	MsgLogoStreamMissing  = "Logo stream is missing."
	MsgLogoStreamEmpty    = "Logo stream is empty."
	MsgArchiveBytesEmpty  = "ArchiveBytes are empty."
	MsgFileMissing        = "File is missing or empty."
)

// NotFoundStatus is reported by GetInvoiceStatus for unknown invoices
const NotFoundStatus = "NotFound"

// AssetSource opens the canonical invoice PDF
type AssetSource interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Location() string
}

// Service is the server-side implementation of the billing contract
type Service struct {
	ledger  billing.Ledger
	assets  AssetSource
	metrics *telemetry.InvoiceMetrics
}

var _ billingapi.API = (*Service)(nil)

// ServiceOption is a functional option for configuring Service
type ServiceOption func(*Service)

// WithMetrics records business metrics for service operations
func WithMetrics(m *telemetry.InvoiceMetrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a billing service over the ledger and PDF asset source
func NewService(ledger billing.Ledger, assets AssetSource, opts ...ServiceOption) *Service {
	s := &Service{
		ledger: ledger,
		assets: assets,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetInvoice returns the invoice or a not-found error
func (s *Service) GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*billingapi.InvoiceDTO, error) {
	inv, ok := s.ledger.FindInvoice(ctx, invoiceID)
	if !ok {
		return nil, shared.NewNotFoundError("Invoice %s was not found.", invoiceID)
	}
	return billingapi.NewInvoiceDTO(inv), nil
}

// GetInvoiceStatus formats "<status> (corr=<correlationID>)". Unknown invoices
// report NotFound instead of failing.
func (s *Service) GetInvoiceStatus(ctx context.Context, invoiceID uuid.UUID, correlationID string) (string, error) {
	status := NotFoundStatus
	if inv, ok := s.ledger.FindInvoice(ctx, invoiceID); ok {
		status = inv.Status.String()
	}
	return fmt.Sprintf("%s (corr=%s)", status, correlationID), nil
}

// SearchInvoices filters and pages invoices
func (s *Service) SearchInvoices(ctx context.Context, query billingapi.InvoiceSearchQuery) (*billingapi.PagedResult[billingapi.InvoiceListItemDTO], error) {
	page := s.ledger.SearchInvoices(ctx, query.ToDomain())
	return billingapi.NewPagedListDTO(page), nil
}

// CreateInvoice issues an invoice for the requested lines
func (s *Service) CreateInvoice(ctx context.Context, req *billingapi.CreateInvoiceRequest) (*billingapi.InvoiceDTO, error) {
	if req == nil {
		return nil, shared.NewValidationError(MsgRequestBodyMissing)
	}
	if len(req.Lines) == 0 {
		return nil, shared.NewValidationError(MsgInvoiceNoLines)
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "create_invoice",
		telemetry.SpanAttrCustomerID, req.CustomerID.String(),
		telemetry.SpanAttrLineCount, len(req.Lines),
	)
	defer span.End()

	inv, err := s.ledger.CreateInvoice(ctx, req.CustomerID, req.InvoiceLines())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrInvoiceID, inv.ID.String())
	s.metrics.RecordInvoiceCreated(ctx, inv.Total, string(inv.Currency))

	logger.L(ctx).Info("Invoice created",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("customer_id", inv.CustomerID.String()),
		zap.String("total", inv.Total.StringFixed(2)),
	)
	return billingapi.NewInvoiceDTO(inv), nil
}

// UploadCompanyLogoBytes replaces the company logo with a buffered payload
func (s *Service) UploadCompanyLogoBytes(ctx context.Context, logo []byte) error {
	if len(logo) == 0 {
		return shared.NewValidationError(MsgLogoBytesEmpty)
	}
	s.storeLogo(ctx, logo, shared.TransferModeBytes)
	return nil
}

// UploadCompanyLogoStream drains the stream and replaces the company logo
func (s *Service) UploadCompanyLogoStream(ctx context.Context, logo io.Reader) error {
	if logo == nil {
		return shared.NewValidationError(MsgLogoStreamMissing)
	}
	data, err := io.ReadAll(logo)
	if err != nil {
		return fmt.Errorf("failed to read logo stream: %w", err)
	}
	if len(data) == 0 {
		return shared.NewValidationError(MsgLogoStreamEmpty)
	}
	s.storeLogo(ctx, data, shared.TransferModeStream)
	return nil
}

func (s *Service) storeLogo(ctx context.Context, logo []byte, mode shared.TransferMode) {
	s.ledger.SetCompanyLogo(ctx, logo)
	s.metrics.RecordLogoUpload(ctx, mode.String())
	logger.L(ctx).Info("Company logo updated",
		zap.String("mode", mode.String()),
		zap.Int("size", len(logo)),
	)
}

// DownloadInvoicePdfBytes returns the canonical invoice PDF. Every invoice id
// yields the same document.
func (s *Service) DownloadInvoicePdfBytes(ctx context.Context, invoiceID uuid.UUID) ([]byte, error) {
	rc, err := s.openPdf(ctx, invoiceID, shared.TransferModeBytes)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read invoice pdf: %w", err)
	}
	return data, nil
}

// DownloadInvoicePdfStream opens the canonical invoice PDF for streaming.
// The caller closes the returned reader.
func (s *Service) DownloadInvoicePdfStream(ctx context.Context, invoiceID uuid.UUID) (io.ReadCloser, error) {
	return s.openPdf(ctx, invoiceID, shared.TransferModeStream)
}

func (s *Service) openPdf(ctx context.Context, invoiceID uuid.UUID, mode shared.TransferMode) (io.ReadCloser, error) {
	rc, err := s.assets.Open(ctx)
	if err != nil {
		logger.L(ctx).Error("Invoice pdf unavailable",
			zap.String("invoice_id", invoiceID.String()),
			zap.String("location", s.assets.Location()),
			zap.Error(err),
		)
		return nil, err
	}
	s.metrics.RecordPdfDownload(ctx, mode.String())
	return rc, nil
}

// ImportInvoices creates synthetic invoices from the archive size
func (s *Service) ImportInvoices(ctx context.Context, req *billingapi.BulkImportRequest) (*billingapi.ImportResultDTO, error) {
	if req == nil {
		return nil, shared.NewValidationError(MsgRequestBodyMissing)
	}
	if len(req.ArchiveBytes) == 0 {
		return nil, shared.NewValidationError(MsgArchiveBytesEmpty)
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "import_invoices",
		telemetry.SpanAttrSize, len(req.ArchiveBytes),
	)
	defer span.End()

	result, err := s.ledger.ImportInvoices(ctx, req.SourceName, req.ArchiveBytes)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.metrics.RecordInvoicesImported(ctx, result.ImportedCount)

	logger.L(ctx).Info("Invoices imported",
		zap.Int("imported_count", result.ImportedCount),
		zap.Int("size", len(req.ArchiveBytes)),
	)
	return billingapi.NewImportResultDTO(result), nil
}

// UploadInvoiceAttachment stores attachment metadata for an uploaded file.
// The invoice id is not checked against the ledger.
func (s *Service) UploadInvoiceAttachment(ctx context.Context, invoiceID uuid.UUID, upload *billingapi.AttachmentUpload) (*billingapi.AttachmentDTO, error) {
	if upload == nil || upload.Content == nil {
		return nil, shared.NewValidationError(MsgFileMissing)
	}
	data, err := upload.Content.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment: %w", err)
	}
	if len(data) == 0 {
		return nil, shared.NewValidationError(MsgFileMissing)
	}

	att, err := s.ledger.SaveAttachment(ctx, invoiceID, data, upload.FileName, upload.ContentType)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordAttachmentStored(ctx, att.Size)

	logger.L(ctx).Info("Attachment stored",
		zap.String("invoice_id", invoiceID.String()),
		zap.String("attachment_id", att.ID.String()),
		zap.Int64("size", att.Size),
	)
	return billingapi.NewAttachmentDTO(att), nil
}
