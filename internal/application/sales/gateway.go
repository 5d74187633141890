// Package sales implements the sales-facing billing surface purely in terms
// of remote billing calls. The gateway holds no state of its own.
package sales

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/erp/invoicing/internal/contract/billingapi"
	"github.com/erp/invoicing/internal/domain/sales"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/domain/shared/valueobject"
	"github.com/erp/invoicing/internal/infrastructure/logger"
	"github.com/erp/invoicing/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Validation and upstream messages returned to callers
const (
	MsgFileMissing      = "File is missing or empty."
	MsgArchiveMissing   = "Archive file is missing or empty."
	MsgLogoMissing      = "Logo file is missing or empty."
	MsgNoInvoicePayload = "Billing did not return an invoice payload."
	MsgNoAttachment     = "Billing did not return an attachment payload."
	MsgNoImportResult   = "Billing did not return an import result payload."
)

const (
	msgUpstreamFailed   = "Billing request failed."
	spanServiceName     = "sales"
	operationCreate     = "create_invoice"
	operationAttachment = "upload_attachment"
	operationImport     = "import_invoices"
)

// Gateway maps sales requests onto the billing contract
type Gateway struct {
	billing billingapi.API
	metrics *telemetry.InvoiceMetrics
}

// GatewayOption is a functional option for configuring Gateway
type GatewayOption func(*Gateway)

// WithGatewayMetrics records upstream-empty responses
func WithGatewayMetrics(m *telemetry.InvoiceMetrics) GatewayOption {
	return func(g *Gateway) {
		g.metrics = m
	}
}

// NewGateway creates a gateway over a billing contract implementation
func NewGateway(api billingapi.API, opts ...GatewayOption) *Gateway {
	g := &Gateway{billing: api}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// InvoicePdf is a downloaded invoice document. Close releases a streamed body.
type InvoicePdf struct {
	FileName string
	Payload  *shared.BinaryPayload
	closer   io.Closer
}

// Close releases the upstream body if the PDF was streamed
func (p *InvoicePdf) Close() error {
	if p == nil || p.closer == nil {
		return nil
	}
	return p.closer.Close()
}

// upstream types failures that did not come back as domain errors,
// such as transport errors, so callers never see an untyped fault.
func upstream(err error) error {
	if err == nil {
		return nil
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	return fmt.Errorf("%w: %v", shared.NewDomainError(shared.CodeUpstream, msgUpstreamFailed), err)
}

func (g *Gateway) emptyResponse(ctx context.Context, operation, msg string) error {
	g.metrics.RecordUpstreamEmpty(ctx, operation)
	logger.L(ctx).Warn("Billing returned no payload", zap.String("operation", operation))
	return shared.NewUpstreamEmptyResponseError(msg)
}

// PlaceOrder turns an order into a billing invoice
func (g *Gateway) PlaceOrder(ctx context.Context, order *sales.Order) (*sales.PlacedOrder, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, spanServiceName, "place_order",
		telemetry.SpanAttrCustomerID, order.CustomerID.String(),
		telemetry.SpanAttrLineCount, len(order.Lines),
	)
	defer span.End()

	inv, err := g.billing.CreateInvoice(ctx, billingapi.NewCreateInvoiceRequest(order.CustomerID, order.InvoiceLines()))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, upstream(err)
	}
	if inv == nil {
		return nil, g.emptyResponse(ctx, operationCreate, MsgNoInvoicePayload)
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrInvoiceID, inv.ID.String())

	logger.L(ctx).Info("Order placed",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("customer_id", order.CustomerID.String()),
	)
	return &sales.PlacedOrder{
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.Number,
		Total:         inv.Total,
		Currency:      valueobject.Currency(inv.Currency),
	}, nil
}

// GetInvoice passes through to billing. Unknown ids surface as not-found errors.
func (g *Gateway) GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*billingapi.InvoiceDTO, error) {
	inv, err := g.billing.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, upstream(err)
	}
	if inv == nil {
		return nil, shared.NewNotFoundError("Invoice %s was not found.", invoiceID)
	}
	return inv, nil
}

// GetInvoiceStatus asks billing for the status line, echoing correlationID
func (g *Gateway) GetInvoiceStatus(ctx context.Context, invoiceID uuid.UUID, correlationID string) (string, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanServiceName, "get_invoice_status",
		telemetry.SpanAttrInvoiceID, invoiceID.String(),
		telemetry.SpanAttrCorrelationID, correlationID,
	)
	defer span.End()

	status, err := g.billing.GetInvoiceStatus(ctx, invoiceID, correlationID)
	if err != nil {
		telemetry.RecordError(span, err)
		return "", upstream(err)
	}
	return status, nil
}

// SearchInvoices passes the query through unchanged
func (g *Gateway) SearchInvoices(ctx context.Context, query billingapi.InvoiceSearchQuery) (*billingapi.PagedResult[billingapi.InvoiceListItemDTO], error) {
	page, err := g.billing.SearchInvoices(ctx, query)
	if err != nil {
		return nil, upstream(err)
	}
	if page == nil {
		return &billingapi.PagedResult[billingapi.InvoiceListItemDTO]{Items: []billingapi.InvoiceListItemDTO{}}, nil
	}
	return page, nil
}

// DownloadInvoicePdf fetches the invoice PDF over the selected transport.
// Both modes yield the same bytes. The caller closes the result.
func (g *Gateway) DownloadInvoicePdf(ctx context.Context, invoiceID uuid.UUID, mode shared.TransferMode) (*InvoicePdf, error) {
	pdf := &InvoicePdf{FileName: sales.InvoicePdfFileName(invoiceID)}

	if mode == shared.TransferModeStream {
		rc, err := g.billing.DownloadInvoicePdfStream(ctx, invoiceID)
		if err != nil {
			return nil, upstream(err)
		}
		if rc == nil {
			rc = io.NopCloser(bytes.NewReader(nil))
		}
		pdf.Payload = shared.PayloadFromReader(rc)
		pdf.closer = rc
		return pdf, nil
	}

	data, err := g.billing.DownloadInvoicePdfBytes(ctx, invoiceID)
	if err != nil {
		return nil, upstream(err)
	}
	pdf.Payload = shared.PayloadFromBytes(data)
	return pdf, nil
}

// UploadAttachment forwards an uploaded file to billing
func (g *Gateway) UploadAttachment(ctx context.Context, invoiceID uuid.UUID, file *sales.UploadedFile) (*billingapi.AttachmentDTO, error) {
	if file.IsEmpty() {
		return nil, shared.NewValidationError(MsgFileMissing)
	}

	ctx, span := telemetry.StartServiceSpan(ctx, spanServiceName, operationAttachment,
		telemetry.SpanAttrInvoiceID, invoiceID.String(),
		telemetry.SpanAttrSize, file.Size,
	)
	defer span.End()

	att, err := g.billing.UploadInvoiceAttachment(ctx, invoiceID, &billingapi.AttachmentUpload{
		FileName:    file.FileName,
		ContentType: file.ContentType,
		Content:     file.Content,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, upstream(err)
	}
	if att == nil {
		return nil, g.emptyResponse(ctx, operationAttachment, MsgNoAttachment)
	}
	return att, nil
}

// ImportInvoices buffers the archive and forwards it to billing.
// A blank sourceName is sent as absent.
func (g *Gateway) ImportInvoices(ctx context.Context, archive *sales.UploadedFile, sourceName string) (*billingapi.ImportResultDTO, error) {
	if archive.IsEmpty() {
		return nil, shared.NewValidationError(MsgArchiveMissing)
	}
	data, err := archive.Content.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}
	if len(data) == 0 {
		return nil, shared.NewValidationError(MsgArchiveMissing)
	}

	ctx, span := telemetry.StartServiceSpan(ctx, spanServiceName, operationImport,
		telemetry.SpanAttrSize, len(data),
	)
	defer span.End()

	req := &billingapi.BulkImportRequest{ArchiveBytes: data}
	if sourceName != "" {
		req.SourceName = &sourceName
	}
	res, err := g.billing.ImportInvoices(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, upstream(err)
	}
	if res == nil {
		return nil, g.emptyResponse(ctx, operationImport, MsgNoImportResult)
	}
	return res, nil
}

// UploadCompanyLogo forwards the logo over the selected transport.
// Both modes leave billing holding the same bytes.
func (g *Gateway) UploadCompanyLogo(ctx context.Context, logo *sales.UploadedFile, mode shared.TransferMode) error {
	if logo.IsEmpty() {
		return shared.NewValidationError(MsgLogoMissing)
	}

	ctx, span := telemetry.StartServiceSpan(ctx, spanServiceName, "upload_company_logo",
		telemetry.SpanAttrTransferMode, mode.String(),
		telemetry.SpanAttrSize, logo.Size,
	)
	defer span.End()

	var err error
	if mode == shared.TransferModeStream {
		var r io.Reader
		if r, err = logo.Content.Reader(); err == nil {
			err = g.billing.UploadCompanyLogoStream(ctx, r)
		}
	} else {
		var data []byte
		if data, err = logo.Content.Bytes(); err == nil {
			err = g.billing.UploadCompanyLogoBytes(ctx, data)
		}
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return upstream(err)
	}
	return nil
}
