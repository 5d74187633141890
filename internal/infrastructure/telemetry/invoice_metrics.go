package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// InvoiceMetrics records billing and gateway business metrics.
// A nil *InvoiceMetrics is valid and records nothing.
type InvoiceMetrics struct {
	invoicesCreated    *Counter
	invoiceAmountTotal *FloatCounter
	invoicesImported   *Counter
	attachmentsStored  *Counter
	attachmentSize     *Histogram
	logoUploads        *Counter
	pdfDownloads       *Counter
	upstreamEmpty      *Counter
}

// NewInvoiceMetrics registers the invoice instruments on the meter
func NewInvoiceMetrics(meter metric.Meter) (*InvoiceMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &InvoiceMetrics{}
	var err error

	if m.invoicesCreated, err = NewCounter(meter,
		"invoicing_invoices_created_total", "Total number of invoices issued", "{invoices}"); err != nil {
		return nil, err
	}
	if m.invoiceAmountTotal, err = NewFloatCounter(meter,
		"invoicing_invoice_amount_total", "Sum of issued invoice totals", "{currency}"); err != nil {
		return nil, err
	}
	if m.invoicesImported, err = NewCounter(meter,
		"invoicing_invoices_imported_total", "Total number of invoices created by bulk import", "{invoices}"); err != nil {
		return nil, err
	}
	if m.attachmentsStored, err = NewCounter(meter,
		"invoicing_attachments_stored_total", "Total number of invoice attachments stored", "{attachments}"); err != nil {
		return nil, err
	}
	if m.attachmentSize, err = NewHistogram(meter,
		"invoicing_attachment_size_bytes", "Size of stored invoice attachments", "By", PayloadSizeBuckets...); err != nil {
		return nil, err
	}
	if m.logoUploads, err = NewCounter(meter,
		"invoicing_logo_uploads_total", "Total number of company logo uploads", "{uploads}"); err != nil {
		return nil, err
	}
	if m.pdfDownloads, err = NewCounter(meter,
		"invoicing_pdf_downloads_total", "Total number of invoice PDF downloads", "{downloads}"); err != nil {
		return nil, err
	}
	if m.upstreamEmpty, err = NewCounter(meter,
		"invoicing_upstream_empty_responses_total", "Billing calls that succeeded without a payload", "{responses}"); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordInvoiceCreated counts an issued invoice and adds its total
func (m *InvoiceMetrics) RecordInvoiceCreated(ctx context.Context, total decimal.Decimal, currency string) {
	if m == nil {
		return
	}
	m.invoicesCreated.Inc(ctx, AttrCurrency.String(currency))
	m.invoiceAmountTotal.Add(ctx, total.InexactFloat64(), AttrCurrency.String(currency))
}

// RecordInvoicesImported counts invoices created by one import
func (m *InvoiceMetrics) RecordInvoicesImported(ctx context.Context, count int) {
	if m == nil {
		return
	}
	m.invoicesImported.Add(ctx, int64(count))
}

// RecordAttachmentStored counts a stored attachment and its size
func (m *InvoiceMetrics) RecordAttachmentStored(ctx context.Context, size int64) {
	if m == nil {
		return
	}
	m.attachmentsStored.Inc(ctx)
	m.attachmentSize.Record(ctx, size)
}

// RecordLogoUpload counts a logo upload by transfer mode
func (m *InvoiceMetrics) RecordLogoUpload(ctx context.Context, mode string) {
	if m == nil {
		return
	}
	m.logoUploads.Inc(ctx, AttrTransferMode.String(mode))
}

// RecordPdfDownload counts a PDF download by transfer mode
func (m *InvoiceMetrics) RecordPdfDownload(ctx context.Context, mode string) {
	if m == nil {
		return
	}
	m.pdfDownloads.Inc(ctx, AttrTransferMode.String(mode))
}

// RecordUpstreamEmpty counts a billing call that returned no payload
func (m *InvoiceMetrics) RecordUpstreamEmpty(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	m.upstreamEmpty.Inc(ctx, AttrOperation.String(operation))
}
